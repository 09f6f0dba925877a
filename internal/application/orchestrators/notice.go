package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"llavedesol/internal/domain/notice"
)

// NoticeBackend defines the backend interface needed by the announcement orchestrators.
type NoticeBackend interface {
	SaveNotice(ctx context.Context, n notice.Notice) (notice.Notice, error)
	DeleteNotice(ctx context.Context, id int64) error
}

// SaveNoticeInput carries the announcement form.
type SaveNoticeInput struct {
	ID       int64 // 0 creates a new announcement
	Title    string
	Content  string
	ImageURL string
	Author   string
}

// SaveNoticeDeps holds dependencies for SaveNotice.
type SaveNoticeDeps struct {
	Backend NoticeBackend
}

// ExecuteSaveNotice validates and creates or updates an announcement.
// PRE: Author is the admin's username
// POST: Returns the stored announcement; invalid input never reaches the backend
func ExecuteSaveNotice(ctx context.Context, input SaveNoticeInput, deps SaveNoticeDeps) (notice.Notice, error) {
	n := notice.Notice{
		ID:       input.ID,
		Title:    strings.TrimSpace(input.Title),
		Content:  strings.TrimSpace(input.Content),
		ImageURL: strings.TrimSpace(input.ImageURL),
	}
	if err := n.Validate(); err != nil {
		return notice.Notice{}, err
	}

	saved, err := deps.Backend.SaveNotice(ctx, n)
	if err != nil {
		return notice.Notice{}, err
	}

	event := "notice_created"
	if input.ID != 0 {
		event = "notice_updated"
	}
	slog.Info("notice_event", "event", event, "notice_id", saved.ID, "author", input.Author)
	return saved, nil
}

// DeleteNoticeInput carries input for DeleteNotice.
type DeleteNoticeInput struct {
	ID     int64
	Author string
}

// ExecuteDeleteNotice removes an announcement.
func ExecuteDeleteNotice(ctx context.Context, input DeleteNoticeInput, deps SaveNoticeDeps) error {
	if err := deps.Backend.DeleteNotice(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("notice_event", "event", "notice_deleted", "notice_id", input.ID, "author", input.Author)
	return nil
}
