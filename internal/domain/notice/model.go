package notice

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength matches the backend column.
const MaxTitleLength = 200

// Domain errors
var (
	ErrEmptyTitle   = errors.New("el título del anuncio es obligatorio")
	ErrTitleTooLong = errors.New("el título del anuncio no puede superar los 200 caracteres")
	ErrEmptyContent = errors.New("la descripción del anuncio es obligatoria")
)

// Notice is a public announcement shown on the landing page and the member panel.
// Content is Markdown.
type Notice struct {
	ID        int64
	Title     string
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(n.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Excerpt returns at most max runes of the content, with "..." when cut.
// INVARIANT: Notice fields are not mutated
func (n Notice) Excerpt(max int) string {
	return Truncate(n.Content, max)
}

// Truncate cuts s to max runes and appends "..." if anything was dropped.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// SortNewestFirst orders notices by creation time, newest first, ties by id descending.
func SortNewestFirst(list []Notice) {
	sort.SliceStable(list, func(i, j int) bool { return newer(list[i], list[j]) })
}

func newer(a, b Notice) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
