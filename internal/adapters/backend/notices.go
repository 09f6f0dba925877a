package backend

import (
	"context"
	"fmt"
	"net/http"

	"llavedesol/internal/domain/notice"
)

const noticesPath = "/api/anuncios/"

// ListNotices returns every announcement, newest first.
func (cl *Caller) ListNotices(ctx context.Context) ([]notice.Notice, error) {
	var wire []noticeWire
	if err := cl.do(ctx, request{method: http.MethodGet, path: noticesPath, label: noticesPath}, &wire); err != nil {
		return nil, err
	}
	out := make([]notice.Notice, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toDomain())
	}
	notice.SortNewestFirst(out)
	return out, nil
}

// GetNotice returns one announcement.
// POST: IsNotFound(err) for an unknown id
func (cl *Caller) GetNotice(ctx context.Context, id int64) (notice.Notice, error) {
	var w noticeWire
	r := request{method: http.MethodGet, path: fmt.Sprintf("%s%d/", noticesPath, id), label: noticesPath + "{id}/"}
	if err := cl.do(ctx, r, &w); err != nil {
		return notice.Notice{}, err
	}
	return w.toDomain(), nil
}

// SaveNotice creates n when it has no id and replaces it otherwise.
// PRE: n.Validate() == nil
func (cl *Caller) SaveNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	method, path, label := http.MethodPost, noticesPath, noticesPath
	if n.ID != 0 {
		method, path, label = http.MethodPut, fmt.Sprintf("%s%d/", noticesPath, n.ID), noticesPath+"{id}/"
	}
	r, err := jsonRequest(method, path, label, noticeFromDomain(n))
	if err != nil {
		return notice.Notice{}, err
	}
	var w noticeWire
	if err := cl.do(ctx, r, &w); err != nil {
		return notice.Notice{}, err
	}
	return w.toDomain(), nil
}

// DeleteNotice removes the announcement with id.
func (cl *Caller) DeleteNotice(ctx context.Context, id int64) error {
	r := request{method: http.MethodDelete, path: fmt.Sprintf("%s%d/", noticesPath, id), label: noticesPath + "{id}/"}
	return cl.do(ctx, r, nil)
}
