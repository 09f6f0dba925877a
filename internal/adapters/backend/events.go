package backend

import (
	"context"
	"fmt"
	"net/http"

	"llavedesol/internal/domain/calendar"
)

const eventsPath = "/api/eventos-calendario/"

var (
	_ calendar.EventSaver   = (*Caller)(nil)
	_ calendar.EventDeleter = (*Caller)(nil)
)

// ListEvents returns every calendar event.
func (cl *Caller) ListEvents(ctx context.Context) ([]calendar.Event, error) {
	var events []calendar.Event
	if err := cl.do(ctx, request{method: http.MethodGet, path: eventsPath, label: eventsPath}, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SaveEvent creates e when it has no id and replaces it otherwise.
func (cl *Caller) SaveEvent(ctx context.Context, e calendar.Event) error {
	method, path, label := http.MethodPost, eventsPath, eventsPath
	if e.ID != 0 {
		method, path, label = http.MethodPut, fmt.Sprintf("%s%d/", eventsPath, e.ID), eventsPath+"{id}/"
	}
	r, err := jsonRequest(method, path, label, e)
	if err != nil {
		return err
	}
	return cl.do(ctx, r, nil)
}

// DeleteEvent removes the event with id.
func (cl *Caller) DeleteEvent(ctx context.Context, id int64) error {
	r := request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("%s%d/", eventsPath, id),
		label:  eventsPath + "{id}/",
	}
	return cl.do(ctx, r, nil)
}
