package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
)

const maxEventPageSize = 500

func eventsHandler(eventStore core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			User   string `json:"user"`
			Cursor uint64 `json:"cursor"`
			Limit  int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > maxEventPageSize {
			params.Limit = 100
		}

		var (
			events []*core.Event
			err    error
		)
		if params.User != "" {
			events, err = eventStore.ListByUser(ctx, params.User, params.Cursor, params.Limit)
		} else {
			events, err = eventStore.List(ctx, params.Cursor, params.Limit)
		}
		if err != nil {
			render.OperationError(w, err)
			return
		}

		cursor := params.Cursor
		if len(events) > 0 {
			cursor = events[len(events)-1].ID
		}

		render.JSON(w, render.H{
			"events": events,
			"cursor": cursor,
		})
	}
}
