// Package routers wires HTTP routes to their handlers and owns the
// transport-level framing of responses.
package routers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"courtside-api/internal/ctx"
	"courtside-api/internal/handlers/generate"
	"courtside-api/internal/shared"
)

func setupSSEHeaders(c *ctx.Context, status int) {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(status)
}

// createStreamEmitter defers the SSE commit to the first event so the
// status code is still free until the pipeline can no longer fail.
func createStreamEmitter(c *ctx.Context) generate.EmitFunc {
	committed := false
	return func(ev shared.Event) error {
		if c.Request().Context().Err() != nil {
			return c.Request().Context().Err()
		}
		if !committed {
			setupSSEHeaders(c, http.StatusOK)
			committed = true
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); err != nil {
			return err
		}
		c.Response().Flush()
		return nil
	}
}

// resolveRequestError unwraps the status code from an error chain, treating
// anything unexpected as an internal error.
func resolveRequestError(err error) *shared.RequestError {
	var rerr *shared.RequestError
	if errors.As(err, &rerr) {
		return rerr
	}
	return shared.ErrInternalServerError
}

// writeFramedError sends the single error event over the transport the
// request negotiated. Both transports set the status before any bytes.
func writeFramedError(c *ctx.Context, stream bool, err error) error {
	rerr := resolveRequestError(err)
	ev := shared.Event{Type: shared.EventError, Error: rerr.Err.Error()}

	if !stream {
		return c.JSON(rerr.StatusCode, []shared.Event{ev})
	}

	setupSSEHeaders(c, rerr.StatusCode)
	payload, merr := json.Marshal(ev)
	if merr != nil {
		return merr
	}
	if _, werr := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); werr != nil {
		return werr
	}
	c.Response().Flush()
	return nil
}
