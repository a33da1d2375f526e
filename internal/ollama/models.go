package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Model is one entry of the /api/tags catalog.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size,omitempty"`
	Digest     string    `json:"digest,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

// Tags lists the models currently available on the endpoint.
func (c *Client) Tags(ctx context.Context) ([]Model, error) {
	var out tagsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// PullEvent is one NDJSON line of a pull stream. Completed/Total are nil when
// the line does not carry them. Err is set on the final event when the stream
// broke or the endpoint reported an error; the channel is closed right after.
type PullEvent struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     *int64 `json:"total,omitempty"`
	Completed *int64 `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`

	Err error `json:"-"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// Pull starts pulling model and returns a channel of progress events. Errors
// establishing the stream are returned directly; later failures arrive as a
// final event with Err set. The channel is closed when the stream ends or ctx
// is done. Undecodable lines are skipped.
func (c *Client) Pull(ctx context.Context, model string) (<-chan PullEvent, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/pull", pullRequest{Name: model, Stream: true})
	if err != nil {
		return nil, err
	}
	events := make(chan PullEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		emit := func(ev PullEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		r := bufio.NewReader(resp.Body)
		for {
			line, rerr := r.ReadBytes('\n')
			if s := strings.TrimSpace(string(line)); s != "" {
				var ev PullEvent
				if jerr := json.Unmarshal([]byte(s), &ev); jerr != nil {
					c.log.Debug().Str("line", s).Msg("pull: skipping undecodable line")
				} else {
					if ev.Error != "" {
						ev.Err = &APIError{Op: "/api/pull", StatusCode: resp.StatusCode, Body: ev.Error}
						emit(ev)
						return
					}
					if !emit(ev) {
						return
					}
				}
			}
			if rerr != nil {
				if errors.Is(rerr, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					return
				}
				emit(PullEvent{Err: &TransportError{Op: "/api/pull", Err: rerr}})
				return
			}
		}
	}()
	return events, nil
}
