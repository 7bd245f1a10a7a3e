package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/gorilla/websocket"
)

const watchWriteTimeout = 10 * time.Second

// Watch opens the live query scoped to userID over a websocket.
//
// The remote store pushes the full result set as a JSON array on every
// change; no incremental patching. The channel closes when ctx is done or
// the connection drops; re-subscription is the consumer's responsibility
// (the content store opens one subscription per signed-in identity).
func (s *HTTPStore) Watch(ctx context.Context, userID string) (<-chan []models.ContentItem, error) {
	if s.watchURL == "" {
		return nil, fmt.Errorf("%w: no watch endpoint configured", shared.ErrServiceUnavailable)
	}

	endpoint := s.watchURL + "?userId=" + url.QueryEscape(userID)

	header := http.Header{}
	if s.token != nil {
		tok, err := s.token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("%w: watch dial failed: %v", shared.ErrServiceUnavailable, err)
	}

	snapshots := make(chan []models.ContentItem)

	// Close the connection when ctx ends so the read loop unblocks.
	go func() {
		<-ctx.Done()
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	go func() {
		defer close(snapshots)
		for {
			var items []models.ContentItem
			if err := conn.ReadJSON(&items); err != nil {
				return
			}

			select {
			case snapshots <- items:
			case <-ctx.Done():
				return
			}
		}
	}()

	return snapshots, nil
}
