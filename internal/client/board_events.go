package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collab-board/internal/domain"
)

const eventReadWait = 90 * time.Second

// Subscribe opens the change feed of boardID. The returned channel is closed
// when ctx is done or the connection drops; callers re-subscribe and refetch.
func (c *BoardClient) Subscribe(ctx context.Context, boardID uuid.UUID) (<-chan domain.BoardEvent, error) {
	url := wsURL(c.baseURL) + "/boards/" + boardID.String() + "/ws"

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(url, http.MethodGet, statusCode, time.Since(startTime), err)
	if err != nil {
		if resp != nil {
			return nil, c.statusError(http.MethodGet, "/boards/"+boardID.String()+"/ws", resp.StatusCode, nil)
		}
		return nil, fmt.Errorf("subscribe %s: %v: %w", boardID, err, domain.ErrRemoteFailure)
	}

	events := make(chan domain.BoardEvent, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		defer close(done)

		conn.SetReadDeadline(time.Now().Add(eventReadWait))
		conn.SetPingHandler(func(data string) error {
			conn.SetReadDeadline(time.Now().Add(eventReadWait))
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		})

		for {
			var ev domain.BoardEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.logger.Warn("Board event stream closed",
						zap.String("board_id", boardID.String()),
						zap.Error(err))
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(eventReadWait))
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func wsURL(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	}
	return httpURL
}
