package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collab-board/internal/domain"
	"collab-board/internal/realtime"
	"collab-board/internal/response"
	"collab-board/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler streams a board's change events to a websocket client
type WSHandler struct {
	boardService service.BoardService
	hub          *realtime.Hub
	logger       *zap.Logger
}

func NewWSHandler(boardService service.BoardService, hub *realtime.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{boardService: boardService, hub: hub, logger: logger}
}

// HandleWebSocket godoc
// @Summary      Board 변경 이벤트 구독
// @Description  WebSocket으로 board.updated, board.shared, board.deleted 이벤트를 받습니다. 브라우저는 token 쿼리 파라미터로 인증합니다
// @Tags         boards
// @Param        boardId path string true "Board ID (UUID)"
// @Param        token query string false "JWT (Authorization 헤더 대신)"
// @Success      101 {object} domain.BoardEvent "이벤트 스트림"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Router       /boards/{boardId}/ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}
	userID := ctx.Value("user_id").(uuid.UUID)

	if _, err := h.boardService.GetBoard(ctx, boardID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(boardID, userID)
	h.logger.Info("Board subscriber connected",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()))

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// readPump only services control frames. Anything the client sends is
// discarded; writes go through the REST endpoints.
func (h *WSHandler) readPump(conn *websocket.Conn, sub *realtime.Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
		h.logger.Debug("Board subscriber disconnected",
			zap.String("board_id", sub.BoardID.String()),
			zap.String("user_id", sub.UserID.String()))
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *realtime.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if ev.Type == domain.EventBoardShared && !h.stillReadable(sub) {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access revoked"))
				sub.Close()
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// stillReadable re-checks board read access after a sharing change. Lookup
// failures other than forbidden or not found keep the subscription.
func (h *WSHandler) stillReadable(sub *realtime.Subscription) bool {
	ctx, cancel := context.WithTimeout(context.WithValue(context.Background(), "user_id", sub.UserID), 5*time.Second)
	defer cancel()

	_, err := h.boardService.GetBoard(ctx, sub.BoardID)
	var appErr *response.AppError
	if errors.As(err, &appErr) && (appErr.Code == response.ErrCodeForbidden || appErr.Code == response.ErrCodeNotFound) {
		return false
	}
	return true
}
