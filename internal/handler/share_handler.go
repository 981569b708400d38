package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collab-board/internal/dto"
	"collab-board/internal/response"
	"collab-board/internal/service"
)

type ShareHandler struct {
	shareService service.ShareService
	logger       *zap.Logger
}

func NewShareHandler(shareService service.ShareService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{shareService: shareService, logger: logger}
}

// Share godoc
// @Summary      공유 추가
// @Description  Board, 열 또는 카드를 사용자와 공유합니다. 이미 공유된 사용자는 권한이 갱신됩니다 (해당 항목 소유자만 가능)
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.ShareRequest true "공유 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "공유 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "대상을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /boards/{boardId}/shares [post]
func (h *ShareHandler) Share(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	board, err := h.shareService.Share(ctx, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// Unshare godoc
// @Summary      공유 해제
// @Description  공유 목록에서 사용자를 제거합니다. 목록에 없는 사용자는 무시됩니다
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.UnshareRequest true "공유 해제 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "공유 해제 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "대상을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /boards/{boardId}/shares [delete]
func (h *ShareHandler) Unshare(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.UnshareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	board, err := h.shareService.Unshare(ctx, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}
