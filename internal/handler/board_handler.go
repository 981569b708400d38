package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collab-board/internal/dto"
	"collab-board/internal/response"
	"collab-board/internal/service"
)

type BoardHandler struct {
	boardService service.BoardService
	logger       *zap.Logger
}

func NewBoardHandler(boardService service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boardService: boardService, logger: logger}
}

// ListBoards godoc
// @Summary      Board 목록 조회
// @Description  소유한 Board(order 순)와 Board 단위로 공유받은 Board를 조회합니다
// @Tags         boards
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.BoardResponse} "Board 목록"
// @Failure      401 {object} response.ErrorResponse "인증 필요"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Security     BearerAuth
// @Router       /boards [get]
func (h *BoardHandler) ListBoards(c *gin.Context) {
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(ctx)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, boards)
}

// CreateBoard godoc
// @Summary      Board 생성
// @Description  열이 없는 빈 Board를 생성합니다. 소유한 Board 목록의 마지막 순서가 부여됩니다
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBoardRequest true "Board 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.BoardResponse} "Board 생성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      500 {object} response.ErrorResponse "서버 에러"
// @Security     BearerAuth
// @Router       /boards [post]
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	board, err := h.boardService.CreateBoard(ctx, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, board)
}

// GetBoard godoc
// @Summary      Board 조회
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "Board 조회 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 Board ID"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Security     BearerAuth
// @Router       /boards/{boardId} [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(ctx, boardID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// UpdateBoard godoc
// @Summary      Board 수정
// @Description  제목, 설명, 순서, 열 배열을 수정합니다. 열 배열은 전체가 교체되며 항목별 권한 검사를 거칩니다
// @Tags         boards
// @Accept       json
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Param        request body dto.UpdateBoardRequest true "Board 수정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.BoardResponse} "Board 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Failure      409 {object} response.ErrorResponse "다른 수정이 진행 중"
// @Security     BearerAuth
// @Router       /boards/{boardId} [patch]
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}

	var req dto.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	board, err := h.boardService.UpdateBoard(ctx, boardID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, board)
}

// DeleteBoard godoc
// @Summary      Board 삭제
// @Description  Board를 삭제합니다 (소유자만 가능)
// @Tags         boards
// @Produce      json
// @Param        boardId path string true "Board ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string} "Board 삭제 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "Board를 찾을 수 없음"
// @Security     BearerAuth
// @Router       /boards/{boardId} [delete]
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	boardID, ok := parseIDParam(c, "boardId", "board")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(ctx, boardID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"message": "Board deleted successfully"})
}
