package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collab-board/internal/dto"
	"collab-board/internal/response"
	"collab-board/internal/service"
)

type LabelHandler struct {
	labelService service.LabelService
	logger       *zap.Logger
}

func NewLabelHandler(labelService service.LabelService, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{labelService: labelService, logger: logger}
}

// ListLabels godoc
// @Summary      라벨 목록 조회
// @Tags         labels
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.LabelResponse} "라벨 목록"
// @Security     BearerAuth
// @Router       /labels [get]
func (h *LabelHandler) ListLabels(c *gin.Context) {
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	labels, err := h.labelService.ListLabels(ctx)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, labels)
}

// CreateLabel godoc
// @Summary      라벨 생성
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateLabelRequest true "라벨 생성 요청"
// @Success      201 {object} response.SuccessResponse{data=dto.LabelResponse} "라벨 생성 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Security     BearerAuth
// @Router       /labels [post]
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	label, err := h.labelService.CreateLabel(ctx, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, label)
}

// UpdateLabel godoc
// @Summary      라벨 수정
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        labelId path string true "Label ID (UUID)"
// @Param        request body dto.UpdateLabelRequest true "라벨 수정 요청"
// @Success      200 {object} response.SuccessResponse{data=dto.LabelResponse} "라벨 수정 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "라벨을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /labels/{labelId} [put]
func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	labelID, ok := parseIDParam(c, "labelId", "label")
	if !ok {
		return
	}

	var req dto.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	label, err := h.labelService.UpdateLabel(ctx, labelID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, label)
}

// DeleteLabel godoc
// @Summary      라벨 삭제
// @Description  라벨을 삭제하고 접근 가능한 Board의 카드에서 라벨을 제거합니다
// @Tags         labels
// @Produce      json
// @Param        labelId path string true "Label ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string} "라벨 삭제 성공"
// @Failure      403 {object} response.ErrorResponse "권한 없음"
// @Failure      404 {object} response.ErrorResponse "라벨을 찾을 수 없음"
// @Security     BearerAuth
// @Router       /labels/{labelId} [delete]
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	labelID, ok := parseIDParam(c, "labelId", "label")
	if !ok {
		return
	}
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	if err := h.labelService.DeleteLabel(ctx, labelID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, gin.H{"message": "Label deleted successfully"})
}
