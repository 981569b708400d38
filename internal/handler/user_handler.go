package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collab-board/internal/dto"
	"collab-board/internal/response"
	"collab-board/internal/service"
)

type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// ListUsers godoc
// @Summary      공유 가능한 사용자 목록
// @Description  호출자를 제외한 사용자를 이름 순으로 조회합니다
// @Tags         users
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.UserResponse} "사용자 목록"
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, users)
}

// UpsertProfile godoc
// @Summary      내 프로필 저장
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.UpsertProfileRequest true "프로필"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse} "저장 성공"
// @Failure      400 {object} response.ErrorResponse "잘못된 요청"
// @Security     BearerAuth
// @Router       /users/me [put]
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req dto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ctx, ok := requestContext(c)
	if !ok {
		return
	}

	user, err := h.userService.UpsertProfile(ctx, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}
