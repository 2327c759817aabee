package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	user, err := uh.userService.UpdateAvatarFromImage(c.Request.Context(), raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_upload_failed", err)
		return
	}
	RespondOK(c, user)
}
