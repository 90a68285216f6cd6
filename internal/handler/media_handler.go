package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
)

// MediaHandler handles profile photo uploads.
type MediaHandler struct {
	mediaService *service.MediaService
	userService  *service.UserService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService, userService *service.UserService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, userService: userService}
}

// UploadAvatar godoc
// POST /api/v1/auth/me/photo
// Stores an image and sets it as the caller's profile photo. The previous
// photo file is removed; attempt snapshots keep their recorded URL.
func (h *MediaHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	userID := middleware.GetUserID(c)
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	url, err := h.mediaService.SaveAvatar(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	previous := user.PhotoURL
	updated, err := h.userService.UpdateProfile(c.Request.Context(), userID, &model.UpdateProfileRequest{PhotoURL: &url})
	if err != nil {
		h.mediaService.RemoveAvatar(url)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if previous != "" {
		h.mediaService.RemoveAvatar(previous)
	}

	response.Success(c, http.StatusOK, gin.H{"url": url, "user": userJSON(updated)})
}
