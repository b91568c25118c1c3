package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tour-app/internal/services"
)

// UserHandler serves the photo-ingestion and soft-delete endpoints.
type UserHandler struct {
	photos *services.PhotoService
	users  services.UserStore
}

func NewUserHandler(photos *services.PhotoService, users services.UserStore) *UserHandler {
	return &UserHandler{photos: photos, users: users}
}

// UploadPhoto replaces the user's photo. A request without a file passes
// through unchanged.
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		user, err := h.users.FindByID(c.Request.Context(), c.Param("id"), nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
		return
	}

	user, err := h.photos.UploadUserPhoto(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}

func (h *UserHandler) DestroyPhoto(c *gin.Context) {
	if err := h.photos.DestroyUserPhoto(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "deleted successfully"})
}

// Deactivate is the soft delete: the record stays, flagged inactive.
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.users.Patch(c.Request.Context(), c.Param("id"), bson.M{"active": false}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
