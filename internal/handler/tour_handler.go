package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tour-app/internal/models"
	"tour-app/internal/services"
)

// TourHandler serves the entity-specific tour endpoints: aggregation
// reports, geo queries and the image upload. Plain CRUD comes from the
// generic factory.
type TourHandler struct {
	svc    *services.TourService
	photos *services.PhotoService
}

func NewTourHandler(svc *services.TourService, photos *services.PhotoService) *TourHandler {
	return &TourHandler{svc: svc, photos: photos}
}

func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(stats), "data": stats})
}

func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	plan, err := h.svc.MonthlyPlan(c.Request.Context(), c.Param("year"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(plan), "data": plan})
}

func (h *TourHandler) Within(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		respondError(c, fmt.Errorf("%w: distance must be a number", models.ErrBadRequest))
		return
	}
	tours, err := h.svc.Within(c.Request.Context(), distance, c.Param("latlng"), c.Param("unit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(tours), "data": tours})
}

func (h *TourHandler) Distances(c *gin.Context) {
	distances, err := h.svc.Distances(c.Request.Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(distances), "data": distances})
}

// UploadImages accepts an "imageCover" file plus up to three "images"
// files and rewrites the tour's image references in one update.
func (h *TourHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, fmt.Errorf("%w: multipart form expected", models.ErrBadRequest))
		return
	}

	var cover *multipart.FileHeader
	if files := form.File["imageCover"]; len(files) > 0 {
		cover = files[0]
	}
	images := form.File["images"]

	tour, err := h.photos.UploadTourImages(c.Request.Context(), c.Param("id"), cover, images)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": tour})
}
