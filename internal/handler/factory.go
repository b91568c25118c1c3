package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tour-app/internal/models"
	"tour-app/internal/query"
	"tour-app/internal/repository"
)

// Store is what a CRUD handler set needs from the persistence layer;
// repository.Repository satisfies it.
type Store[T repository.Entity] interface {
	FindAll(ctx context.Context, base bson.M, f query.Features) ([]T, error)
	FindByID(ctx context.Context, id string, populate *repository.Populate) (*T, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, id string, patch []byte) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CRUD builds the five basic handlers for one entity type.
type CRUD[T repository.Entity] struct {
	store Store[T]
}

func NewCRUD[T repository.Entity](store Store[T]) *CRUD[T] {
	return &CRUD[T]{store: store}
}

// GetAll lists documents, honoring filter/sort/fields/page/limit query
// parameters on top of a fixed base filter. An empty result is a success.
func (h *CRUD[T]) GetAll(base bson.M) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := query.Parse(c.Request.URL.Query())
		docs, err := h.store.FindAll(c.Request.Context(), base, f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"count":  len(docs),
			"data":   docs,
		})
	}
}

func (h *CRUD[T]) GetOne(populate *repository.Populate) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := h.store.FindByID(c.Request.Context(), c.Param("id"), populate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": doc})
	}
}

func (h *CRUD[T]) CreateOne() gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc T
		if err := c.ShouldBindJSON(&doc); err != nil {
			respondError(c, models.ErrBadRequest)
			return
		}
		if err := h.store.Create(c.Request.Context(), &doc); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "success", "data": doc})
	}
}

func (h *CRUD[T]) UpdateOne() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, models.ErrBadRequest)
			return
		}
		doc, err := h.store.Update(c.Request.Context(), c.Param("id"), body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": doc})
	}
}

func (h *CRUD[T]) DeleteOne() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
