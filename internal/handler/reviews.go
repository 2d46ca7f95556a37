package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/middleware"
	"github.com/olatunbossun/craftcart/internal/service"
)

type ReviewsHandler struct{ svc service.ReviewService }

func NewReviewsHandler(svc service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{svc: svc}
}

// Create godoc
// @Summary      Review a product
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateReviewRequest true "Review details"
// @Success      201  {object} dto.ReviewResponse
// @Failure      422  {object} apierror.ValidationResponse
// @Router       /v1/reviews [post]
func (h *ReviewsHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByProduct godoc
// @Summary      List reviews for a product
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Product UUID"
// @Success      200 {array} dto.ReviewResponse
// @Router       /v1/products/{id}/reviews [get]
func (h *ReviewsHandler) ListByProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.ListByProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMine godoc
// @Summary      List the authenticated user's reviews
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.ReviewResponse
// @Router       /v1/reviews/mine [get]
func (h *ReviewsHandler) ListMine(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	resp, err := h.svc.ListByUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update one of your reviews
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Review UUID"
// @Param        body body dto.UpdateReviewRequest true "New comment"
// @Success      200  {object} dto.ReviewResponse
// @Failure      403  {object} apierror.APIError
// @Router       /v1/reviews/{id} [put]
func (h *ReviewsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.UpdateReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete one of your reviews
// @Tags         reviews
// @Security     BearerAuth
// @Param        id path string true "Review UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Router       /v1/reviews/{id} [delete]
func (h *ReviewsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
