package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/olatunbossun/craftcart/internal/apierror"
	"github.com/olatunbossun/craftcart/internal/dto"
	"github.com/olatunbossun/craftcart/internal/model"
	"github.com/olatunbossun/craftcart/internal/repository"
)

type ReviewService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]dto.ReviewResponse, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.ReviewResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type reviewService struct {
	repo        repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(repo repository.ReviewRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{repo: repo, productRepo: productRepo}
}

func (s *reviewService) Create(ctx context.Context, actor model.Actor, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.NewValidation("product_id", "must be a valid id")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, apierror.NotFound("product")
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return toReviewResponse(review), nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]dto.ReviewResponse, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toReviewResponses(reviews), nil
}

func (s *reviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]dto.ReviewResponse, error) {
	reviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toReviewResponses(reviews), nil
}

// Update edits the comment of the actor's own review only.
func (s *reviewService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("review")
	}
	if review.UserID != actor.ID {
		return nil, apierror.Forbidden("not authorized to update this review")
	}
	review.Comment = req.Comment
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return toReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("review")
	}
	if review.UserID != actor.ID {
		return apierror.Forbidden("not authorized to delete this review")
	}
	return s.repo.Delete(ctx, id)
}

func toReviewResponse(r *model.Review) *dto.ReviewResponse {
	resp := &dto.ReviewResponse{
		ID:        r.ID.String(),
		ProductID: r.ProductID.String(),
		UserID:    r.UserID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
	}
	return resp
}

func toReviewResponses(reviews []model.Review) []dto.ReviewResponse {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, *toReviewResponse(&reviews[i]))
	}
	return out
}
