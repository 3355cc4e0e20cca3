package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type CreatePostInput struct {
	Body      string   `json:"body"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type PostService interface {
	Create(ctx context.Context, in CreatePostInput) (*types.Post, error)
	ListMine(ctx context.Context, limit int) ([]*types.Post, error)
	Delete(ctx context.Context, postID uuid.UUID) error
}

type postService struct {
	db       *gorm.DB
	log      *logger.Logger
	postRepo repos.PostRepo
}

func NewPostService(db *gorm.DB, log *logger.Logger, postRepo repos.PostRepo) PostService {
	return &postService{
		db:       db,
		log:      log.With("service", "PostService"),
		postRepo: postRepo,
	}
}

func (ps *postService) Create(ctx context.Context, in CreatePostInput) (*types.Post, error) {
	authorID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	body := SanitizeText(strings.TrimSpace(in.Body))
	if body == "" {
		return nil, apierr.BadRequest("empty_post", fmt.Errorf("post body is empty"))
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apierr.BadRequest("invalid_location", fmt.Errorf("latitude and longitude must be set together"))
	}
	rows, err := ps.postRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Post{{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Body:      body,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}})
	if err != nil {
		return nil, apierr.Internal("post_write_failed", err)
	}
	return rows[0], nil
}

func (ps *postService) ListMine(ctx context.Context, limit int) ([]*types.Post, error) {
	authorID, err := requireProfile(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ps.postRepo.ListByAuthor(dbctx.Context{Ctx: ctx}, authorID, limit)
	if err != nil {
		return nil, apierr.Internal("post_read_failed", err)
	}
	return rows, nil
}

func (ps *postService) Delete(ctx context.Context, postID uuid.UUID) error {
	authorID, err := requireProfile(ctx)
	if err != nil {
		return err
	}
	if err := ps.postRepo.Delete(dbctx.Context{Ctx: ctx}, postID, authorID); err != nil {
		return apierr.Internal("post_write_failed", err)
	}
	return nil
}
