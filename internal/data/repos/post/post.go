package post

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

// Box is an inclusive lat/lon rectangle.
type Box struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

type PostRepo interface {
	Create(dbc dbctx.Context, rows []*types.Post) ([]*types.Post, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Post, error)
	ListByAuthor(dbc dbctx.Context, authorID uuid.UUID, limit int) ([]*types.Post, error)
	// ListInBox excludes posts whose author is blocked by, or has blocked,
	// the viewer.
	ListInBox(dbc dbctx.Context, viewerID uuid.UUID, box Box, limit int) ([]*types.Post, error)
	Delete(dbc dbctx.Context, id, authorID uuid.UUID) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, log *logger.Logger) PostRepo {
	return &postRepo{db: db, log: log.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, rows []*types.Post) ([]*types.Post, error) {
	if len(rows) == 0 {
		return []*types.Post{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	for _, p := range rows {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Post, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing post_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Post
	err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postRepo) ListByAuthor(dbc dbctx.Context, authorID uuid.UUID, limit int) ([]*types.Post, error) {
	if authorID == uuid.Nil {
		return nil, fmt.Errorf("missing author_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Post
	if err := txx.WithContext(dbc.Ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) ListInBox(dbc dbctx.Context, viewerID uuid.UUID, box Box, limit int) ([]*types.Post, error) {
	if viewerID == uuid.Nil {
		return nil, fmt.Errorf("missing profile_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Post
	if err := txx.WithContext(dbc.Ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", box.LatMin, box.LatMax).
		Where("longitude BETWEEN ? AND ?", box.LonMin, box.LonMax).
		Where("author_id NOT IN (SELECT blocked_id FROM profile_block WHERE blocker_id = ?)", viewerID).
		Where("author_id NOT IN (SELECT blocker_id FROM profile_block WHERE blocked_id = ?)", viewerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postRepo) Delete(dbc dbctx.Context, id, authorID uuid.UUID) error {
	if id == uuid.Nil || authorID == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&types.Post{}).Error
}
