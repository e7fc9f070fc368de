package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/domains/post"
	"blog-backend/internal/shared"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/logger"
)

const publicListKeyPrefix = "posts:public:"

// PostService sequences guard -> lifecycle/entity -> repository for every
// action. Guard denials and validation failures short-circuit before any
// repository write; no partial writes.
type PostService struct {
	repo    post.Repository
	cache   cache.Cache
	listTTL time.Duration
}

func NewPostService(repo post.Repository, c cache.Cache, listTTL time.Duration) post.Service {
	return &PostService{
		repo:    repo,
		cache:   c,
		listTTL: listTTL,
	}
}

// =====================================================
// CRUD
// =====================================================

func (s *PostService) Create(ctx context.Context, principal shared.Principal, req *post.CreatePostRequest) (*post.PostResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", post.ErrValidation, err)
	}
	if !post.CanPerform(principal, post.ActionCreate, nil) {
		return nil, post.ErrForbidden
	}

	p, err := post.New(principal.ID, req)
	if err != nil {
		return nil, err
	}

	if err := s.createWithSlugFallback(ctx, p); err != nil {
		return nil, err
	}

	return post.ToResponse(p), nil
}

func (s *PostService) GetByID(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionRead, p) {
		return nil, post.ErrForbidden
	}
	return post.ToResponse(p), nil
}

func (s *PostService) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, req *post.UpdatePostRequest) (*post.PostResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", post.ErrValidation, err)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionUpdate, p) {
		return nil, post.ErrForbidden
	}

	wasPublic := p.IsPublished

	if err := p.ApplyUpdate(req); err != nil {
		return nil, err
	}

	// An author edit of a draft or rejected post re-enters the review
	// queue. Admin edits of other people's posts keep the status.
	if p.AuthorID == principal.ID &&
		(p.Status == post.StatusDraft || p.Status == post.StatusRejected) {
		if err := p.Resubmit(time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	if err := s.updateWithSlugFallback(ctx, p); err != nil {
		return nil, err
	}

	if wasPublic || p.IsPublished {
		s.invalidatePublicLists(ctx)
	}

	return post.ToResponse(p), nil
}

func (s *PostService) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !post.CanPerform(principal, post.ActionDelete, p) {
		return post.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if p.IsPublished {
		s.invalidatePublicLists(ctx)
	}
	return nil
}

// =====================================================
// MODERATION TRANSITIONS
// =====================================================

func (s *PostService) Approve(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	return s.transition(ctx, principal, id, post.ActionApprove, func(p *post.Post, now time.Time) error {
		return p.Approve(principal.ID, now)
	})
}

func (s *PostService) Reject(ctx context.Context, principal shared.Principal, id uuid.UUID, req *post.RejectPostRequest) (*post.PostResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, post.ErrEmptyRejectionReason
	}
	return s.transition(ctx, principal, id, post.ActionReject, func(p *post.Post, now time.Time) error {
		return p.Reject(principal.ID, req.Reason, now)
	})
}

func (s *PostService) Publish(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	return s.transition(ctx, principal, id, post.ActionPublish, func(p *post.Post, now time.Time) error {
		return p.Publish(now)
	})
}

func (s *PostService) Archive(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	return s.transition(ctx, principal, id, post.ActionArchive, func(p *post.Post, now time.Time) error {
		return p.Archive(now)
	})
}

// transition runs the read -> guard -> lifecycle -> write sequence shared
// by every moderation action.
func (s *PostService) transition(
	ctx context.Context,
	principal shared.Principal,
	id uuid.UUID,
	action post.Action,
	apply func(*post.Post, time.Time) error,
) (*post.PostResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, action, p) {
		return nil, post.ErrForbidden
	}

	wasPublic := p.IsPublished

	if err := apply(p, time.Now().UTC()); err != nil {
		return nil, err
	}

	p.Version++
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if wasPublic || p.IsPublished {
		s.invalidatePublicLists(ctx)
	}

	return post.ToResponse(p), nil
}

// =====================================================
// ENGAGEMENT
// =====================================================

func (s *PostService) Like(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionLike, p) {
		return nil, post.ErrForbidden
	}

	// Idempotent: a second like is a no-op, not an error and not a write.
	if p.HasLiked(principal.ID) {
		return post.ToResponse(p), nil
	}

	p.AddLike(principal.ID)
	p.Version++
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.IsPublished {
		s.invalidatePublicLists(ctx)
	}
	return post.ToResponse(p), nil
}

func (s *PostService) Unlike(ctx context.Context, principal shared.Principal, id uuid.UUID) (*post.PostResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionLike, p) {
		return nil, post.ErrForbidden
	}

	if !p.HasLiked(principal.ID) {
		return post.ToResponse(p), nil
	}

	p.RemoveLike(principal.ID)
	p.Version++
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.IsPublished {
		s.invalidatePublicLists(ctx)
	}
	return post.ToResponse(p), nil
}

func (s *PostService) AddComment(ctx context.Context, principal shared.Principal, id uuid.UUID, req *post.CommentRequest) (*post.PostResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", post.ErrValidation, err)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionComment, p) {
		return nil, post.ErrForbidden
	}

	// Only published posts take comments.
	if p.Status != post.StatusPublished {
		return nil, &post.TransitionError{Action: "comment on", From: p.Status}
	}

	if _, err := p.AddComment(principal.ID, req.Text); err != nil {
		return nil, err
	}

	p.Version++
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return post.ToResponse(p), nil
}

func (s *PostService) DeleteComment(ctx context.Context, principal shared.Principal, id, commentID uuid.UUID) (*post.PostResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanPerform(principal, post.ActionDeleteComment, p) {
		return nil, post.ErrForbidden
	}

	if err := p.RemoveComment(commentID); err != nil {
		return nil, err
	}

	p.Version++
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return post.ToResponse(p), nil
}

// =====================================================
// QUERIES
// =====================================================

func (s *PostService) ListOwn(ctx context.Context, principal shared.Principal, req *post.ListOwnRequest) ([]post.PostResponse, *post.PaginationMeta, error) {
	if err := req.Normalize(); err != nil {
		return nil, nil, err
	}
	if !post.CanPerform(principal, post.ActionListOwn, nil) {
		return nil, nil, post.ErrForbidden
	}

	authorID := principal.ID
	filter := &post.Filter{
		AuthorID: &authorID,
		SortBy:   post.SortByCreatedAt,
		Order:    post.OrderDesc,
		Limit:    req.Limit,
		Offset:   (req.Page - 1) * req.Limit,
	}
	if req.Status != "" {
		status := post.Status(req.Status)
		filter.Status = &status
	}

	return s.list(ctx, filter, req.Page, req.Limit)
}

func (s *PostService) ListPending(ctx context.Context, principal shared.Principal, req *post.AdminListRequest) ([]post.PostResponse, *post.PaginationMeta, error) {
	if !post.CanPerform(principal, post.ActionListPending, nil) {
		return nil, nil, post.ErrForbidden
	}

	req.Status = string(post.StatusPending)
	if err := req.Normalize(); err != nil {
		return nil, nil, err
	}

	filter, err := adminFilter(req)
	if err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, req.Page, req.Limit)
}

func (s *PostService) ListAll(ctx context.Context, principal shared.Principal, req *post.AdminListRequest) ([]post.PostResponse, *post.PaginationMeta, error) {
	if !post.CanPerform(principal, post.ActionListAll, nil) {
		return nil, nil, post.ErrForbidden
	}
	if err := req.Normalize(); err != nil {
		return nil, nil, err
	}

	filter, err := adminFilter(req)
	if err != nil {
		return nil, nil, err
	}
	return s.list(ctx, filter, req.Page, req.Limit)
}

func (s *PostService) ListPublished(ctx context.Context, req *post.PublicListRequest) ([]post.PublicPostResponse, *post.PaginationMeta, error) {
	if err := req.Normalize(); err != nil {
		return nil, nil, err
	}

	type publicListCache struct {
		Data []post.PublicPostResponse `json:"data"`
		Meta post.PaginationMeta       `json:"meta"`
	}

	key := cacheKey(publicListKeyPrefix+"list", req)
	var cached publicListCache
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("public list cache read failed", map[string]interface{}{"error": err.Error()})
	}
	if found {
		return cached.Data, &cached.Meta, nil
	}

	filter := &post.Filter{
		Search:        req.Search,
		Tags:          req.Tags,
		PublishedOnly: true,
		SortBy:        "published_at",
		Order:         post.OrderDesc,
		Limit:         req.Limit,
		Offset:        (req.Page - 1) * req.Limit,
	}
	if req.Category != "" {
		category := post.Category(req.Category)
		filter.Category = &category
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]post.PublicPostResponse, len(posts))
	for i := range posts {
		responses[i] = *post.ToPublicResponse(&posts[i])
	}
	meta := post.NewPaginationMeta(req.Page, req.Limit, total)

	if err := s.cache.Set(ctx, key, publicListCache{Data: responses, Meta: *meta}, s.listTTL); err != nil {
		logger.Warn("public list cache write failed", map[string]interface{}{"error": err.Error()})
	}

	return responses, meta, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*post.PublicPostResponse, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Unpublished slugs do not exist as far as the public is concerned.
	if p.Status != post.StatusPublished || !p.IsPublished {
		return nil, post.ErrPostNotFound
	}

	views, err := s.repo.IncrementViews(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Views = views

	return post.ToPublicResponse(p), nil
}

func (s *PostService) Stats(ctx context.Context, principal shared.Principal) (*post.StatsResponse, error) {
	if !post.CanPerform(principal, post.ActionStats, nil) {
		return nil, post.ErrForbidden
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &post.StatsResponse{
		TotalPosts: stats.TotalPosts,
		ByStatus:   stats.ByStatus,
		ByCategory: stats.ByCategory,
		TotalViews: stats.TotalViews,
		TotalLikes: stats.TotalLikes,
	}, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *PostService) list(ctx context.Context, filter *post.Filter, page, limit int) ([]post.PostResponse, *post.PaginationMeta, error) {
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]post.PostResponse, len(posts))
	for i := range posts {
		responses[i] = *post.ToResponse(&posts[i])
	}
	return responses, post.NewPaginationMeta(page, limit, total), nil
}

func adminFilter(req *post.AdminListRequest) (*post.Filter, error) {
	filter := &post.Filter{
		Search:   req.Search,
		Approved: req.Approved,
		Tags:     req.Tags,
		SortBy:   req.SortBy,
		Order:    req.Order,
		Limit:    req.Limit,
		Offset:   (req.Page - 1) * req.Limit,
	}

	if req.Status != "" {
		status := post.Status(req.Status)
		filter.Status = &status
	}
	if req.Category != "" {
		category := post.Category(req.Category)
		filter.Category = &category
	}
	if req.AuthorID != "" {
		authorID, err := uuid.Parse(req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid author_id", post.ErrValidation)
		}
		filter.AuthorID = &authorID
	}

	return filter, nil
}

// createWithSlugFallback retries a slug collision once with a random
// suffix before surfacing the conflict.
func (s *PostService) createWithSlugFallback(ctx context.Context, p *post.Post) error {
	err := s.repo.Create(ctx, p)
	if errors.Is(err, post.ErrSlugExists) {
		p.Slug = slugWithSuffix(p.Slug)
		err = s.repo.Create(ctx, p)
	}
	return err
}

func (s *PostService) updateWithSlugFallback(ctx context.Context, p *post.Post) error {
	p.Version++
	err := s.repo.Update(ctx, p)
	if errors.Is(err, post.ErrSlugExists) {
		p.Slug = slugWithSuffix(p.Slug)
		err = s.repo.Update(ctx, p)
	}
	return err
}

func slugWithSuffix(slug string) string {
	return slug + "-" + uuid.New().String()[:8]
}

func (s *PostService) invalidatePublicLists(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, publicListKeyPrefix+"*"); err != nil {
		logger.Warn("public list cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

// cacheKey hashes the request into a stable key.
func cacheKey(prefix string, req interface{}) string {
	raw, _ := json.Marshal(req)
	sum := md5.Sum(raw)
	return prefix + ":" + hex.EncodeToString(sum[:])
}
