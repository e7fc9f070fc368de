package post

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreatePostRequest is the payload for submitting a new post.
type CreatePostRequest struct {
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	Excerpt          string   `json:"excerpt"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	FeaturedImageRef *string  `json:"featured_image_ref"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Excerpt, validation.Length(0, MaxExcerptLength)),
		validation.Field(&r.Category, validation.By(validCategory)),
	)
}

// UpdatePostRequest carries partial content edits. Nil fields are untouched.
type UpdatePostRequest struct {
	Title            *string  `json:"title"`
	Body             *string  `json:"body"`
	Excerpt          *string  `json:"excerpt"`
	Category         *string  `json:"category"`
	Tags             []string `json:"tags"`
	FeaturedImageRef *string  `json:"featured_image_ref"`
}

func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Body, validation.NilOrNotEmpty),
		validation.Field(&r.Category, validation.By(validCategoryPtr)),
	)
}

// RejectPostRequest carries the mandatory rejection reason.
type RejectPostRequest struct {
	Reason string `json:"reason"`
}

func (r RejectPostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Required.Error("rejection reason must not be empty")),
	)
}

// CommentRequest carries a new comment body.
type CommentRequest struct {
	Text string `json:"text"`
}

func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, 2000)),
	)
}

func validCategory(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !Category(s).IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

func validCategoryPtr(value interface{}) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	return validCategory(*s)
}

// =====================================================
// LIST REQUESTS
// =====================================================

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort keys accepted by the moderation view.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByTitle     = "title"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListOwnRequest lists the caller's own posts.
type ListOwnRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (r *ListOwnRequest) Normalize() error {
	normalizePage(&r.Page, &r.Limit)
	if r.Status != "" && !Status(r.Status).IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// AdminListRequest is the unrestricted moderation view filter set.
type AdminListRequest struct {
	Search   string   `form:"search"`
	Category string   `form:"category"`
	Status   string   `form:"status"`
	Approved *bool    `form:"approved"`
	AuthorID string   `form:"author_id"`
	Tags     []string `form:"tags"`
	SortBy   string   `form:"sort_by"`
	Order    string   `form:"order"`
	Page     int      `form:"page"`
	Limit    int      `form:"limit"`
}

func (r *AdminListRequest) Normalize() error {
	normalizePage(&r.Page, &r.Limit)

	if r.SortBy == "" {
		r.SortBy = SortByCreatedAt
	}
	switch r.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle:
	default:
		return ErrInvalidSort
	}

	if r.Order == "" {
		r.Order = OrderDesc
	}
	switch r.Order {
	case OrderAsc, OrderDesc:
	default:
		return ErrInvalidSort
	}

	if r.Status != "" && !Status(r.Status).IsValid() {
		return ErrInvalidStatus
	}
	if r.Category != "" && !Category(r.Category).IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

// PublicListRequest is the public, published-only view filter set.
type PublicListRequest struct {
	Search   string   `form:"search"`
	Category string   `form:"category"`
	Tags     []string `form:"tags"`
	Page     int      `form:"page"`
	Limit    int      `form:"limit"`
}

func (r *PublicListRequest) Normalize() error {
	normalizePage(&r.Page, &r.Limit)
	if r.Category != "" && !Category(r.Category).IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

func normalizePage(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 || *limit > MaxPageSize {
		*limit = DefaultPageSize
	}
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// PaginationMeta is returned alongside every list.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPaginationMeta(page, limit, total int) *PaginationMeta {
	return &PaginationMeta{
		Page:       page,
		PageSize:   limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

// PostResponse is the full projection for owners and moderators.
type PostResponse struct {
	ID               uuid.UUID   `json:"id"`
	Slug             string      `json:"slug"`
	Title            string      `json:"title"`
	Body             string      `json:"body"`
	Excerpt          string      `json:"excerpt"`
	Category         Category    `json:"category"`
	Tags             []string    `json:"tags"`
	FeaturedImageRef *string     `json:"featured_image_ref,omitempty"`
	AuthorID         uuid.UUID   `json:"author_id"`
	Status           Status      `json:"status"`
	IsPublished      bool        `json:"is_published"`
	PublishedAt      *time.Time  `json:"published_at,omitempty"`
	ReviewerID       *uuid.UUID  `json:"reviewer_id,omitempty"`
	ReviewedAt       *time.Time  `json:"reviewed_at,omitempty"`
	RejectionReason  *string     `json:"rejection_reason,omitempty"`
	Views            int         `json:"views"`
	LikeCount        int         `json:"like_count"`
	Likes            []uuid.UUID `json:"likes"`
	Comments         []Comment   `json:"comments"`
	Version          int         `json:"version"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func ToResponse(p *Post) *PostResponse {
	return &PostResponse{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Body:             p.Body,
		Excerpt:          p.Excerpt,
		Category:         p.Category,
		Tags:             p.Tags,
		FeaturedImageRef: p.FeaturedImageRef,
		AuthorID:         p.AuthorID,
		Status:           p.Status,
		IsPublished:      p.IsPublished,
		PublishedAt:      p.PublishedAt,
		ReviewerID:       p.ReviewerID,
		ReviewedAt:       p.ReviewedAt,
		RejectionReason:  p.RejectionReason,
		Views:            p.Views,
		LikeCount:        len(p.Likes),
		Likes:            p.Likes,
		Comments:         p.Comments,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// PublicPostResponse is the public projection. Comments are omitted
// entirely, moderation fields never leave the building.
type PublicPostResponse struct {
	ID               uuid.UUID  `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Excerpt          string     `json:"excerpt"`
	Category         Category   `json:"category"`
	Tags             []string   `json:"tags"`
	FeaturedImageRef *string    `json:"featured_image_ref,omitempty"`
	AuthorID         uuid.UUID  `json:"author_id"`
	PublishedAt      *time.Time `json:"published_at"`
	Views            int        `json:"views"`
	LikeCount        int        `json:"like_count"`
}

func ToPublicResponse(p *Post) *PublicPostResponse {
	return &PublicPostResponse{
		ID:               p.ID,
		Slug:             p.Slug,
		Title:            p.Title,
		Body:             p.Body,
		Excerpt:          p.Excerpt,
		Category:         p.Category,
		Tags:             p.Tags,
		FeaturedImageRef: p.FeaturedImageRef,
		AuthorID:         p.AuthorID,
		PublishedAt:      p.PublishedAt,
		Views:            p.Views,
		LikeCount:        len(p.Likes),
	}
}

// StatsResponse is the admin dashboard aggregate.
type StatsResponse struct {
	TotalPosts int              `json:"total_posts"`
	ByStatus   map[Status]int   `json:"by_status"`
	ByCategory map[Category]int `json:"by_category"`
	TotalViews int              `json:"total_views"`
	TotalLikes int              `json:"total_likes"`
}
