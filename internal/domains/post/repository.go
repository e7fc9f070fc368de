package post

import (
	"context"

	"github.com/google/uuid"
)

// Filter is the repository-level query built by the service from the three
// scoped list requests. Search terms OR across title/body/tags and AND with
// every other active filter.
type Filter struct {
	Search        string
	Category      *Category
	Status        *Status
	Approved      *bool
	AuthorID      *uuid.UUID
	Tags          []string // match-any
	PublishedOnly bool     // public view: status = published AND is_published

	SortBy string // created_at | updated_at | title | published_at
	Order  string // asc | desc

	Limit  int
	Offset int
}

// Stats is the aggregate snapshot for the admin dashboard.
type Stats struct {
	TotalPosts int
	ByStatus   map[Status]int
	ByCategory map[Category]int
	TotalViews int
	TotalLikes int
}

// Repository is the persistence collaborator. Implementations must treat
// each call as a full-document read or write; the domain holds no locks
// between calls.
type Repository interface {
	// Create persists a new post, assigning its id. A slug collision
	// surfaces as ErrSlugExists.
	Create(ctx context.Context, p *Post) error

	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// Update writes the full document, guarded by the version token.
	// The stored row must carry version = p.Version-1 or the write fails
	// with ErrVersionConflict. Slug collisions surface as ErrSlugExists.
	Update(ctx context.Context, p *Post) error

	// Delete is a hard delete, no tombstone.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page plus the total count for the filter.
	List(ctx context.Context, filter *Filter) ([]Post, int, error)

	// IncrementViews bumps the view counter atomically and returns the
	// new value. Never decrements.
	IncrementViews(ctx context.Context, id uuid.UUID) (int, error)

	Stats(ctx context.Context) (*Stats, error)
}
