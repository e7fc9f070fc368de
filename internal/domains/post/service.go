package post

import (
	"context"

	"github.com/google/uuid"

	"blog-backend/internal/shared"
)

// Service is the orchestration layer: guard -> lifecycle/entity ->
// repository, with the error taxonomy applied at every step. Guard denials
// short-circuit before the repository is touched.
type Service interface {
	Create(ctx context.Context, principal shared.Principal, req *CreatePostRequest) (*PostResponse, error)
	GetByID(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)
	Update(ctx context.Context, principal shared.Principal, id uuid.UUID, req *UpdatePostRequest) (*PostResponse, error)
	Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error

	Approve(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)
	Reject(ctx context.Context, principal shared.Principal, id uuid.UUID, req *RejectPostRequest) (*PostResponse, error)
	Publish(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)
	Archive(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)

	Like(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)
	Unlike(ctx context.Context, principal shared.Principal, id uuid.UUID) (*PostResponse, error)
	AddComment(ctx context.Context, principal shared.Principal, id uuid.UUID, req *CommentRequest) (*PostResponse, error)
	DeleteComment(ctx context.Context, principal shared.Principal, id, commentID uuid.UUID) (*PostResponse, error)

	ListOwn(ctx context.Context, principal shared.Principal, req *ListOwnRequest) ([]PostResponse, *PaginationMeta, error)
	ListPending(ctx context.Context, principal shared.Principal, req *AdminListRequest) ([]PostResponse, *PaginationMeta, error)
	ListAll(ctx context.Context, principal shared.Principal, req *AdminListRequest) ([]PostResponse, *PaginationMeta, error)
	ListPublished(ctx context.Context, req *PublicListRequest) ([]PublicPostResponse, *PaginationMeta, error)

	// GetBySlug is the public single-item read path; it increments views.
	GetBySlug(ctx context.Context, slug string) (*PublicPostResponse, error)

	Stats(ctx context.Context, principal shared.Principal) (*StatsResponse, error)
}
