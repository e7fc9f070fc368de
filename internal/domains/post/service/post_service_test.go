package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/post"
	"blog-backend/internal/domains/post/repository"
	"blog-backend/internal/shared"
	"blog-backend/pkg/cache"
)

func newTestService() post.Service {
	return NewPostService(repository.NewMemoryRepository(), cache.NewNoop(), time.Minute)
}

func newPrincipal(role shared.Role) shared.Principal {
	return shared.Principal{ID: uuid.New(), Role: role}
}

func createPost(t *testing.T, svc post.Service, author shared.Principal, title string) *post.PostResponse {
	t.Helper()
	created, err := svc.Create(context.Background(), author, &post.CreatePostRequest{
		Title: title,
		Body:  "body of " + title,
	})
	require.NoError(t, err)
	return created
}

// The full editorial round trip: submit, reject, revise, approve, publish,
// read publicly.
func TestModerationWorkflow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)

	created := createPost(t, svc, author, "My Journey With Go")
	require.Equal(t, post.StatusPending, created.Status)
	require.Equal(t, "my-journey-with-go", created.Slug)

	// reviewer rejects with a reason the author can see
	rejected, err := svc.Reject(ctx, reviewer, created.ID, &post.RejectPostRequest{Reason: "needs more detail"})
	require.NoError(t, err)
	assert.Equal(t, post.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "needs more detail", *rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewerID)
	assert.Equal(t, reviewer.ID, *rejected.ReviewerID)

	// author revises; the edit resubmits and clears the verdict
	body := "a much longer and more detailed body"
	resubmitted, err := svc.Update(ctx, author, created.ID, &post.UpdatePostRequest{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, post.StatusPending, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectionReason)
	assert.Nil(t, resubmitted.ReviewerID)
	assert.Nil(t, resubmitted.ReviewedAt)

	// second review passes
	approved, err := svc.Approve(ctx, reviewer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusApproved, approved.Status)

	published, err := svc.Publish(ctx, reviewer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusPublished, published.Status)
	assert.True(t, published.IsPublished)
	require.NotNil(t, published.PublishedAt)

	// the post is now on the public surface
	list, meta, err := svc.ListPublished(ctx, &post.PublicListRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 1, meta.Total)
}

func TestTransitionGuards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)

	created := createPost(t, svc, author, "Guarded Post")

	t.Run("publish before approval fails", func(t *testing.T) {
		_, err := svc.Publish(ctx, reviewer, created.ID)
		assert.Equal(t, post.KindInvalidTransition, post.KindOf(err))
	})

	t.Run("author cannot approve own post", func(t *testing.T) {
		_, err := svc.Approve(ctx, author, created.ID)
		assert.ErrorIs(t, err, post.ErrForbidden)
	})

	t.Run("reject without reason fails", func(t *testing.T) {
		_, err := svc.Reject(ctx, reviewer, created.ID, &post.RejectPostRequest{})
		assert.ErrorIs(t, err, post.ErrEmptyRejectionReason)
	})

	t.Run("double approve fails", func(t *testing.T) {
		_, err := svc.Approve(ctx, reviewer, created.ID)
		require.NoError(t, err)
		_, err = svc.Approve(ctx, reviewer, created.ID)
		assert.Equal(t, post.KindInvalidTransition, post.KindOf(err))
	})

	t.Run("archive requires published", func(t *testing.T) {
		_, err := svc.Archive(ctx, reviewer, created.ID)
		assert.Equal(t, post.KindInvalidTransition, post.KindOf(err))
	})

	t.Run("unknown post id", func(t *testing.T) {
		_, err := svc.Approve(ctx, reviewer, uuid.New())
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestReadVisibility(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	stranger := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)

	created := createPost(t, svc, author, "Private While Pending")

	t.Run("owner sees own pending post", func(t *testing.T) {
		got, err := svc.GetByID(ctx, author, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("another author is denied", func(t *testing.T) {
		_, err := svc.GetByID(ctx, stranger, created.ID)
		assert.ErrorIs(t, err, post.ErrForbidden)
	})

	t.Run("reviewer sees everything", func(t *testing.T) {
		_, err := svc.GetByID(ctx, reviewer, created.ID)
		assert.NoError(t, err)
	})

	t.Run("unpublished slug is not public", func(t *testing.T) {
		_, err := svc.GetBySlug(ctx, created.Slug)
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestGetBySlugCountsViews(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)

	created := createPost(t, svc, author, "Counted Reads")
	_, err := svc.Approve(ctx, reviewer, created.ID)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, reviewer, created.ID)
	require.NoError(t, err)

	first, err := svc.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Views)

	second, err := svc.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Views)
}

func TestUpdateRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)
	admin := newPrincipal(shared.RoleAdmin)

	t.Run("pending post is locked for the author", func(t *testing.T) {
		created := createPost(t, svc, author, "Locked While Pending")
		title := "New Title"
		_, err := svc.Update(ctx, author, created.ID, &post.UpdatePostRequest{Title: &title})
		assert.ErrorIs(t, err, post.ErrForbidden)
	})

	t.Run("admin edit keeps status", func(t *testing.T) {
		created := createPost(t, svc, author, "Admin Touched")
		_, err := svc.Approve(ctx, reviewer, created.ID)
		require.NoError(t, err)
		_, err = svc.Publish(ctx, reviewer, created.ID)
		require.NoError(t, err)

		title := "Admin Fixed Typo"
		updated, err := svc.Update(ctx, admin, created.ID, &post.UpdatePostRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, post.StatusPublished, updated.Status)
		assert.Equal(t, "admin-fixed-typo", updated.Slug)
	})

	t.Run("title change on rejected post resubmits with fresh slug", func(t *testing.T) {
		created := createPost(t, svc, author, "First Draft Title")
		_, err := svc.Reject(ctx, reviewer, created.ID, &post.RejectPostRequest{Reason: "rework the title"})
		require.NoError(t, err)

		title := "Second Draft Title"
		updated, err := svc.Update(ctx, author, created.ID, &post.UpdatePostRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, post.StatusPending, updated.Status)
		assert.Equal(t, "second-draft-title", updated.Slug)
	})
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	stranger := newPrincipal(shared.RoleAuthor)
	admin := newPrincipal(shared.RoleAdmin)

	t.Run("owner deletes own post", func(t *testing.T) {
		created := createPost(t, svc, author, "Owner Deletes")
		require.NoError(t, svc.Delete(ctx, author, created.ID))
		_, err := svc.GetByID(ctx, author, created.ID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		created := createPost(t, svc, author, "Protected Post")
		assert.ErrorIs(t, svc.Delete(ctx, stranger, created.ID), post.ErrForbidden)
	})

	t.Run("admin deletes any post", func(t *testing.T) {
		created := createPost(t, svc, author, "Admin Removes")
		require.NoError(t, svc.Delete(ctx, admin, created.ID))
	})
}

func TestSlugCollisionFallback(t *testing.T) {
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)

	first := createPost(t, svc, author, "Same Title")
	second := createPost(t, svc, author, "Same Title")

	assert.Equal(t, "same-title", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "same-title-")
}

func TestEngagement(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)
	reader := newPrincipal(shared.RoleAuthor)

	publish := func(t *testing.T, title string) *post.PostResponse {
		t.Helper()
		created := createPost(t, svc, author, title)
		_, err := svc.Approve(ctx, reviewer, created.ID)
		require.NoError(t, err)
		p, err := svc.Publish(ctx, reviewer, created.ID)
		require.NoError(t, err)
		return p
	}

	t.Run("like is idempotent", func(t *testing.T) {
		p := publish(t, "Likeable Post")

		liked, err := svc.Like(ctx, reader, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, liked.LikeCount)

		again, err := svc.Like(ctx, reader, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.LikeCount)
		assert.Equal(t, liked.Version, again.Version)

		unliked, err := svc.Unlike(ctx, reader, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, unliked.LikeCount)

		// unliking twice is also a no-op
		again, err = svc.Unlike(ctx, reader, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.LikeCount)
	})

	t.Run("comments only on published posts", func(t *testing.T) {
		pending := createPost(t, svc, author, "Not Yet Commentable")
		_, err := svc.AddComment(ctx, reader, pending.ID, &post.CommentRequest{Text: "first!"})
		assert.Equal(t, post.KindInvalidTransition, post.KindOf(err))

		p := publish(t, "Commentable Post")
		withComment, err := svc.AddComment(ctx, reader, p.ID, &post.CommentRequest{Text: "great read"})
		require.NoError(t, err)
		require.Len(t, withComment.Comments, 1)
		assert.Equal(t, "great read", withComment.Comments[0].Text)
	})

	t.Run("comment removal is moderation-only", func(t *testing.T) {
		p := publish(t, "Moderated Thread")
		withComment, err := svc.AddComment(ctx, reader, p.ID, &post.CommentRequest{Text: "spam spam spam"})
		require.NoError(t, err)
		commentID := withComment.Comments[0].ID

		_, err = svc.DeleteComment(ctx, reader, p.ID, commentID)
		assert.ErrorIs(t, err, post.ErrForbidden)

		cleaned, err := svc.DeleteComment(ctx, reviewer, p.ID, commentID)
		require.NoError(t, err)
		assert.Empty(t, cleaned.Comments)

		_, err = svc.DeleteComment(ctx, reviewer, p.ID, uuid.New())
		assert.ErrorIs(t, err, post.ErrCommentNotFound)
	})
}

func TestListViews(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	otherAuthor := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)
	admin := newPrincipal(shared.RoleAdmin)

	mine := createPost(t, svc, author, "Mine Alone")
	createPost(t, svc, otherAuthor, "Someone Else's")

	published := createPost(t, svc, author, "Out In The World")
	_, err := svc.Approve(ctx, reviewer, published.ID)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, reviewer, published.ID)
	require.NoError(t, err)

	t.Run("own view is author-scoped", func(t *testing.T) {
		list, meta, err := svc.ListOwn(ctx, author, &post.ListOwnRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, meta.Total)
		for _, item := range list {
			assert.Equal(t, author.ID, item.AuthorID)
		}
	})

	t.Run("own view filters by status", func(t *testing.T) {
		list, _, err := svc.ListOwn(ctx, author, &post.ListOwnRequest{Status: "pending"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)
	})

	t.Run("pending queue needs moderation rights", func(t *testing.T) {
		_, _, err := svc.ListPending(ctx, author, &post.AdminListRequest{})
		assert.ErrorIs(t, err, post.ErrForbidden)

		list, _, err := svc.ListPending(ctx, reviewer, &post.AdminListRequest{})
		require.NoError(t, err)
		for _, item := range list {
			assert.Equal(t, post.StatusPending, item.Status)
		}
		assert.Len(t, list, 2)
	})

	t.Run("unrestricted view is admin-only", func(t *testing.T) {
		_, _, err := svc.ListAll(ctx, reviewer, &post.AdminListRequest{})
		assert.ErrorIs(t, err, post.ErrForbidden)

		list, meta, err := svc.ListAll(ctx, admin, &post.AdminListRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, meta.Total)
		assert.Len(t, list, 3)
	})

	t.Run("public view hides everything unpublished", func(t *testing.T) {
		list, meta, err := svc.ListPublished(ctx, &post.PublicListRequest{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, published.ID, list[0].ID)
		assert.Equal(t, 1, meta.Total)
	})

	t.Run("admin filter by author", func(t *testing.T) {
		list, _, err := svc.ListAll(ctx, admin, &post.AdminListRequest{AuthorID: otherAuthor.ID.String()})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, otherAuthor.ID, list[0].AuthorID)
	})

	t.Run("bad author filter is invalid input", func(t *testing.T) {
		_, _, err := svc.ListAll(ctx, admin, &post.AdminListRequest{AuthorID: "not-a-uuid"})
		require.Error(t, err)
		assert.Equal(t, post.KindInvalidInput, post.KindOf(err))
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	author := newPrincipal(shared.RoleAuthor)
	reviewer := newPrincipal(shared.RoleReviewer)
	admin := newPrincipal(shared.RoleAdmin)

	created := createPost(t, svc, author, "Counted Post")
	_, err := svc.Approve(ctx, reviewer, created.ID)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, reviewer, created.ID)
	require.NoError(t, err)
	createPost(t, svc, author, "Still Pending")

	t.Run("admin only", func(t *testing.T) {
		_, err := svc.Stats(ctx, reviewer)
		assert.ErrorIs(t, err, post.ErrForbidden)
	})

	t.Run("aggregates", func(t *testing.T) {
		stats, err := svc.Stats(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalPosts)
		assert.Equal(t, 1, stats.ByStatus[post.StatusPublished])
		assert.Equal(t, 1, stats.ByStatus[post.StatusPending])
	})
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	author := newPrincipal(shared.RoleAuthor)

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.Create(ctx, author, &post.CreatePostRequest{Body: "body"})
		require.Error(t, err)
		assert.Equal(t, post.KindInvalidInput, post.KindOf(err))
	})

	t.Run("anonymous cannot create", func(t *testing.T) {
		_, err := svc.Create(ctx, shared.Principal{}, &post.CreatePostRequest{Title: "t", Body: "b"})
		assert.ErrorIs(t, err, post.ErrForbidden)
	})
}
