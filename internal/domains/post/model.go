package post

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/shared/utils"
)

// Status is the lifecycle state of a post. Exactly one status is current
// at any time; transitions go through the methods in lifecycle.go.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Category is the closed set of post categories.
type Category string

const (
	CategoryTechnology Category = "technology"
	CategoryLifestyle  Category = "lifestyle"
	CategoryTravel     Category = "travel"
	CategoryFood       Category = "food"
	CategoryBusiness   Category = "business"
	CategoryOther      Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryTechnology, CategoryLifestyle, CategoryTravel, CategoryFood, CategoryBusiness, CategoryOther:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryTechnology, CategoryLifestyle, CategoryTravel,
		CategoryFood, CategoryBusiness, CategoryOther,
	}
}

// MaxExcerptLength caps both client-supplied and derived excerpts.
const MaxExcerptLength = 200

// Comment is an embedded, append-only record on a post. Removal is a
// moderation-only override.
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Post is the content entity.
type Post struct {
	// Identity
	ID   uuid.UUID `json:"id" db:"id"`
	Slug string    `json:"slug" db:"slug"`

	// Content
	Title            string   `json:"title" db:"title"`
	Body             string   `json:"body" db:"body"`
	Excerpt          string   `json:"excerpt" db:"excerpt"`
	Category         Category `json:"category" db:"category"`
	Tags             []string `json:"tags" db:"tags"`
	FeaturedImageRef *string  `json:"featured_image_ref" db:"featured_image_ref"`

	// Ownership - set once at creation, immutable
	AuthorID uuid.UUID `json:"author_id" db:"author_id"`

	// Lifecycle
	Status      Status     `json:"status" db:"status"`
	IsPublished bool       `json:"is_published" db:"is_published"`
	PublishedAt *time.Time `json:"published_at" db:"published_at"`

	// Moderation - populated while status is approved/rejected,
	// cleared on resubmission
	ReviewerID      *uuid.UUID `json:"reviewer_id" db:"reviewer_id"`
	ReviewedAt      *time.Time `json:"reviewed_at" db:"reviewed_at"`
	RejectionReason *string    `json:"rejection_reason" db:"rejection_reason"`

	// Engagement
	Views    int         `json:"views" db:"views"`
	Likes    []uuid.UUID `json:"likes" db:"likes"`
	Comments []Comment   `json:"comments" db:"comments"`

	// Optimistic concurrency token
	Version int `json:"version" db:"version"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// New builds a post from a validated create request. Submissions always
// enter the review queue, there is no unreviewed publish path.
func New(authorID uuid.UUID, req *CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrEmptyBody
	}

	category := CategoryOther
	if req.Category != "" {
		category = Category(req.Category)
		if !category.IsValid() {
			return nil, ErrInvalidCategory
		}
	}

	now := time.Now().UTC()
	p := &Post{
		Title:            title,
		Body:             req.Body,
		Excerpt:          deriveExcerpt(req.Excerpt, req.Body),
		Category:         category,
		Tags:             NormalizeTags(req.Tags),
		FeaturedImageRef: req.FeaturedImageRef,
		AuthorID:         authorID,
		Status:           StatusPending,
		Slug:             utils.GenerateSlug(title),
		Likes:            []uuid.UUID{},
		Comments:         []Comment{},
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	return p, nil
}

// ApplyUpdate mutates content fields from an update request. The slug is
// recomputed when the title changes. Status handling (resubmission) is the
// caller's responsibility via Resubmit.
func (p *Post) ApplyUpdate(req *UpdatePostRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		if title != p.Title {
			p.Title = title
			p.Slug = utils.GenerateSlug(title)
		}
	}

	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return ErrEmptyBody
		}
		p.Body = *req.Body
		if req.Excerpt == nil && p.Excerpt == "" {
			p.Excerpt = deriveExcerpt("", p.Body)
		}
	}

	if req.Excerpt != nil {
		p.Excerpt = deriveExcerpt(*req.Excerpt, p.Body)
	}

	if req.Category != nil {
		category := Category(*req.Category)
		if !category.IsValid() {
			return ErrInvalidCategory
		}
		p.Category = category
	}

	if req.Tags != nil {
		p.Tags = NormalizeTags(req.Tags)
	}

	if req.FeaturedImageRef != nil {
		p.FeaturedImageRef = req.FeaturedImageRef
	}

	p.UpdatedAt = time.Now().UTC()
	return nil
}

// HasLiked reports whether the principal already likes the post.
func (p *Post) HasLiked(principalID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == principalID {
			return true
		}
	}
	return false
}

// AddLike is idempotent: liking twice is a no-op.
func (p *Post) AddLike(principalID uuid.UUID) {
	if p.HasLiked(principalID) {
		return
	}
	p.Likes = append(p.Likes, principalID)
	p.UpdatedAt = time.Now().UTC()
}

// RemoveLike is idempotent: removing an absent like is a no-op.
func (p *Post) RemoveLike(principalID uuid.UUID) {
	for i, id := range p.Likes {
		if id == principalID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			p.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// AddComment appends a comment and returns it.
func (p *Post) AddComment(authorID uuid.UUID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	comment := Comment{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	p.Comments = append(p.Comments, comment)
	p.UpdatedAt = comment.CreatedAt
	return &comment, nil
}

// RemoveComment deletes a comment by id (moderation override).
func (p *Post) RemoveComment(commentID uuid.UUID) error {
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			p.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrCommentNotFound
}

// NormalizeTags trims, lowercases and de-duplicates a tag list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// deriveExcerpt prefers the supplied excerpt, falling back to the body,
// truncated at the excerpt cap.
func deriveExcerpt(excerpt, body string) string {
	src := strings.TrimSpace(excerpt)
	if src == "" {
		src = strings.TrimSpace(body)
	}

	runes := []rune(src)
	if len(runes) <= MaxExcerptLength {
		return src
	}
	return string(runes[:MaxExcerptLength])
}
