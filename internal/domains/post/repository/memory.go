package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"blog-backend/internal/domains/post"
)

// MemoryRepository implements post.Repository with in-memory storage.
// Backs unit tests and local development without a database. Filtering and
// sorting mirror the postgres implementation's semantics.
type MemoryRepository struct {
	mu     sync.RWMutex
	posts  map[uuid.UUID]*post.Post
	bySlug map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:  make(map[uuid.UUID]*post.Post),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, p *post.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlug[p.Slug]; taken {
		return post.ErrSlugExists
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	cp := clone(p)
	r.posts[p.ID] = cp
	r.bySlug[p.Slug] = p.ID
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return clone(stored), nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return clone(r.posts[id]), nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *post.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[p.ID]
	if !ok {
		return post.ErrPostNotFound
	}
	if stored.Version != p.Version-1 {
		return post.ErrVersionConflict
	}
	if other, taken := r.bySlug[p.Slug]; taken && other != p.ID {
		return post.ErrSlugExists
	}

	delete(r.bySlug, stored.Slug)
	cp := clone(p)
	// Views are owned by IncrementViews; a full-document write must not
	// clobber reads that landed since this copy was loaded.
	cp.Views = stored.Views
	r.posts[p.ID] = cp
	r.bySlug[p.Slug] = p.ID
	p.Views = stored.Views
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return post.ErrPostNotFound
	}
	delete(r.bySlug, stored.Slug)
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, filter *post.Filter) ([]post.Post, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*post.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(p, filter) {
			matched = append(matched, p)
		}
	}

	sortPosts(matched, filter.SortBy, filter.Order)

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}

	page := make([]post.Post, 0, end-start)
	for _, p := range matched[start:end] {
		page = append(page, *clone(p))
	}
	return page, total, nil
}

func (r *MemoryRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok {
		return 0, post.ErrPostNotFound
	}
	stored.Views++
	return stored.Views, nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (*post.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &post.Stats{
		ByStatus:   make(map[post.Status]int),
		ByCategory: make(map[post.Category]int),
	}
	for _, p := range r.posts {
		stats.TotalPosts++
		stats.ByStatus[p.Status]++
		stats.ByCategory[p.Category]++
		stats.TotalViews += p.Views
		stats.TotalLikes += len(p.Likes)
	}
	return stats, nil
}

func matches(p *post.Post, f *post.Filter) bool {
	if f.PublishedOnly && (p.Status != post.StatusPublished || !p.IsPublished) {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.Approved != nil {
		approved := p.Status == post.StatusApproved || p.Status == post.StatusPublished
		if approved != *f.Approved {
			return false
		}
	}
	if len(f.Tags) > 0 && !hasAnyTag(p.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	return true
}

// matchesSearch ORs a case-insensitive substring match across title, body
// and tags.
func matchesSearch(p *post.Post, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Body), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func hasAnyTag(postTags, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		for _, t := range postTags {
			if t == w {
				return true
			}
		}
	}
	return false
}

func sortPosts(posts []*post.Post, sortBy, order string) {
	cmp := func(a, b *post.Post) int {
		switch sortBy {
		case post.SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case post.SortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "published_at":
			switch {
			case a.PublishedAt == nil && b.PublishedAt == nil:
				return 0
			case a.PublishedAt == nil:
				return -1
			case b.PublishedAt == nil:
				return 1
			default:
				return a.PublishedAt.Compare(*b.PublishedAt)
			}
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	asc := order == post.OrderAsc
	sort.SliceStable(posts, func(i, j int) bool {
		if asc {
			return cmp(posts[i], posts[j]) < 0
		}
		return cmp(posts[i], posts[j]) > 0
	})
}

// clone deep-copies a post so callers cannot mutate stored state.
func clone(p *post.Post) *post.Post {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Likes = append([]uuid.UUID(nil), p.Likes...)
	cp.Comments = append([]post.Comment(nil), p.Comments...)
	return &cp
}
