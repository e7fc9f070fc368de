package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"blog-backend/internal/domains/post"
	"blog-backend/pkg/database"
)

const uniqueViolation = "23505"

// postgresRepository implements post.Repository with raw SQL over pgxpool.
// The posts table carries the full document: tags and likes as arrays,
// comments as jsonb.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) post.Repository {
	return &postgresRepository{pool: pool}
}

const postColumns = `
	id, slug, title, body, excerpt, category, tags, featured_image_ref,
	author_id, status, is_published, published_at,
	reviewer_id, reviewed_at, rejection_reason,
	views, likes, comments, version, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *post.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	comments, err := json.Marshal(p.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}

	query := `
		INSERT INTO posts (
			id, slug, title, body, excerpt, category, tags, featured_image_ref,
			author_id, status, is_published, published_at,
			reviewer_id, reviewed_at, rejection_reason,
			views, likes, comments, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20, $21
		)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.Slug, p.Title, p.Body, p.Excerpt, p.Category, pq.Array(p.Tags), p.FeaturedImageRef,
		p.AuthorID, p.Status, p.IsPublished, p.PublishedAt,
		p.ReviewerID, p.ReviewedAt, p.RejectionReason,
		p.Views, pq.Array(likesToStrings(p.Likes)), comments, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return post.ErrSlugExists
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = $1`, postColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE slug = $1`, postColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, slug))
}

// Update writes the full document guarded by the version token. Views are
// deliberately excluded: the counter is owned by IncrementViews.
func (r *postgresRepository) Update(ctx context.Context, p *post.Post) error {
	comments, err := json.Marshal(p.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}

	query := `
		UPDATE posts
		SET slug = $1, title = $2, body = $3, excerpt = $4, category = $5,
		    tags = $6, featured_image_ref = $7,
		    status = $8, is_published = $9, published_at = $10,
		    reviewer_id = $11, reviewed_at = $12, rejection_reason = $13,
		    likes = $14, comments = $15, version = $16, updated_at = $17
		WHERE id = $18 AND version = $19
	`

	result, err := r.pool.Exec(ctx, query,
		p.Slug, p.Title, p.Body, p.Excerpt, p.Category,
		pq.Array(p.Tags), p.FeaturedImageRef,
		p.Status, p.IsPublished, p.PublishedAt,
		p.ReviewerID, p.ReviewedAt, p.RejectionReason,
		pq.Array(likesToStrings(p.Likes)), comments, p.Version, p.UpdatedAt,
		p.ID, p.Version-1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return post.ErrSlugExists
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or another writer got there first.
		exists, err := r.exists(ctx, p.ID)
		if err != nil {
			return err
		}
		if !exists {
			return post.ErrPostNotFound
		}
		return post.ErrVersionConflict
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return post.ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter *post.Filter) ([]post.Post, int, error) {
	whereClause, args := buildWhereClause(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM posts WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM posts
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, postColumns, whereClause, orderClause(filter), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	posts := make([]post.Post, 0, filter.Limit)
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return posts, total, nil
}

func (r *postgresRepository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var views int
	err := r.pool.QueryRow(ctx,
		`UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if err == pgx.ErrNoRows {
		return 0, post.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}

// Stats runs its aggregate queries inside one transaction so the numbers
// come from a single snapshot.
func (r *postgresRepository) Stats(ctx context.Context) (*post.Stats, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*post.Stats, error) {
		stats := &post.Stats{
			ByStatus:   make(map[post.Status]int),
			ByCategory: make(map[post.Category]int),
		}

		rows, err := tx.Query(ctx, `SELECT status, COUNT(*) FROM posts GROUP BY status`)
		if err != nil {
			return nil, fmt.Errorf("status counts query failed: %w", err)
		}
		for rows.Next() {
			var status post.Status
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan status count: %w", err)
			}
			stats.ByStatus[status] = count
			stats.TotalPosts += count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}

		rows, err = tx.Query(ctx, `SELECT category, COUNT(*) FROM posts GROUP BY category`)
		if err != nil {
			return nil, fmt.Errorf("category counts query failed: %w", err)
		}
		for rows.Next() {
			var category post.Category
			var count int
			if err := rows.Scan(&category, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan category count: %w", err)
			}
			stats.ByCategory[category] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}

		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(views), 0), COALESCE(SUM(cardinality(likes)), 0) FROM posts`,
		).Scan(&stats.TotalViews, &stats.TotalLikes)
		if err != nil {
			return nil, fmt.Errorf("aggregate query failed: %w", err)
		}

		return stats, nil
	})
}

// buildWhereClause constructs the WHERE clause and args for a filter.
// Search ORs across title/body/tags; everything else ANDs.
func buildWhereClause(filter *post.Filter) (string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIndex := 1

	if filter.PublishedOnly {
		conditions = append(conditions, "status = 'published' AND is_published = TRUE")
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(title ILIKE $%d OR body ILIKE $%d OR EXISTS (
				SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d
			))`, argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.Approved != nil {
		if *filter.Approved {
			conditions = append(conditions, "status IN ('approved', 'published')")
		} else {
			conditions = append(conditions, "status NOT IN ('approved', 'published')")
		}
	}

	if len(filter.Tags) > 0 {
		// match-any: overlap between the post's tags and the wanted set
		conditions = append(conditions, fmt.Sprintf("tags && $%d", argIndex))
		args = append(args, pq.Array(post.NormalizeTags(filter.Tags)))
		argIndex++
	}

	return strings.Join(conditions, " AND "), args
}

// orderClause whitelists sort columns; anything unexpected falls back to
// created_at desc.
func orderClause(filter *post.Filter) string {
	column := "created_at"
	switch filter.SortBy {
	case post.SortByTitle:
		column = "LOWER(title)"
	case post.SortByUpdatedAt:
		column = "updated_at"
	case "published_at":
		column = "published_at"
	case post.SortByCreatedAt, "":
	}

	direction := "DESC"
	if filter.Order == post.OrderAsc {
		direction = "ASC"
	}
	return column + " " + direction
}

func (r *postgresRepository) scanOne(row pgx.Row) (*post.Post, error) {
	var p post.Post
	var tags []string
	var likes []string
	var comments []byte

	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Body, &p.Excerpt, &p.Category, pq.Array(&tags), &p.FeaturedImageRef,
		&p.AuthorID, &p.Status, &p.IsPublished, &p.PublishedAt,
		&p.ReviewerID, &p.ReviewedAt, &p.RejectionReason,
		&p.Views, pq.Array(&likes), &comments, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, post.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	p.Tags = tags
	p.Likes, err = likesFromStrings(likes)
	if err != nil {
		return nil, err
	}

	p.Comments = []post.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &p.Comments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
		}
	}

	return &p, nil
}

func (r *postgresRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func likesToStrings(likes []uuid.UUID) []string {
	out := make([]string, len(likes))
	for i, id := range likes {
		out[i] = id.String()
	}
	return out
}

func likesFromStrings(likes []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(likes))
	for _, s := range likes {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid principal id in likes: %w", err)
		}
		out = append(out, id)
	}
	return out, nil
}
