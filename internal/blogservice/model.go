package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogverse/internal/common"
)

var (
	ErrUserForeignKey = errors.New("user_id does not exist")
	ErrEditConflict   = errors.New("unable to update the record due to an edit conflict, please try again")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

const blogColumns = `
	b.id, b.title, b.content, b.user_id, u.name, b.tags, b.category, b.like_count, b.views,
	b.comment_count, b.created_at, b.updated_at, b.version,
	COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at) FROM blog_likes l WHERE l.blog_id = b.id), '{}')`

func scanBlog(row interface{ Scan(...any) error }, b *Blog, extra ...any) error {
	var likes []int64

	dest := append(extra, &b.ID, &b.Title, &b.Content, &b.Author.ID, &b.Author.Name, pq.Array(&b.Tags), &b.Category,
		&b.LikeCount, &b.Views, &b.CommentCount, &b.CreatedAt, &b.UpdatedAt, &b.Version, pq.Array(&likes))
	if err := row.Scan(dest...); err != nil {
		return err
	}

	b.Likes = common.Int64sToInts(likes)
	if b.Tags == nil {
		b.Tags = []string{}
	}

	return nil
}

func (m *BlogModel) insert(ctx context.Context, req *CreateBlogRequest) (int, error) {
	query := `
		INSERT INTO blogs (title, content, user_id, tags, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int
	err := m.db.QueryRowContext(ctx, query, req.Title, req.Content, req.UserID, pq.Array(req.Tags), req.Category).Scan(&id)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "blogs_user_id_fkey"):
			return 0, ErrUserForeignKey
		default:
			return 0, err
		}
	}

	return id, nil
}

// getBlogById returns a blog joined with its author's name and its likes.
func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	var blog Blog
	err := scanBlog(m.db.QueryRowContext(ctx, query, id), &blog)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *BlogModel) incrementViews(ctx context.Context, id int) error {
	res, err := m.db.ExecContext(ctx, `UPDATE blogs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}

func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, tags = $3, category = $4, updated_at = NOW(), version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at`

	args := []any{blog.Title, blog.Content, pq.Array(blog.Tags), blog.Category, blog.ID, blog.Version}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.Version, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, blogId int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, blogId)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) getBlogsByUserId(ctx context.Context, userID int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC`

	return m.queryBlogs(ctx, query, userID)
}

// getBlogsByIds returns the blogs in the order of ids, skipping ids that no longer exist.
func (m *BlogModel) getBlogsByIds(ctx context.Context, ids []int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM unnest($1::bigint[]) WITH ORDINALITY AS x(id, ord)
		JOIN blogs b ON b.id = x.id
		JOIN users u ON b.user_id = u.id
		ORDER BY x.ord`

	return m.queryBlogs(ctx, query, pq.Array(ids))
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		if err := scanBlog(rows, &blog); err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// getBlogs returns one page of blogs matching f, newest first, and the total number of matches.
func (m *BlogModel) getBlogs(ctx context.Context, f Filter) ([]Blog, int, error) {
	query := `
		SELECT count(*) OVER(), ` + blogColumns + `
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE ($1 = '' OR b.title ILIKE $2 OR b.content ILIKE $2 OR lower($1) = ANY(b.tags))
		AND ($3 = '' OR b.category = $3)
		AND ($4 = '' OR $4 = ANY(b.tags))
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $5 OFFSET $6`

	pattern := "%" + escapeLike(f.Query) + "%"

	rows, err := m.db.QueryContext(ctx, query, f.Query, pattern, string(f.Category), f.Tag, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		if err := scanBlog(rows, &blog, &total); err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}
