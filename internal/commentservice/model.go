package commentservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sushihentaime/blogverse/internal/common"
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const commentColumns = `c.id, c.blog_id, c.user_id, u.name, u.avatar, c.body, c.parent_id, c.is_hidden, c.created_at, c.updated_at`

func scanComment(row interface{ Scan(...any) error }, c *Comment) error {
	var parent sql.NullInt64

	err := row.Scan(&c.ID, &c.BlogID, &c.Author.ID, &c.Author.Name, &c.Author.Avatar, &c.Text, &parent, &c.IsHidden, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	if parent.Valid {
		id := int(parent.Int64)
		c.ParentID = &id
	}

	return nil
}

type blogInfo struct {
	authorID int
	title    string
}

// lockBlog locks the blog row for a counter update and returns its author.
func (m *CommentModel) lockBlog(tx *sql.Tx, ctx context.Context, blogID int) (*blogInfo, error) {
	var b blogInfo
	err := tx.QueryRowContext(ctx, `SELECT user_id, title FROM blogs WHERE id = $1 FOR UPDATE`, blogID).Scan(&b.authorID, &b.title)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &b, nil
}

func (m *CommentModel) blogExists(ctx context.Context, blogID int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1)`, blogID).Scan(&exists)
	return exists, err
}

func (m *CommentModel) getComment(q querier, ctx context.Context, id int) (*Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	var c Comment
	err := scanComment(q.QueryRowContext(ctx, query, id), &c)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *CommentModel) insert(tx *sql.Tx, ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (blog_id, user_id, body, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	var parent sql.NullInt64
	if c.ParentID != nil {
		parent = sql.NullInt64{Int64: int64(*c.ParentID), Valid: true}
	}

	err := tx.QueryRowContext(ctx, query, c.BlogID, c.Author.ID, c.Text, parent).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "comments_user_id_fkey"):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *CommentModel) adjustCommentCount(tx *sql.Tx, ctx context.Context, blogID, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE blogs SET comment_count = GREATEST(comment_count + $1, 0) WHERE id = $2`, delta, blogID)
	return err
}

func (m *CommentModel) updateText(ctx context.Context, c *Comment) error {
	query := `
		UPDATE comments
		SET body = $1, updated_at = clock_timestamp()
		WHERE id = $2
		RETURNING updated_at`

	err := m.db.QueryRowContext(ctx, query, c.Text, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// delete removes a single comment. Its replies stay and become top-level comments.
func (m *CommentModel) delete(tx *sql.Tx, ctx context.Context, id int) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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

func (m *CommentModel) setHidden(ctx context.Context, id int, hidden bool) error {
	res, err := m.db.ExecContext(ctx, `UPDATE comments SET is_hidden = $1 WHERE id = $2`, hidden, id)
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

// listVisible returns the non-hidden comments of a blog, oldest first.
func (m *CommentModel) listVisible(ctx context.Context, blogID int) ([]Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.blog_id = $1 AND NOT c.is_hidden
		ORDER BY c.created_at, c.id`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// recountAll sets every blog's comment_count from the comments table and returns how many
// blogs had drifted.
func (m *CommentModel) recountAll(ctx context.Context) (int, error) {
	query := `
		UPDATE blogs b
		SET comment_count = t.n
		FROM (
			SELECT b2.id, count(c.id) AS n
			FROM blogs b2
			LEFT JOIN comments c ON c.blog_id = b2.id
			GROUP BY b2.id
		) t
		WHERE b.id = t.id AND b.comment_count <> t.n`

	res, err := m.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

type commentContact struct {
	email         string
	name          string
	commenterName string
}

func (m *CommentModel) getCommentContact(ctx context.Context, blogAuthorID, commenterID int) (*commentContact, error) {
	var c commentContact
	err := m.db.QueryRowContext(ctx, `
		SELECT a.email, a.name, c.name
		FROM users a, users c
		WHERE a.id = $1 AND c.id = $2`, blogAuthorID, commenterID).Scan(&c.email, &c.name, &c.commenterName)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
