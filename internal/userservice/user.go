package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogverse/internal/common"
)

var (
	ErrDuplicateEmail = errors.New("a user with this email address already exists")
	ErrEditConflict   = errors.New("unable to update the record due to an edit conflict, please try again")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

const userColumns = `id, name, email, password, role, bio, avatar, website, location, created_at, updated_at, version`

func scanUser(row interface{ Scan(...any) error }, u *User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Role, &u.Bio, &u.Avatar, &u.Website, &u.Location, &u.CreatedAt, &u.UpdatedAt, &u.Version)
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at, version`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
		u.Role,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case common.UniqueViolationError(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u User
	err := scanUser(m.db.QueryRowContext(ctx, query, email), &u)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u User
	err := scanUser(m.db.QueryRowContext(ctx, query, id), &u)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getProfile loads the user with its relation sets and blog aggregates in one round trip.
func (m *DBModel) getProfile(ctx context.Context, id int) (*Profile, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, u.bio, u.avatar, u.website, u.location, u.created_at, u.updated_at, u.version,
			COALESCE((SELECT array_agg(f.follower_id ORDER BY f.created_at) FROM follows f WHERE f.following_id = u.id), '{}'),
			COALESCE((SELECT array_agg(f.following_id ORDER BY f.created_at) FROM follows f WHERE f.follower_id = u.id), '{}'),
			COALESCE((SELECT array_agg(bm.blog_id ORDER BY bm.created_at) FROM bookmarks bm WHERE bm.user_id = u.id), '{}'),
			(SELECT count(*) FROM blogs b WHERE b.user_id = u.id),
			COALESCE((SELECT sum(b.views) FROM blogs b WHERE b.user_id = u.id), 0)::bigint,
			COALESCE((SELECT sum(b.like_count) FROM blogs b WHERE b.user_id = u.id), 0)::bigint
		FROM users u
		WHERE u.id = $1`

	var (
		p                              Profile
		followers, following, bookmarks []int64
	)

	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Email, &p.Role, &p.Bio, &p.Avatar, &p.Website, &p.Location, &p.CreatedAt, &p.UpdatedAt, &p.Version,
		pq.Array(&followers), pq.Array(&following), pq.Array(&bookmarks),
		&p.Stats.BlogCount, &p.Stats.TotalViews, &p.Stats.TotalLikes,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	p.Followers = common.Int64sToInts(followers)
	p.Following = common.Int64sToInts(following)
	p.Bookmarks = common.Int64sToInts(bookmarks)
	p.Stats.FollowerCount = len(p.Followers)
	p.Stats.FollowingCount = len(p.Following)

	return &p, nil
}

func (m *DBModel) updateUser(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, avatar = $3, website = $4, location = $5, updated_at = NOW(), version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING updated_at, version`

	args := []any{u.Name, u.Bio, u.Avatar, u.Website, u.Location, u.ID, u.Version}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.UpdatedAt, &u.Version)
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

func (m *DBModel) updateUserPassword(tx *sql.Tx, ctx context.Context, pwd Password, id int, version int) error {
	query := `
		UPDATE users
		SET password = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3`

	res, err := tx.ExecContext(ctx, query, pwd.hash, id, version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		return ErrEditConflict
	}

	return nil
}

func (m *DBModel) updateUserRole(ctx context.Context, id int, role Role) (*User, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2
		RETURNING ` + userColumns

	var u User
	err := scanUser(m.db.QueryRowContext(ctx, query, role, id), &u)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// listUsers returns users newest first.
func (m *DBModel) listUsers(ctx context.Context, limit, offset int) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// deleteUser removes the user and repairs the counters of every blog the user had liked or
// commented on, since those rows go away with the cascade.
func (m *DBModel) deleteUser(tx *sql.Tx, ctx context.Context, id int) error {
	var affected []int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(DISTINCT blog_id), '{}') FROM (
			SELECT blog_id FROM comments WHERE user_id = $1
			UNION
			SELECT blog_id FROM blog_likes WHERE user_id = $1
		) t`, id).Scan(pq.Array(&affected))
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

	_, err = tx.ExecContext(ctx, `
		UPDATE blogs b
		SET comment_count = (SELECT count(*) FROM comments c WHERE c.blog_id = b.id),
			like_count = (SELECT count(*) FROM blog_likes l WHERE l.blog_id = b.id)
		WHERE b.id = ANY($1)`, pq.Array(affected))
	return err
}
