package socialservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogverse/internal/common"
)

func newSocialModel(db *sql.DB) *SocialModel {
	return &SocialModel{db: db}
}

// lockOwner locks the owning row so toggles on the same owner are serialized.
func (m *SocialModel) lockOwner(tx *sql.Tx, ctx context.Context, t relationTable, ownerID int) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, t.ownerTable)

	var id int
	err := tx.QueryRowContext(ctx, query, ownerID).Scan(&id)
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

func (m *SocialModel) targetExists(tx *sql.Tx, ctx context.Context, t relationTable, targetID int) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, t.targetTable)

	var exists bool
	err := tx.QueryRowContext(ctx, query, targetID).Scan(&exists)
	return exists, err
}

// removeEdge deletes the edge and reports whether it existed.
func (m *SocialModel) removeEdge(tx *sql.Tx, ctx context.Context, t relationTable, ownerID, targetID int) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.table, t.ownerCol, t.targetCol)

	res, err := tx.ExecContext(ctx, query, ownerID, targetID)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (m *SocialModel) addEdge(tx *sql.Tx, ctx context.Context, t relationTable, ownerID, targetID int) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, t.table, t.ownerCol, t.targetCol)

	_, err := tx.ExecContext(ctx, query, ownerID, targetID)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, t.targetFKey):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *SocialModel) adjustLikeCount(tx *sql.Tx, ctx context.Context, blogID, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE blogs SET like_count = like_count + $1 WHERE id = $2`, delta, blogID)
	return err
}

// members returns the targets of the owner's relation, oldest edge first.
func (m *SocialModel) members(tx *sql.Tx, ctx context.Context, t relationTable, ownerID int) ([]int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(array_agg(%s ORDER BY created_at), '{}')
		FROM %s
		WHERE %s = $1`, t.targetCol, t.table, t.ownerCol)

	var ids []int64
	if err := tx.QueryRowContext(ctx, query, ownerID).Scan(pq.Array(&ids)); err != nil {
		return nil, err
	}

	return common.Int64sToInts(ids), nil
}

func (m *SocialModel) userExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// listMembers returns the followers of userID, or the users it follows, oldest edge first.
func (m *SocialModel) listMembers(ctx context.Context, userID int, followers bool) ([]Member, error) {
	query := `
		SELECT u.id, u.name, u.avatar, u.bio
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at`

	if followers {
		query = `
		SELECT u.id, u.name, u.avatar, u.bio
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at`
	}

	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var mem Member
		if err := rows.Scan(&mem.ID, &mem.Name, &mem.Avatar, &mem.Bio); err != nil {
			return nil, err
		}
		members = append(members, mem)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (m *SocialModel) bookmarkIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int64
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(blog_id ORDER BY created_at DESC), '{}')
		FROM bookmarks
		WHERE user_id = $1`, userID).Scan(pq.Array(&ids))
	if err != nil {
		return nil, err
	}

	return common.Int64sToInts(ids), nil
}

type followContact struct {
	email        string
	name         string
	followerName string
}

func (m *SocialModel) getFollowContact(ctx context.Context, followerID, followingID int) (*followContact, error) {
	var c followContact
	err := m.db.QueryRowContext(ctx, `
		SELECT t.email, t.name, f.name
		FROM users t, users f
		WHERE t.id = $1 AND f.id = $2`, followingID, followerID).Scan(&c.email, &c.name, &c.followerName)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
