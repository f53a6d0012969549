package analyticsservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sushihentaime/blogverse/internal/common"
)

func newAnalyticsModel(db *sql.DB) *AnalyticsModel {
	return &AnalyticsModel{db: db}
}

func (m *AnalyticsModel) globalStats(ctx context.Context) (*GlobalStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM blogs),
			(SELECT count(*) FROM comments),
			(SELECT COALESCE(sum(views), 0)::bigint FROM blogs),
			(SELECT count(*) FROM blog_likes)`

	var s GlobalStats
	err := m.db.QueryRowContext(ctx, query).Scan(&s.TotalUsers, &s.TotalBlogs, &s.TotalComments, &s.TotalViews, &s.TotalLikes)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (m *AnalyticsModel) userStats(ctx context.Context, userID int) (*UserStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM blogs WHERE user_id = u.id),
			(SELECT COALESCE(sum(views), 0)::bigint FROM blogs WHERE user_id = u.id),
			(SELECT count(*) FROM blog_likes l JOIN blogs b ON b.id = l.blog_id WHERE b.user_id = u.id),
			(SELECT count(*) FROM follows WHERE following_id = u.id),
			(SELECT count(*) FROM comments c JOIN blogs b ON b.id = c.blog_id WHERE b.user_id = u.id)
		FROM users u
		WHERE u.id = $1`

	var s UserStats
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&s.TotalPosts, &s.TotalViews, &s.TotalLikes, &s.TotalFollowers, &s.TotalComments)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &s, nil
}

const popularColumns = `b.id, b.title, b.category, b.views, b.like_count, u.id, u.name, u.avatar, b.created_at`

func scanPopular(row interface{ Scan(...any) error }, p *PopularPost) error {
	return row.Scan(&p.ID, &p.Title, &p.Category, &p.Views, &p.LikeCount, &p.Author.ID, &p.Author.Name, &p.Author.Avatar, &p.CreatedAt)
}

// popularPosts ranks blogs created at or after since by views, then likes. A zero since
// ranks every blog.
func (m *AnalyticsModel) popularPosts(ctx context.Context, limit int, since time.Time) ([]PopularPost, error) {
	query := `
		SELECT ` + popularColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.user_id
		WHERE ($1::timestamptz IS NULL OR b.created_at >= $1)
		ORDER BY b.views DESC, b.like_count DESC, b.id DESC
		LIMIT $2`

	var from sql.NullTime
	if !since.IsZero() {
		from = sql.NullTime{Time: since, Valid: true}
	}

	rows, err := m.db.QueryContext(ctx, query, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []PopularPost{}
	for rows.Next() {
		var p PopularPost
		if err := scanPopular(rows, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

type engagementTotals struct {
	posts       int
	views       int64
	likes       int64
	recentPosts int
}

func (m *AnalyticsModel) engagementTotals(ctx context.Context, userID int, since time.Time) (*engagementTotals, error) {
	query := `
		SELECT
			count(b.id),
			COALESCE(sum(b.views), 0)::bigint,
			COALESCE(sum(b.like_count), 0)::bigint,
			count(b.id) FILTER (WHERE b.created_at >= $2)
		FROM users u
		LEFT JOIN blogs b ON b.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`

	var t engagementTotals
	err := m.db.QueryRowContext(ctx, query, userID, since).Scan(&t.posts, &t.views, &t.likes, &t.recentPosts)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &t, nil
}

func (m *AnalyticsModel) mostViewedPost(ctx context.Context, userID int) (*PopularPost, error) {
	query := `
		SELECT ` + popularColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.views DESC, b.id DESC
		LIMIT 1`

	var p PopularPost
	err := scanPopular(m.db.QueryRowContext(ctx, query, userID), &p)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}

	return &p, nil
}

func (m *AnalyticsModel) categoryStats(ctx context.Context) ([]CategoryStats, error) {
	query := `
		SELECT category, count(*), COALESCE(sum(views), 0)::bigint, COALESCE(sum(like_count), 0)::bigint, COALESCE(avg(views), 0)::float8
		FROM blogs
		GROUP BY category
		ORDER BY count(*) DESC, category`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []CategoryStats{}
	for rows.Next() {
		var s CategoryStats
		if err := rows.Scan(&s.Category, &s.PostCount, &s.TotalViews, &s.TotalLikes, &s.AverageViews); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
