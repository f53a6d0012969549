package analyticsservice

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"time"

	"github.com/sushihentaime/blogverse/internal/common"
)

func NewAnalyticsService(db *sql.DB, cache common.Cache, ttl TTLs, logger *slog.Logger) *AnalyticsService {
	if cache == nil {
		cache = common.NoopCache{}
	}

	return &AnalyticsService{
		m:      newAnalyticsModel(db),
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GlobalDashboard returns site-wide totals.
func (s *AnalyticsService) GlobalDashboard(ctx context.Context) (*GlobalStats, error) {
	return common.GetOrCompute(ctx, s.cache, common.CacheKeyGlobalDashboard(), s.ttl.Dashboard, s.m.globalStats)
}

// UserDashboard returns the totals for the blogs and followers of userID.
func (s *AnalyticsService) UserDashboard(ctx context.Context, userID int) (*UserStats, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return common.GetOrCompute(ctx, s.cache, common.CacheKeyDashboard(userID), s.ttl.Dashboard, func(ctx context.Context) (*UserStats, error) {
		return s.m.userStats(ctx, userID)
	})
}

// PopularPosts ranks blogs by views then likes. A nil limit means the default and an empty
// timeframe means all time.
func (s *AnalyticsService) PopularPosts(ctx context.Context, limit *int, timeframe Timeframe) ([]PopularPost, error) {
	n := DefaultPopularLimit
	if limit != nil {
		n = *limit
	}

	if timeframe == "" {
		timeframe = TimeframeAll
	}

	v := common.NewValidator()
	v.Check(n >= 1 && n <= MaxPopularLimit, "limit", "must be between 1 and 50")
	v.Check(common.PermittedValue(timeframe, TimeframeAll, TimeframeWeek, TimeframeMonth, TimeframeYear), "timeframe", "must be one of all, week, month or year")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := common.CacheKeyPopularPosts(n, string(timeframe))
	return common.GetOrCompute(ctx, s.cache, key, s.ttl.Popular, func(ctx context.Context) ([]PopularPost, error) {
		return s.m.popularPosts(ctx, n, since(time.Now(), timeframe))
	})
}

// since returns the start of the window for a timeframe, zero for all time.
func since(now time.Time, tf Timeframe) time.Time {
	switch tf {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// UserEngagement returns per-post averages and posting frequency for userID.
func (s *AnalyticsService) UserEngagement(ctx context.Context, userID int) (*Engagement, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return common.GetOrCompute(ctx, s.cache, common.CacheKeyEngagement(userID), s.ttl.Engagement, func(ctx context.Context) (*Engagement, error) {
		return s.engagement(ctx, userID)
	})
}

func (s *AnalyticsService) engagement(ctx context.Context, userID int) (*Engagement, error) {
	t, err := s.m.engagementTotals(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	e := &Engagement{
		PostsLast30Days: t.recentPosts,
		AveragePerWeek:  round2(float64(t.recentPosts) / 30 * 7),
	}

	if t.posts > 0 {
		posts := float64(t.posts)
		e.AverageViews = round2(float64(t.views) / posts)
		e.AverageLikes = round2(float64(t.likes) / posts)
		e.EngagementRate = round2(float64(t.views+t.likes) / posts)

		e.MostPopularPost, err = s.m.mostViewedPost(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return e, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// CategoryAnalytics returns per-category aggregates, largest category first.
func (s *AnalyticsService) CategoryAnalytics(ctx context.Context) ([]CategoryStats, error) {
	return common.GetOrCompute(ctx, s.cache, common.CacheKeyCategories(), s.ttl.Category, s.m.categoryStats)
}
