package analyticsservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogverse/internal/common"
)

const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

type Timeframe string

const (
	TimeframeAll   Timeframe = "all"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// TTLs holds the expiry for each cached analytics family.
type TTLs struct {
	Dashboard  time.Duration
	Popular    time.Duration
	Engagement time.Duration
	Category   time.Duration
}

var DefaultTTLs = TTLs{
	Dashboard:  30 * time.Minute,
	Popular:    time.Hour,
	Engagement: time.Hour,
	Category:   2 * time.Hour,
}

type GlobalStats struct {
	TotalUsers    int   `json:"totalUsers"`
	TotalBlogs    int   `json:"totalBlogs"`
	TotalComments int   `json:"totalComments"`
	TotalViews    int64 `json:"totalViews"`
	TotalLikes    int64 `json:"totalLikes"`
}

type UserStats struct {
	TotalPosts     int   `json:"totalPosts"`
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int64 `json:"totalLikes"`
	TotalFollowers int   `json:"totalFollowers"`
	TotalComments  int   `json:"totalComments"`
}

type PostAuthor struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type PopularPost struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Views     int64      `json:"views"`
	LikeCount int        `json:"likeCount"`
	Author    PostAuthor `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Engagement struct {
	AverageViews    float64      `json:"averageViews"`
	AverageLikes    float64      `json:"averageLikes"`
	EngagementRate  float64      `json:"engagementRate"`
	MostPopularPost *PopularPost `json:"mostPopularPost"`
	PostsLast30Days int          `json:"postsLast30Days"`
	AveragePerWeek  float64      `json:"averagePerWeek"`
}

type CategoryStats struct {
	Category     string  `json:"category"`
	PostCount    int     `json:"postCount"`
	TotalViews   int64   `json:"totalViews"`
	TotalLikes   int64   `json:"totalLikes"`
	AverageViews float64 `json:"averageViews"`
}

type AnalyticsModel struct {
	db *sql.DB
}

type AnalyticsService struct {
	m      *AnalyticsModel
	cache  common.Cache
	ttl    TTLs
	logger *slog.Logger
}
