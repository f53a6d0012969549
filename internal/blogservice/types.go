package blogservice

import (
	"database/sql"
	"time"
)

type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryProgramming   Category = "Programming"
	CategoryDesign        Category = "Design"
	CategoryBusiness      Category = "Business"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryTravel        Category = "Travel"
	CategoryFood          Category = "Food"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

var Categories = []Category{
	CategoryTechnology, CategoryProgramming, CategoryDesign, CategoryBusiness, CategoryLifestyle,
	CategoryTravel, CategoryFood, CategoryHealth, CategoryEducation, CategoryEntertainment, CategoryOther,
}

const (
	MaxTags      = 10
	MaxTagLength = 30
)

type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content      string    `json:"content"`
	Author       Author    `json:"author"`
	Tags         []string  `json:"tags"`
	Category     Category  `json:"category"`
	Likes        []int     `json:"likes"`
	LikeCount    int       `json:"likeCount"`
	Views        int64     `json:"views"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int       `json:"-"`
}

type CreateBlogRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category Category `json:"category"`
	UserID   int      `json:"-"`
}

type UpdateBlogRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     []string  `json:"tags"`
	Category *Category `json:"category"`
}

// Filter narrows a blog listing. Query matches title, content or a tag.
type Filter struct {
	Query    string
	Category Category
	Tag      string
	Limit    int
	Offset   int
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
}
