package blogservice

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newBlogModel(db)}
}

// CreateBlog creates a new blog post owned by req.UserID.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Tags = normalizeTags(req.Tags)
	if req.Category == "" {
		req.Category = CategoryOther
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateTags(v, req.Tags)
	validateCategory(v, req.Category)
	common.ValidateID(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	req.Content = sanitizeMarkdown(req.Content)

	id, err := s.m.insert(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.m.getBlogById(ctx, id)
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getBlogById(ctx, id)
}

// ViewBlog records a view and returns the blog with the new count.
func (s *BlogService) ViewBlog(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.incrementViews(ctx, id); err != nil {
		return nil, err
	}

	return s.m.getBlogById(ctx, id)
}

// UpdateBlog applies the non-nil fields of req. The author, editors and admins may update.
func (s *BlogService) UpdateBlog(ctx context.Context, id int, actor *userservice.User, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if req.Title != nil {
		*req.Title = strings.TrimSpace(*req.Title)
		validateTitle(v, *req.Title)
	}
	if req.Content != nil {
		validateContent(v, *req.Content)
	}
	if req.Tags != nil {
		req.Tags = normalizeTags(req.Tags)
		validateTags(v, req.Tags)
	}
	if req.Category != nil {
		validateCategory(v, *req.Category)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.Author.ID != actor.ID && !actor.HasRole(userservice.RoleEditor) {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Content != nil {
		blog.Content = sanitizeMarkdown(*req.Content)
	}
	if req.Tags != nil {
		blog.Tags = req.Tags
	}
	if req.Category != nil {
		blog.Category = *req.Category
	}

	if err := s.m.updateBlog(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

// DeleteBlog deletes a blog post. Only its author or an admin can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id int, actor *userservice.User) error {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return err
	}

	if blog.Author.ID != actor.ID && !actor.IsAdmin() {
		return common.ErrForbidden
	}

	return s.m.deleteBlog(ctx, id)
}

// GetBlogsByUserId returns all blog posts by a user, newest first.
func (s *BlogService) GetBlogsByUserId(ctx context.Context, userID int) ([]Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getBlogsByUserId(ctx, userID)
}

// GetBlogsByIDs returns the blogs in the given order.
func (s *BlogService) GetBlogsByIDs(ctx context.Context, ids []int) ([]Blog, error) {
	if len(ids) == 0 {
		return []Blog{}, nil
	}

	return s.m.getBlogsByIds(ctx, ids)
}

// GetBlogs returns one page of blogs and the total match count. Default limit is 10 and the
// maximum is 100.
func (s *BlogService) GetBlogs(ctx context.Context, f Filter) ([]Blog, int, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))

	v := common.NewValidator()
	v.Check(v.CheckStringLength(f.Query, 0, 100), "q", "must not be more than 100 characters long")
	if f.Category != "" {
		validateCategory(v, f.Category)
	}
	if !v.Valid() {
		return nil, 0, v.ValidationError()
	}

	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	return s.m.getBlogs(ctx, f)
}
