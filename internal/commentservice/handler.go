package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

func NewCommentService(db *sql.DB, mb common.MessageProducer, logger *slog.Logger) *CommentService {
	return &CommentService{
		m:      newCommentModel(db),
		mb:     mb,
		logger: logger,
	}
}

// AddComment stores a comment on blogID, optionally as a reply to parentID. A reply must
// target a visible top-level comment of the same blog. The insert and the blog's comment
// counter move together.
func (s *CommentService) AddComment(ctx context.Context, blogID, authorID int, text string, parentID *int) (*Comment, error) {
	text = strings.TrimSpace(text)

	v := common.NewValidator()
	common.ValidateID(v, blogID, "blog")
	common.ValidateID(v, authorID, "user")
	validateText(v, text)
	if parentID != nil {
		common.ValidateID(v, *parentID, "parentComment")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	c, blog, err := s.addComment(tx, ctx, blogID, authorID, text, parentID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if blog.authorID != authorID {
		s.notifyComment(ctx, blog, authorID)
	}

	return c, nil
}

func (s *CommentService) addComment(tx *sql.Tx, ctx context.Context, blogID, authorID int, text string, parentID *int) (*Comment, *blogInfo, error) {
	blog, err := s.m.lockBlog(tx, ctx, blogID)
	if err != nil {
		return nil, nil, err
	}

	if parentID != nil {
		if err := s.checkParent(tx, ctx, blogID, *parentID); err != nil {
			return nil, nil, err
		}
	}

	c := &Comment{
		BlogID:   blogID,
		Author:   Author{ID: authorID},
		Text:     text,
		ParentID: parentID,
	}

	if err := s.m.insert(tx, ctx, c); err != nil {
		return nil, nil, err
	}

	if err := s.m.adjustCommentCount(tx, ctx, blogID, 1); err != nil {
		return nil, nil, err
	}

	stored, err := s.m.getComment(tx, ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}

	return stored, blog, nil
}

func (s *CommentService) checkParent(tx *sql.Tx, ctx context.Context, blogID, parentID int) error {
	v := common.NewValidator()

	parent, err := s.m.getComment(tx, ctx, parentID)
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		v.AddError("parentComment", "does not exist")
	case err != nil:
		return err
	case parent.BlogID != blogID:
		v.AddError("parentComment", "must belong to the same blog")
	case parent.ParentID != nil:
		v.AddError("parentComment", "must be a top-level comment")
	case parent.IsHidden:
		v.AddError("parentComment", "does not exist")
	}

	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

// EditComment replaces the text of a comment. Only its author may edit it.
func (s *CommentService) EditComment(ctx context.Context, id, actorID int, text string) (*Comment, error) {
	text = strings.TrimSpace(text)

	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	validateText(v, text)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c, err := s.m.getComment(s.m.db, ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Author.ID != actorID {
		return nil, common.ErrForbidden
	}

	c.Text = text
	if err := s.m.updateText(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// RemoveComment deletes the comment when the actor wrote it, and hides it when the actor is
// an admin. Replies to a deleted comment are kept as top-level comments. Anyone else is refused. Hiding leaves the blog's counter alone.
func (s *CommentService) RemoveComment(ctx context.Context, id int, actor *userservice.User) (Removal, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return "", v.ValidationError()
	}

	c, err := s.m.getComment(s.m.db, ctx, id)
	if err != nil {
		return "", err
	}

	switch {
	case c.Author.ID == actor.ID:
		return RemovalDeleted, s.deleteComment(ctx, c)
	case actor.IsAdmin():
		return RemovalHidden, s.m.setHidden(ctx, id, true)
	default:
		return "", common.ErrForbidden
	}
}

func (s *CommentService) deleteComment(ctx context.Context, c *Comment) error {
	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.m.lockBlog(tx, ctx, c.BlogID); err != nil {
		return err
	}

	if err := s.m.delete(tx, ctx, c.ID); err != nil {
		return err
	}

	if err := s.m.adjustCommentCount(tx, ctx, c.BlogID, -1); err != nil {
		return err
	}

	return tx.Commit()
}

// RestoreComment makes a hidden comment visible again.
func (s *CommentService) RestoreComment(ctx context.Context, id int, actor *userservice.User) error {
	v := common.NewValidator()
	common.ValidateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if !actor.IsAdmin() {
		return common.ErrForbidden
	}

	return s.m.setHidden(ctx, id, false)
}

// ListThreaded returns the visible comments of a blog grouped into threads.
func (s *CommentService) ListThreaded(ctx context.Context, blogID int) ([]Thread, error) {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blog")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.blogExists(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, common.ErrRecordNotFound
	}

	comments, err := s.m.listVisible(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return buildThreads(comments), nil
}

// RecountComments rewrites every blog's comment counter from the stored comments and returns
// how many blogs were corrected.
func (s *CommentService) RecountComments(ctx context.Context) (int, error) {
	n, err := s.m.recountAll(ctx)
	if err != nil {
		return 0, err
	}

	if s.logger != nil && n > 0 {
		s.logger.Info("comment counters repaired", slog.Int("blogs", n))
	}

	return n, nil
}

func (s *CommentService) notifyComment(ctx context.Context, blog *blogInfo, commenterID int) {
	c, err := s.m.getCommentContact(ctx, blog.authorID, commenterID)
	if err == nil {
		err = common.PublishNotification(ctx, s.mb, common.CommentCreatedKey, common.Notification{
			Email: c.email,
			Data:  map[string]string{"Name": c.name, "CommenterName": c.commenterName, "BlogTitle": blog.title},
		})
	}

	if err != nil && s.logger != nil {
		s.logger.Error("could not publish comment notification", slog.Int("commenter_id", commenterID), slog.String("error", err.Error()))
	}
}
