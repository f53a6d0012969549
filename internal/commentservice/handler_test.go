package commentservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

type fixture struct {
	s     *CommentService
	db    *sql.DB
	mb    *common.MockMessageProducer
	ann   *userservice.User
	bob   *userservice.User
	admin *userservice.User
	blog  int
}

func setupTestEnvironment(t *testing.T) *fixture {
	db := common.TestDB("file://../../migrations", t)

	mb := new(common.MockMessageProducer)
	mb.On("Publish", mock.Anything, mock.Anything, common.CommentCreatedKey, common.BlogExchange).Return(nil)

	ann := common.TestInsertUser(t, db, "Ann", "ann@x.com", "user")
	bob := common.TestInsertUser(t, db, "Bob", "bob@x.com", "user")
	admin := common.TestInsertUser(t, db, "Root", "root@x.com", "admin")

	return &fixture{
		s:     NewCommentService(db, mb, nil),
		db:    db,
		mb:    mb,
		ann:   &userservice.User{ID: ann, Role: userservice.RoleUser},
		bob:   &userservice.User{ID: bob, Role: userservice.RoleUser},
		admin: &userservice.User{ID: admin, Role: userservice.RoleAdmin},
		blog:  common.TestInsertBlog(t, db, ann, "Hello"),
	}
}

func commentCount(t *testing.T, db *sql.DB, blogID int) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow("SELECT comment_count FROM blogs WHERE id = $1", blogID).Scan(&n))
	return n
}

func TestAddComment(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	c, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "  Nice post  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Nice post", c.Text)
	assert.Equal(t, "Bob", c.Author.Name)
	assert.Nil(t, c.ParentID)
	assert.Equal(t, 1, commentCount(t, f.db, f.blog))

	reply, err := f.s.AddComment(ctx, f.blog, f.ann.ID, "Thanks", &c.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, c.ID, *reply.ParentID)
	assert.Equal(t, 2, commentCount(t, f.db, f.blog))

	// the blog author replying to their own blog is not notified
	f.mb.AssertNumberOfCalls(t, "Publish", 1)

	threads, err := f.s.ListThreaded(ctx, f.blog)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
}

func TestAddCommentErrors(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	other := common.TestInsertBlog(t, f.db, f.bob.ID, "Other")

	top, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "top", nil)
	require.NoError(t, err)

	reply, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "reply", &top.ID)
	require.NoError(t, err)

	missing := 999999

	tests := []struct {
		name     string
		blogID   int
		text     string
		parentID *int
		expected error
	}{
		{"empty text", f.blog, "   ", nil, common.ValidationError{}},
		{"missing blog", missing, "hi", nil, common.ErrRecordNotFound},
		{"parent on another blog", other, "hi", &top.ID, common.ValidationError{}},
		{"reply to a reply", f.blog, "hi", &reply.ID, common.ValidationError{}},
		{"missing parent", f.blog, "hi", &missing, common.ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.s.AddComment(ctx, tt.blogID, f.bob.ID, tt.text, tt.parentID)
			require.Error(t, err)
			assert.IsType(t, tt.expected, err)
		})
	}

	assert.Equal(t, 2, commentCount(t, f.db, f.blog))
	assert.Equal(t, 0, commentCount(t, f.db, other))
}

func TestCommentCountTracksAddsAndDeletes(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	var ids []int
	for i := 0; i < 5; i++ {
		c, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "comment", nil)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	for _, id := range ids[:2] {
		removal, err := f.s.RemoveComment(ctx, id, f.bob)
		require.NoError(t, err)
		assert.Equal(t, RemovalDeleted, removal)
	}

	assert.Equal(t, 3, commentCount(t, f.db, f.blog))

	reply, err := f.s.AddComment(ctx, f.blog, f.ann.ID, "reply", &ids[2])
	require.NoError(t, err)
	assert.Equal(t, 4, commentCount(t, f.db, f.blog))

	_, err = f.s.RemoveComment(ctx, ids[2], f.bob)
	require.NoError(t, err)
	assert.Equal(t, 6-3, commentCount(t, f.db, f.blog))

	// the reply belongs to Ann and outlives its parent as a top-level comment
	threads, err := f.s.ListThreaded(ctx, f.blog)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, reply.ID, threads[0].ID)
	assert.Nil(t, threads[0].ParentID)
	assert.Empty(t, threads[0].Replies)
}

func TestRemoveComment(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	c, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "rude", nil)
	require.NoError(t, err)

	_, err = f.s.RemoveComment(ctx, c.ID, f.ann)
	assert.ErrorIs(t, err, common.ErrForbidden)

	removal, err := f.s.RemoveComment(ctx, c.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, RemovalHidden, removal)
	assert.Equal(t, 1, commentCount(t, f.db, f.blog))

	threads, err := f.s.ListThreaded(ctx, f.blog)
	require.NoError(t, err)
	assert.Empty(t, threads)

	err = f.s.RestoreComment(ctx, c.ID, f.ann)
	assert.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, f.s.RestoreComment(ctx, c.ID, f.admin))

	threads, err = f.s.ListThreaded(ctx, f.blog)
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	_, err = f.s.RemoveComment(ctx, 999999, f.admin)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestEditComment(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	c, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "first draft", nil)
	require.NoError(t, err)

	_, err = f.s.EditComment(ctx, c.ID, f.ann.ID, "hijacked")
	assert.ErrorIs(t, err, common.ErrForbidden)

	threads, err := f.s.ListThreaded(ctx, f.blog)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "first draft", threads[0].Text)

	edited, err := f.s.EditComment(ctx, c.ID, f.bob.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Text)
	assert.True(t, edited.UpdatedAt.After(c.UpdatedAt))

	_, err = f.s.EditComment(ctx, c.ID, f.bob.ID, "")
	assert.IsType(t, common.ValidationError{}, err)
}

func TestListThreadedMissingBlog(t *testing.T) {
	f := setupTestEnvironment(t)

	_, err := f.s.ListThreaded(context.Background(), 999999)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestRecountComments(t *testing.T) {
	f := setupTestEnvironment(t)
	ctx := context.Background()

	_, err := f.s.AddComment(ctx, f.blog, f.bob.ID, "one", nil)
	require.NoError(t, err)

	_, err = f.db.Exec("UPDATE blogs SET comment_count = 7 WHERE id = $1", f.blog)
	require.NoError(t, err)

	n, err := f.s.RecountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, commentCount(t, f.db, f.blog))

	n, err = f.s.RecountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
