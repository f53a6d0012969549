package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogverse/internal/blogservice"
	"github.com/sushihentaime/blogverse/internal/commentservice"
	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

func TestHealthCheck(t *testing.T) {
	app := &application{config: &Config{Environment: "test", Version: "1.2.3"}, logger: newTestLogger()}
	ts := newTestServer(t, app.routes())

	status, env := ts.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", env["status"])
	assert.Equal(t, map[string]any{"environment": "test", "version": "1.2.3"}, env["system_info"])
}

func TestSignupHandler(t *testing.T) {
	app, _, mb := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantErrors map[string]any
	}{
		{
			name:       "Valid Request",
			payload:    map[string]any{"name": "Ann", "email": "ann@x.com", "password": "pa55word-long"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Duplicate Email",
			payload:    map[string]any{"name": "Ann", "email": "ANN@x.com", "password": "pa55word-long"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Invalid Email",
			payload:    map[string]any{"name": "Ann", "email": "ann", "password": "pa55word-long"},
			wantStatus: http.StatusBadRequest,
			wantErrors: map[string]any{"email": "must be a valid email address"},
		},
		{
			name:       "Short Password",
			payload:    map[string]any{"name": "Ann", "email": "ann2@x.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantErrors: map[string]any{"password": "must be between 8 and 72 bytes long"},
		},
		{
			name:       "Role Without Admin",
			payload:    map[string]any{"name": "Eve", "email": "eve@x.com", "password": "pa55word-long", "role": "admin"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Unknown Field",
			payload:    map[string]any{"name": "Eve", "email": "eve@x.com", "password": "pa55word-long", "admin": true},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := ts.do(t, http.MethodPost, "/signup", "", tc.payload)
			assert.Equal(t, tc.wantStatus, status, env)
			assert.NotEmpty(t, env["message"])

			if tc.wantErrors != nil {
				assert.Equal(t, tc.wantErrors, env["errors"])
			}
		})
	}

	mb.AssertCalled(t, "Publish", mock.Anything, mock.Anything, common.UserCreatedKey, common.BlogExchange)
}

func TestAdminSignupWithRole(t *testing.T) {
	app, db, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	rootID, _ := ts.signup(t, "Root", "root@x.com")
	admin := ts.promote(t, db, rootID, "root@x.com", userservice.RoleAdmin)

	status, env := ts.do(t, http.MethodPost, "/signup", admin, map[string]any{
		"name": "Ed", "email": "ed@x.com", "password": "pa55word-long", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, status, env)

	var out struct {
		User userservice.User `json:"user"`
	}
	decode(t, env, &out)
	assert.Equal(t, userservice.RoleEditor, out.User.Role)
}

func TestLoginHandler(t *testing.T) {
	app, _, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ts.signup(t, "Ann", "ann@x.com")

	testCases := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"Valid Credentials", "ann@x.com", "pa55word-long", http.StatusOK},
		{"Wrong Password", "ann@x.com", "not-the-password", http.StatusUnauthorized},
		{"Unknown Email", "nobody@x.com", "pa55word-long", http.StatusUnauthorized},
		{"Missing Password", "ann@x.com", "", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := ts.do(t, http.MethodPost, "/login", "", map[string]string{"email": tc.email, "password": tc.password})
			assert.Equal(t, tc.wantStatus, status, env)

			if status == http.StatusOK {
				assert.NotNil(t, env["token"])
			}
		})
	}
}

// TestBlogScenario walks through signup, blog creation, likes, comments and the threaded
// listing the way a client would.
func TestBlogScenario(t *testing.T) {
	app, db, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	annID, ann := ts.signup(t, "Ann", "ann@x.com")
	_, bob := ts.signup(t, "Bob", "bob@x.com")

	status, env := ts.do(t, http.MethodPost, "/blogs", "", map[string]any{"title": "Hello", "content": "World"})
	require.Equal(t, http.StatusUnauthorized, status, env)

	status, env = ts.do(t, http.MethodPost, "/blogs", ann, map[string]any{
		"title": "Hello", "content": "World<script>alert(1)</script>", "tags": []string{"Go", "go"}, "category": "Technology",
	})
	require.Equal(t, http.StatusCreated, status, env)

	var created struct {
		Blog blogservice.Blog `json:"blog"`
	}
	decode(t, env, &created)
	blogID := created.Blog.ID
	assert.Equal(t, annID, created.Blog.Author.ID)
	assert.Equal(t, []string{"go"}, created.Blog.Tags)
	assert.NotContains(t, created.Blog.Content, "<script>")
	assert.Empty(t, created.Blog.Likes)

	// listing does not count as a view
	listed := func() blogservice.Blog {
		t.Helper()

		status, env := ts.do(t, http.MethodGet, "/blogs", "", nil)
		require.Equal(t, http.StatusOK, status, env)

		var list struct {
			Blogs []blogservice.Blog `json:"blogs"`
		}
		decode(t, env, &list)
		require.Len(t, list.Blogs, 1)
		return list.Blogs[0]
	}

	first := listed()
	assert.Equal(t, blogID, first.ID)
	assert.Equal(t, "Hello", first.Title)
	assert.Equal(t, int64(0), first.Views)
	assert.NotNil(t, first.Likes)
	assert.Empty(t, first.Likes)
	assert.Zero(t, first.CommentCount)

	// a like toggles on and then off
	likePath := fmt.Sprintf("/likes/%d", blogID)
	status, env = ts.do(t, http.MethodPut, likePath, bob, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, true, env["active"])
	assert.Len(t, env["likes"], 1)

	status, env = ts.do(t, http.MethodPut, likePath, bob, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, false, env["active"])
	assert.Empty(t, env["likes"])

	// comment and reply
	commentsPath := fmt.Sprintf("/comments/%d", blogID)
	status, env = ts.do(t, http.MethodPost, commentsPath, bob, map[string]any{"comment": "Nice post"})
	require.Equal(t, http.StatusCreated, status, env)

	var top struct {
		Comment commentservice.Comment `json:"comment"`
	}
	decode(t, env, &top)
	assert.Equal(t, 1, listed().CommentCount)

	status, env = ts.do(t, http.MethodPost, commentsPath, ann, map[string]any{"comment": "Thanks", "parentComment": top.Comment.ID})
	require.Equal(t, http.StatusCreated, status, env)

	var reply struct {
		Comment commentservice.Comment `json:"comment"`
	}
	decode(t, env, &reply)

	// replies to replies are rejected
	status, env = ts.do(t, http.MethodPost, commentsPath, bob, map[string]any{"comment": "deeper", "parentComment": reply.Comment.ID})
	assert.Equal(t, http.StatusBadRequest, status, env)

	status, env = ts.do(t, http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, status, env)

	var threads struct {
		Comments []commentservice.Thread `json:"comments"`
	}
	decode(t, env, &threads)
	require.Len(t, threads.Comments, 1)
	assert.Equal(t, "Nice post", threads.Comments[0].Text)
	require.Len(t, threads.Comments[0].Replies, 1)
	assert.Equal(t, "Thanks", threads.Comments[0].Replies[0].Text)

	// the detail view counts views and reports the counters
	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/blogs/%d", blogID), "", nil)
	require.Equal(t, http.StatusOK, status, env)

	var detail struct {
		Blog blogservice.Blog `json:"blog"`
	}
	decode(t, env, &detail)
	assert.Equal(t, int64(1), detail.Blog.Views)
	assert.Equal(t, 2, detail.Blog.CommentCount)
	assert.Equal(t, 0, detail.Blog.LikeCount)

	// only the author deletes
	status, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/blogs/%d", blogID), bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/blogs/%d", blogID), ann, nil)
	assert.Equal(t, http.StatusOK, status)

	var remaining int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM comments").Scan(&remaining))
	assert.Zero(t, remaining)
}

func TestModeration(t *testing.T) {
	app, db, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, ann := ts.signup(t, "Ann", "ann@x.com")
	_, bob := ts.signup(t, "Bob", "bob@x.com")
	rootID, _ := ts.signup(t, "Root", "root@x.com")
	admin := ts.promote(t, db, rootID, "root@x.com", userservice.RoleAdmin)

	blogID := common.TestInsertBlog(t, db, rootID, "Hello")
	commentsPath := fmt.Sprintf("/comments/%d", blogID)

	status, env := ts.do(t, http.MethodPost, commentsPath, bob, map[string]any{"comment": "rude"})
	require.Equal(t, http.StatusCreated, status, env)

	var c struct {
		Comment commentservice.Comment `json:"comment"`
	}
	decode(t, env, &c)
	commentPath := fmt.Sprintf("/comments/%d", c.Comment.ID)

	status, _ = ts.do(t, http.MethodPut, commentPath, ann, map[string]any{"comment": "hijacked"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodDelete, commentPath, ann, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ts.do(t, http.MethodDelete, commentPath, admin, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, string(commentservice.RemovalHidden), env["removal"])

	status, env = ts.do(t, http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, env["comments"])

	status, _ = ts.do(t, http.MethodPut, fmt.Sprintf("/admin/comments/%d/restore", c.Comment.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodPut, fmt.Sprintf("/admin/comments/%d/restore", c.Comment.ID), admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env["comments"], 1)

	status, env = ts.do(t, http.MethodPost, "/admin/reconcile", admin, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, float64(0), env["repaired"])

	status, env = ts.do(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/role", rootID), admin, map[string]any{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"role": "invalid role"}, env["errors"])
}

func TestFollowAndProfile(t *testing.T) {
	app, _, mb := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	annID, ann := ts.signup(t, "Ann", "ann@x.com")
	bobID, _ := ts.signup(t, "Bob", "bob@x.com")

	status, env := ts.do(t, http.MethodPost, fmt.Sprintf("/follow/%d", annID), ann, nil)
	assert.Equal(t, http.StatusBadRequest, status, env)

	status, env = ts.do(t, http.MethodPost, fmt.Sprintf("/follow/%d", bobID), ann, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, true, env["active"])

	mb.AssertCalled(t, "Publish", mock.Anything, mock.Anything, common.UserFollowedKey, common.BlogExchange)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/users/%d", bobID), "", nil)
	require.Equal(t, http.StatusOK, status, env)

	var profile struct {
		User userservice.Profile `json:"user"`
	}
	decode(t, env, &profile)
	assert.Equal(t, []int{annID}, profile.User.Followers)
	assert.Empty(t, profile.User.Following)
	assert.Equal(t, 1, profile.User.Stats.FollowerCount)

	status, env = ts.do(t, http.MethodGet, fmt.Sprintf("/users/%d/followers", bobID), "", nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Len(t, env["followers"], 1)

	status, _ = ts.do(t, http.MethodGet, "/users/999999/followers", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = ts.do(t, http.MethodPut, "/me", ann, map[string]any{"bio": "Writes about Go", "website": "https://ann.dev"})
	require.Equal(t, http.StatusOK, status, env)

	status, env = ts.do(t, http.MethodGet, "/me", ann, nil)
	require.Equal(t, http.StatusOK, status, env)
	decode(t, env, &profile)
	assert.Equal(t, "Writes about Go", profile.User.Bio)
	assert.Equal(t, []int{bobID}, profile.User.Following)
}

func TestAnalyticsHandlers(t *testing.T) {
	app, db, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	annID, ann := ts.signup(t, "Ann", "ann@x.com")
	common.TestInsertBlog(t, db, annID, "Hello")

	status, env := ts.do(t, http.MethodGet, "/analytics/dashboard", ann, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, float64(1), env["stats"].(map[string]any)["totalPosts"])

	status, env = ts.do(t, http.MethodGet, "/analytics/popular?limit=5&timeframe=week", "", nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Len(t, env["posts"], 1)

	status, _ = ts.do(t, http.MethodGet, "/analytics/popular?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/analytics/popular?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/admin/analytics", ann, nil)
	assert.Equal(t, http.StatusForbidden, status)

	admin := ts.promote(t, db, annID, "ann@x.com", userservice.RoleAdmin)

	status, env = ts.do(t, http.MethodGet, "/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, float64(1), env["stats"].(map[string]any)["totalBlogs"])

	status, env = ts.do(t, http.MethodGet, "/admin/analytics/categories", admin, nil)
	require.Equal(t, http.StatusOK, status, env)
	assert.Len(t, env["categories"], 1)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	app := &application{config: &Config{}, logger: newTestLogger()}
	ts := newTestServer(t, app.routes())

	status, env := ts.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "resource not found", env["message"])

	status, _ = ts.do(t, http.MethodPatch, "/signup", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}
