package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogverse/internal/analyticsservice"
	"github.com/sushihentaime/blogverse/internal/blogservice"
	"github.com/sushihentaime/blogverse/internal/commentservice"
	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/socialservice"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires every service against a fresh Postgres container. Published
// notifications go to a mock producer.
func newTestApplication(t *testing.T) (*application, *sql.DB, *common.MockMessageProducer) {
	db := common.TestDB("file://../../migrations", t)
	logger := newTestLogger()

	cfg, err := loadConfig("../../.test.env")
	require.NoError(t, err)

	tokens, err := userservice.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	require.NoError(t, err)

	mb := new(common.MockMessageProducer)
	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, common.BlogExchange).Return(nil)

	app := &application{
		config:           cfg,
		logger:           logger,
		userService:      userservice.NewUserService(db, mb, tokens, logger),
		blogService:      blogservice.NewBlogService(db),
		commentService:   commentservice.NewCommentService(db, mb, logger),
		socialService:    socialservice.NewSocialService(db, mb, logger),
		analyticsService: analyticsservice.NewAnalyticsService(db, common.NewMemoryCache(cfg.TTLDashboard, cfg.CacheCleanup), analyticsservice.DefaultTTLs, logger),
	}

	return app, db, mb
}

func readResponse(t *testing.T, res *http.Response) (int, envelope) {
	t.Helper()
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))

	return res.StatusCode, env
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

// decode re-encodes part of a response into dst.
func decode(t *testing.T, v any, dst any) {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

// signup creates an account through the API and returns its id and token.
func (ts *testServer) signup(t *testing.T, name, email string) (int, string) {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "pa55word-long",
	})
	require.Equal(t, http.StatusCreated, status, env)

	var out struct {
		User  userservice.User      `json:"user"`
		Token userservice.AuthToken `json:"token"`
	}
	decode(t, env, &out)

	return out.User.ID, out.Token.Token
}

// promote sets the role directly and returns a fresh admin token via login.
func (ts *testServer) promote(t *testing.T, db *sql.DB, id int, email string, role userservice.Role) string {
	t.Helper()

	_, err := db.Exec("UPDATE users SET role = $1 WHERE id = $2", role, id)
	require.NoError(t, err)

	status, env := ts.do(t, http.MethodPost, "/login", "", map[string]string{"email": email, "password": "pa55word-long"})
	require.Equal(t, http.StatusOK, status, env)

	var out struct {
		Token userservice.AuthToken `json:"token"`
	}
	decode(t, env, &out)

	return out.Token.Token
}
