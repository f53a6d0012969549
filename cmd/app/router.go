package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/blogverse/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthCheckHandler)

	// account
	router.HandlerFunc(http.MethodPost, "/signup", app.signupHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.loginHandler)
	router.HandlerFunc(http.MethodPost, "/password/forgot", app.forgotPasswordHandler)
	router.HandlerFunc(http.MethodPut, "/password/reset", app.resetPasswordHandler)
	router.HandlerFunc(http.MethodGet, "/me", app.requireAuthUser(app.getMeHandler))
	router.HandlerFunc(http.MethodPut, "/me", app.requireAuthUser(app.updateMeHandler))
	router.HandlerFunc(http.MethodGet, "/me/bookmarks", app.requireAuthUser(app.getMyBookmarksHandler))

	// users
	router.HandlerFunc(http.MethodGet, "/users/:id", app.getUserHandler)
	router.HandlerFunc(http.MethodGet, "/users/:id/followers", app.getFollowersHandler)
	router.HandlerFunc(http.MethodGet, "/users/:id/following", app.getFollowingHandler)
	router.HandlerFunc(http.MethodGet, "/users/:id/blogs", app.getUserBlogsHandler)

	// blogs
	router.HandlerFunc(http.MethodGet, "/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	// comments, keyed by blog id for listing and adding and by comment id otherwise
	router.HandlerFunc(http.MethodGet, "/comments/:id", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/comments/:id", app.requireAuthUser(app.addCommentHandler))
	router.HandlerFunc(http.MethodPut, "/comments/:id", app.requireAuthUser(app.editCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/comments/:id", app.requireAuthUser(app.removeCommentHandler))

	// relations
	router.HandlerFunc(http.MethodPut, "/likes/:id", app.requireAuthUser(app.likeBlogHandler()))
	router.HandlerFunc(http.MethodPost, "/follow/:id", app.requireAuthUser(app.followUserHandler()))
	router.HandlerFunc(http.MethodPost, "/bookmark/:id", app.requireAuthUser(app.bookmarkBlogHandler()))

	// analytics
	router.HandlerFunc(http.MethodGet, "/analytics/dashboard", app.requireAuthUser(app.userDashboardHandler))
	router.HandlerFunc(http.MethodGet, "/analytics/engagement", app.requireAuthUser(app.userEngagementHandler))
	router.HandlerFunc(http.MethodGet, "/analytics/popular", app.popularPostsHandler)

	// admin
	router.HandlerFunc(http.MethodGet, "/admin/analytics", app.requireRole(userservice.RoleAdmin, app.globalDashboardHandler))
	router.HandlerFunc(http.MethodGet, "/admin/analytics/categories", app.requireRole(userservice.RoleAdmin, app.categoryAnalyticsHandler))
	router.HandlerFunc(http.MethodGet, "/admin/users", app.requireRole(userservice.RoleAdmin, app.listUsersHandler))
	router.HandlerFunc(http.MethodPut, "/admin/users/:id/role", app.requireRole(userservice.RoleAdmin, app.changeRoleHandler))
	router.HandlerFunc(http.MethodDelete, "/admin/users/:id", app.requireRole(userservice.RoleAdmin, app.deleteUserHandler))
	router.HandlerFunc(http.MethodPut, "/admin/comments/:id/restore", app.requireRole(userservice.RoleAdmin, app.restoreCommentHandler))
	router.HandlerFunc(http.MethodPost, "/admin/reconcile", app.requireRole(userservice.RoleAdmin, app.reconcileHandler))

	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(router)))))
}
