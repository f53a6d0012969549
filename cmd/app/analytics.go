package main

import (
	"net/http"

	"github.com/sushihentaime/blogverse/internal/analyticsservice"
)

func (app *application) userDashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.analyticsService.UserDashboard(r.Context(), app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "dashboard", "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) userEngagementHandler(w http.ResponseWriter, r *http.Request) {
	engagement, err := app.analyticsService.UserEngagement(r.Context(), app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "engagement", "engagement": engagement}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) popularPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := app.readIntQuery(r, "limit")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	timeframe := analyticsservice.Timeframe(r.URL.Query().Get("timeframe"))

	posts, err := app.analyticsService.PopularPosts(r.Context(), limit, timeframe)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "popular posts", "posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) globalDashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.analyticsService.GlobalDashboard(r.Context())
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "analytics", "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) categoryAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.analyticsService.CategoryAnalytics(r.Context())
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "category analytics", "categories": categories}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
