package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/blogverse/internal/socialservice"
)

type toggleFunc func(ctx context.Context, actorID, targetID int) (*socialservice.ToggleResult, error)

// toggleHandler serves the like, follow and bookmark toggles. The messages are the response
// for an added and a removed edge, and key names the returned relation set.
func (app *application) toggleHandler(toggle toggleFunc, key, added, removed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := app.readIDParam(r, "id")
		if err != nil {
			app.badRequestErrorResponse(w, r, err)
			return
		}

		result, err := toggle(r.Context(), app.getUserContext(r).ID, id)
		if err != nil {
			app.serviceErrorResponse(w, r, err)
			return
		}

		message := removed
		if result.Active {
			message = added
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"message": message, "active": result.Active, key: result.Members}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}
}

func (app *application) likeBlogHandler() http.HandlerFunc {
	like := func(ctx context.Context, userID, blogID int) (*socialservice.ToggleResult, error) {
		return app.socialService.ToggleLike(ctx, blogID, userID)
	}

	return app.toggleHandler(like, "likes", "blog liked", "blog unliked")
}

func (app *application) followUserHandler() http.HandlerFunc {
	return app.toggleHandler(app.socialService.ToggleFollow, "following", "user followed", "user unfollowed")
}

func (app *application) bookmarkBlogHandler() http.HandlerFunc {
	return app.toggleHandler(app.socialService.ToggleBookmark, "bookmarks", "blog bookmarked", "bookmark removed")
}
