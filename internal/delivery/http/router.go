package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventshare/internal/delivery/http/middleware"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	Auth  *AuthController
	User  *UserController
	Event *EventController
	Photo *PhotoController
}

// NewRouter wires all routes on a ServeMux. Everything except signup, signin,
// refresh, health, and the swagger UI sits behind bearer auth.
func NewRouter(c Controllers, verifier middleware.AccessVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/signin", c.Auth.SignIn)
	mux.HandleFunc("POST /auth/refresh", c.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", auth(c.Auth.Logout))

	// current user
	mux.HandleFunc("GET /me", auth(c.User.Me))
	mux.HandleFunc("PATCH /me", auth(c.User.UpdateProfile))
	mux.HandleFunc("PUT /me/password", auth(c.User.ChangePassword))
	mux.HandleFunc("DELETE /me", auth(c.User.DeleteAccount))

	// events
	mux.HandleFunc("POST /events", auth(c.Event.Create))
	mux.HandleFunc("GET /events", auth(c.Event.List))
	mux.HandleFunc("POST /events/join", auth(c.Event.Join))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.Get))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.Update))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.Delete))
	mux.HandleFunc("POST /events/{eventID}/leave", auth(c.Event.Leave))
	mux.HandleFunc("POST /events/{eventID}/invitation", auth(c.Event.RegenerateInvitation))
	mux.HandleFunc("GET /events/{eventID}/participants", auth(c.Event.Participants))
	mux.HandleFunc("PATCH /events/{eventID}/participants/{userID}", auth(c.Event.UpdateParticipant))
	mux.HandleFunc("DELETE /events/{eventID}/participants/{userID}", auth(c.Event.RemoveParticipant))

	// photos
	mux.HandleFunc("POST /events/{eventID}/photos", auth(c.Photo.Upload))
	mux.HandleFunc("GET /events/{eventID}/photos", auth(c.Photo.ListByEvent))
	mux.HandleFunc("GET /events/{eventID}/photos/count", auth(c.Photo.CountByEvent))
	mux.HandleFunc("GET /photos/gallery", auth(c.Photo.Gallery))
	mux.HandleFunc("GET /photos/mine", auth(c.Photo.Mine))
	mux.HandleFunc("GET /photos/{photoID}", auth(c.Photo.Get))
	mux.HandleFunc("DELETE /photos/{photoID}", auth(c.Photo.Delete))

	return mux
}
