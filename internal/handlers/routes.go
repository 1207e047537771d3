package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gizetz/gbairai/internal/auth"
	"github.com/gizetz/gbairai/internal/middleware"
)

type RouterConfig struct {
	Auth           *AuthHandler
	DM             *DMHandler
	Signer         *auth.Signer
	Logger         *slog.Logger
	RequestTimeout time.Duration
	// WebSocket serves /ws when set. It runs behind the session check but
	// outside the request timeout.
	WebSocket http.Handler
}

func NewRouter(c RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(c.Logger))

	// Public
	r.HandleFunc("/signup", c.Auth.Signup).Methods("POST")
	r.HandleFunc("/login", c.Auth.Login).Methods("POST")
	r.HandleFunc("/logout", c.Auth.Logout).Methods("POST")
	r.HandleFunc("/verify", c.Auth.Verify).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	requireSession := middleware.Auth(c.Signer)
	if c.WebSocket != nil {
		r.Handle("/ws", requireSession(c.WebSocket)).Methods("GET")
	}

	api := r.NewRoute().Subrouter()
	api.Use(requireSession, middleware.Timeout(c.RequestTimeout))

	api.HandleFunc("/me", c.Auth.Me).Methods("GET")
	api.HandleFunc("/users/search", c.Auth.SearchUsers).Methods("GET")

	api.HandleFunc("/conversations", c.DM.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations", c.DM.ListConversations).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}", c.DM.GetConversation).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}", c.DM.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", c.DM.ListMessages).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", c.DM.SendMessage).Methods("POST")

	api.HandleFunc("/messages/{id:[0-9]+}/for-me", c.DM.DeleteMessageForMe).Methods("DELETE")
	api.HandleFunc("/messages/{id:[0-9]+}", c.DM.DeleteMessage).Methods("DELETE")

	api.HandleFunc("/users/{id:[0-9]+}/block", c.DM.Block).Methods("POST")
	api.HandleFunc("/users/{id:[0-9]+}/block", c.DM.Unblock).Methods("DELETE")
	api.HandleFunc("/blocked-users", c.DM.BlockedUsers).Methods("GET")

	return r
}
