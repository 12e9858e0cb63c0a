package api

import (
	"log/slog"
	"net/http"

	"courtside/auth"
	"courtside/conversations"
	"courtside/services"
	"courtside/storage"

	"github.com/go-chi/chi"
)

// Server bundles the handlers and their dependencies behind a chi
// router.
type Server struct {
	log           *slog.Logger
	authService   services.IAuthService
	gameService   services.IGameService
	chatService   services.IChatService
	profiles      services.IProfileService
	conversations *conversations.Aggregator
	bucket        *storage.Bucket
}

func NewServer(
	log *slog.Logger,
	authService services.IAuthService,
	gameService services.IGameService,
	chatService services.IChatService,
	profiles services.IProfileService,
	aggregator *conversations.Aggregator,
	bucket *storage.Bucket,
) *Server {
	return &Server{
		log:           log,
		authService:   authService,
		gameService:   gameService,
		chatService:   chatService,
		profiles:      profiles,
		conversations: aggregator,
		bucket:        bucket,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Get("/media/*", s.handleMedia)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/auth/logout", s.handleLogout)

		r.Get("/games", s.handleListGames)
		r.Post("/games", s.handleCreateGame)
		r.Get("/games/search", s.handleSearchGames)
		r.Get("/games/{id}", s.handleGameDetail)
		r.Put("/games/{id}", s.handleUpdateGame)
		r.Delete("/games/{id}", s.handleDeleteGame)

		r.Post("/games/{id}/join", s.handleJoinGame)
		r.Post("/games/{id}/leave", s.handleLeaveGame)
		r.Delete("/games/{id}/participants/{userID}", s.handleKickParticipant)

		r.Get("/games/{id}/messages", s.handleHistory)
		r.Post("/games/{id}/messages", s.handlePostMessage)

		r.Get("/conversations", s.handleConversations)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Post("/profile/avatar", s.handleUploadAvatar)
	})

	return r
}
