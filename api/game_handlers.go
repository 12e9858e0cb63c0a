package api

import (
	"net/http"
	"strconv"

	"courtside/auth"
	"courtside/domain"
	"courtside/services"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type gameResponse struct {
	ID          int64  `json:"id"`
	HostID      string `json:"host_id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	TennisLevel string `json:"tennis_level"`
	Mode        string `json:"game_mode"`
	ImagePath   string `json:"image_path,omitempty"`
}

func toGameResponse(g domain.Game) gameResponse {
	return gameResponse{
		ID:          int64(g.ID),
		HostID:      g.HostID.String(),
		Title:       g.Title,
		Location:    g.Location,
		Date:        g.Date,
		TennisLevel: g.TennisLevel,
		Mode:        string(g.Mode),
		ImagePath:   g.ImagePath,
	}
}

func gameIDParam(r *http.Request) (domain.GameID, error) {
	raw := chi.URLParam(r, "id")
	parsed, err := strconv.ParseInt(raw, 10, 64)
	return domain.GameID(parsed), err
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}

	req, err := requestBody[services.CreateGameRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	game, err := s.gameService.Create(r.Context(), session.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameResponse(game))
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	req, err := requestBody[services.UpdateGameRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	game, err := s.gameService.Update(r.Context(), session.UserID, gameID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	if err := s.gameService.Delete(r.Context(), session.UserID, gameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.gameService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(games, func(g domain.Game, _ int) gameResponse {
		return toGameResponse(g)
	}))
}

func (s *Server) handleSearchGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []gameResponse{})
		return
	}

	games, err := s.gameService.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(games, func(g domain.Game, _ int) gameResponse {
		return toGameResponse(g)
	}))
}

type memberResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	TennisLevel string `json:"tennis_level,omitempty"`
	AvatarPath  string `json:"avatar_path,omitempty"`
}

type gameDetailResponse struct {
	Game    gameResponse     `json:"game"`
	Members []memberResponse `json:"members"`
}

func (s *Server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	detail, err := s.gameService.Detail(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameDetailResponse{
		Game: toGameResponse(detail.Game),
		Members: lo.Map(detail.Members, func(m domain.Profile, _ int) memberResponse {
			return memberResponse{
				ID:          m.ID.String(),
				FullName:    m.FullName,
				TennisLevel: m.TennisLevel,
				AvatarPath:  m.AvatarPath,
			}
		}),
	})
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	if err := s.gameService.Join(r.Context(), session.UserID, gameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	if err := s.gameService.Leave(r.Context(), session.UserID, gameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleKickParticipant(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid user id"})
		return
	}

	if err := s.gameService.Kick(r.Context(), session.UserID, gameID, targetID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
