package api

import (
	"net/http"
	"time"

	"courtside/auth"
	"courtside/domain"

	"github.com/samber/lo"
)

type messageResponse struct {
	ID         string    `json:"id"`
	GameID     int64     `json:"game_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		GameID:     int64(m.GameID),
		SenderID:   m.SenderID.String(),
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid game id"})
		return
	}

	messages, err := s.chatService.History(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	}))
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
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

	req, err := requestBody[postMessageRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	message, err := s.chatService.Post(r.Context(), gameID, session.UserID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

type conversationResponse struct {
	Game   gameResponse `json:"game"`
	IsHost bool         `json:"is_host"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}

	list, err := s.conversations.List(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(list, func(c domain.Conversation, _ int) conversationResponse {
		return conversationResponse{Game: toGameResponse(c.Game), IsHost: c.IsHost}
	}))
}
