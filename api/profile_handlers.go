package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"courtside/auth"
	"courtside/domain"
	"courtside/services"
)

type profileResponse struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	FullName     string              `json:"full_name"`
	AvatarPath   string              `json:"avatar_path,omitempty"`
	TennisLevel  string              `json:"tennis_level,omitempty"`
	PlayHand     string              `json:"play_hand,omitempty"`
	Goal         string              `json:"goal,omitempty"`
	Availability map[string][]string `json:"availability,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:           p.ID.String(),
		Email:        p.Email,
		FullName:     p.FullName,
		AvatarPath:   p.AvatarPath,
		TennisLevel:  p.TennisLevel,
		PlayHand:     p.PlayHand,
		Goal:         p.Goal,
		Availability: p.Availability,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}

	profile, err := s.profiles.Get(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}

	req, err := requestBody[services.UpdateProfileRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	profile, err := s.profiles.Update(r.Context(), session.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

type avatarResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not signed in"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 5<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unreadable body"})
		return
	}

	url, err := s.profiles.UploadAvatar(r.Context(), session.UserID, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, avatarResponse{URL: url})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/media/")
	data, err := s.bucket.Open(objectPath)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}
