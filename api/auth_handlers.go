package api

import (
	"net/http"

	"courtside/services"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token services.Token `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := requestBody[registerRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	token, err := s.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := requestBody[loginRequest](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.authService.Logout()
	writeJSON(w, http.StatusNoContent, nil)
}
