package routes

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/sabbir-tanvir/storefront/backend"
	"github.com/sabbir-tanvir/storefront/internal/auth"
)

type otpRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User auth.Claims `json:"user"`
}

func (s *Server) handleOTPRequest(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		writeError(w, r, http.StatusBadRequest, "phone required")
		return
	}
	if err := s.Backend.RequestOTP(r.Context(), phone); err != nil {
		s.backendError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleOTPVerify(w http.ResponseWriter, r *http.Request) {
	var in otpRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	phone, code := strings.TrimSpace(in.Phone), strings.TrimSpace(in.OTP)
	if phone == "" || code == "" {
		writeError(w, r, http.StatusBadRequest, "phone and otp required")
		return
	}
	tokens, err := s.Backend.VerifyOTP(r.Context(), phone, code)
	if err != nil {
		s.backendError(w, r, err)
		return
	}
	s.finishLogin(w, r, tokens)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password required")
		return
	}
	tokens, err := s.Backend.Login(r.Context(), username, in.Password)
	if err != nil {
		// a bad password is the caller's problem, not a session to end
		if backend.IsUnauthorized(err) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.backendError(w, r, err)
		return
	}
	s.finishLogin(w, r, tokens)
}

func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, tokens backend.Tokens) {
	claims, err := s.startSession(r.Context(), tokens)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("start session")
		writeError(w, r, http.StatusBadGateway, "backend issued an unusable token")
		return
	}
	hlog.FromRequest(r).Info().Str("user_id", claims.UserID).Msg("signed in")
	writeJSON(w, r, http.StatusOK, sessionResponse{User: claims})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sess.Destroy(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("destroy session")
		writeError(w, r, http.StatusInternalServerError, "could not end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
