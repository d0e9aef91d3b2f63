package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driving"
)

// sessionCookieName is read by the frontend on the apex domain
const sessionCookieName = "va_session"

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Login flow

// handleStart begins a login: binds the caller's return URL into a state
// value and redirects the browser to the upstream authorize endpoint.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	resp, err := s.loginService.Start(r.Context(), driving.StartRequest{
		ReturnURL: r.URL.Query().Get("return"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not start login")
		return
	}

	http.Redirect(w, r, resp.AuthorizationURL, http.StatusFound)
}

// handleFinalize receives the provider callback. On success it sets the
// session cookie and redirects to the bound return URL. An invalid or
// replayed state redirects to the default page with no cookie at all.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.loginService.Finalize(r.Context(), driving.FinalizeRequest{
		Code:  q.Get("code"),
		State: q.Get("state"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCode):
			writeError(w, http.StatusBadRequest, "missing authorization code")
		case errors.Is(err, domain.ErrInvalidState):
			// No session is issued for a state we did not hand out
			http.Redirect(w, r, s.defaultReturnURL, http.StatusFound)
		case errors.Is(err, domain.ErrTokenExchange),
			errors.Is(err, domain.ErrMissingSubject),
			errors.Is(err, domain.ErrProfileStore):
			writeError(w, http.StatusBadGateway, "login could not be completed")
		default:
			writeError(w, http.StatusInternalServerError, "login could not be completed")
		}
		return
	}

	http.SetCookie(w, s.sessionCookie(resp.SessionToken))
	http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
}

// sessionCookie builds the cookie carrying the session token. It is
// deliberately not HttpOnly: the frontend reads it in JS to know a
// session exists. The token itself is signed and carries no secrets.
func (s *Server) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Domain:   s.cookieDomain,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		Secure:   true,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}

// Profile endpoints

// CompleteProfileRequest is the contact-info payload from the frontend
type CompleteProfileRequest struct {
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Zip         *string `json:"zip"`
	City        *string `json:"city"`
	AcceptTerms bool    `json:"accept_terms"`
}

func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.sessionSubject(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.profileService.Complete(r.Context(), driving.CompleteRequest{
		Subject: subject,
		Info: domain.ContactInfo{
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Zip:         req.Zip,
			City:        req.City,
			AcceptTerms: req.AcceptTerms,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTermsNotAccepted):
			writeError(w, http.StatusBadRequest, "terms must be accepted")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "profile not found")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			writeError(w, http.StatusInternalServerError, "could not update profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.sessionSubject(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := s.profileService.Get(r.Context(), subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// sessionSubject extracts and validates the session cookie
func (s *Server) sessionSubject(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	subject, err := s.sessions.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return subject, true
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
