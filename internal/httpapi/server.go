// Package httpapi exposes the place service as a JSON HTTP API. The wire
// types here are the typed boundary of the system: every payload is decoded
// into a request struct and validated before any service call.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	appplaces "github.com/NINESTRING/my-place/internal/app/places"
	"github.com/NINESTRING/my-place/internal/auth"
	"github.com/NINESTRING/my-place/internal/geo"
	"github.com/NINESTRING/my-place/internal/middleware"
	"github.com/NINESTRING/my-place/internal/signing"
	"github.com/NINESTRING/my-place/internal/store"
)

// PlaceService captures the place operations needed by the HTTP handlers.
type PlaceService interface {
	Get(ctx context.Context, id int64) (*store.Place, error)
	ByBounds(ctx context.Context, bounds geo.Bounds) ([]store.Place, error)
	All(ctx context.Context) ([]store.Place, error)
	Nearby(ctx context.Context, id int64) ([]store.Place, error)
	Create(ctx context.Context, identity string, place store.Place) (store.Place, error)
	Update(ctx context.Context, identity string, id int64, place store.Place) (*store.Place, error)
	Delete(ctx context.Context, identity string, id int64) (bool, error)
	IssueUploadSignature(ctx context.Context, identity string) (signing.UploadSignature, error)
}

// AuthService exchanges credentials for bearer tokens.
type AuthService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	places   PlaceService
	auth     AuthService
	verifier middleware.Verifier
}

// New configures a Server with the given services.
func New(places PlaceService, authSvc AuthService, verifier middleware.Verifier) *Server {
	return &Server{places: places, auth: authSvc, verifier: verifier}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/places", s.handleListPlaces)
	mux.HandleFunc("GET /api/v1/places/{id}", s.handleGetPlace)
	mux.HandleFunc("GET /api/v1/places/{id}/nearby", s.handleNearbyPlaces)

	mux.Handle("POST /api/v1/places", s.authenticated(s.handleCreatePlace))
	mux.Handle("PUT /api/v1/places/{id}", s.authenticated(s.handleUpdatePlace))
	mux.Handle("DELETE /api/v1/places/{id}", s.authenticated(s.handleDeletePlace))
	mux.Handle("POST /api/v1/images/signature", s.authenticated(s.handleImageSignature))

	return mux
}

func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	return middleware.RequireIdentity(s.verifier, h)
}

type errorResponse struct {
	Error string `json:"error"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.auth.Signup(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleImageSignature(w http.ResponseWriter, r *http.Request) {
	sig, err := s.places.IssueUploadSignature(r.Context(), auth.Identity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

// writeServiceError maps service failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidGeometry), errors.Is(err, appplaces.ErrInvalidPlace):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	case errors.Is(err, signing.ErrMissingSecret):
		log.Error().Err(err).Msg("upload signing unavailable")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "upload signing unavailable"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
