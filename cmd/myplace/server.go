package main

import (
	"net/http"

	appplaces "github.com/NINESTRING/my-place/internal/app/places"
	"github.com/NINESTRING/my-place/internal/auth"
	"github.com/NINESTRING/my-place/internal/httpapi"
	"github.com/NINESTRING/my-place/internal/middleware"
	"github.com/NINESTRING/my-place/internal/signing"
	"github.com/NINESTRING/my-place/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	signer := signing.New(cfg.MediaSigningSecret)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	placesSvc := appplaces.New(dataStore, signer)
	authSvc := auth.NewService(dataStore, tokens)

	api := httpapi.New(placesSvc, authSvc, tokens)

	handler := middleware.Recovery(api.Routes())
	handler = middleware.RequestLogging(handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	return handler
}
