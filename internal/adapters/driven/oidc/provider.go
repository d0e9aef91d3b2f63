// Package oidc adapts an upstream OpenID Connect provider (Criipto BankID in
// production) to the IdentityProvider port. It drives the authorization-code
// flow: building the authorize URL, exchanging the callback code, and
// verifying the returned ID token before any claim is trusted.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

var _ driven.IdentityProvider = (*Provider)(nil)

// Config holds the upstream provider settings
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	ExtraScopes  []string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// Provider talks OIDC to a single upstream issuer
type Provider struct {
	oauth    oauth2.Config
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
	logger   *slog.Logger
}

// New discovers the issuer's endpoints and signing keys. Discovery happens
// once at startup; a provider that is down at boot fails fast here rather
// than on the first login.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: cfg.Timeout}

	provider, err := gooidc.NewProvider(gooidc.ClientContext(ctx, client), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover issuer %s: %w", cfg.IssuerURL, err)
	}

	scopes := append([]string{gooidc.ScopeOpenID}, cfg.ExtraScopes...)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:   client,
		logger:   logger.With("component", "oidc"),
	}, nil
}

// AuthCodeURL builds the upstream authorize URL carrying the given state
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange redeems an authorization code for a verified identity.
// The ID token's signature, issuer, audience and expiry are all checked
// before any claim is extracted.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.IdentityClaims, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		p.logExchangeFailure(err)
		return nil, fmt.Errorf("%w: code exchange failed", domain.ErrTokenExchange)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		p.logger.Error("token response missing id_token")
		return nil, fmt.Errorf("%w: no id_token in response", domain.ErrTokenExchange)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		p.logger.Error("id_token verification failed", "error", err)
		return nil, fmt.Errorf("%w: id_token verification: %v", domain.ErrTokenExchange, err)
	}

	var rawClaims map[string]any
	if err := idToken.Claims(&rawClaims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", domain.ErrTokenExchange, err)
	}

	claims, err := domain.ExtractIdentityClaims(rawClaims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// logExchangeFailure records what the upstream said without echoing the
// full response. Token endpoint errors can carry sensitive material, so
// the body is capped hard.
func (p *Provider) logExchangeFailure(err error) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		body := retrieveErr.Body
		if len(body) > 512 {
			body = body[:512]
		}
		p.logger.Error("token endpoint rejected exchange",
			"status", retrieveErr.Response.StatusCode,
			"body", string(body))
		return
	}
	p.logger.Error("token exchange failed", "error", err)
}
