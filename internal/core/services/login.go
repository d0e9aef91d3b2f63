package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
	"github.com/auction-man/vasa-auth/internal/core/ports/driving"
)

// Ensure loginService implements LoginService
var _ driving.LoginService = (*loginService)(nil)

// LoginServiceConfig holds configuration for the login service.
type LoginServiceConfig struct {
	// StateCodec binds return URLs to CSRF state tokens.
	StateCodec driven.StateCodec

	// Provider is the external identity provider.
	Provider driven.IdentityProvider

	// Profiles persists user profiles.
	Profiles driven.ProfileStore

	// Sessions mints session cookie tokens.
	Sessions driven.SessionTokens

	// Hasher one-way hashes personal identity numbers for storage.
	Hasher driven.PersonalNumberHasher

	// AppDomain is the registered application domain return URLs are
	// validated against. Example: "vasaauktioner.se"
	AppDomain string

	// DefaultReturnURL is where users land when no valid return URL was
	// requested.
	DefaultReturnURL string

	// StateTTL is how long a state binding stays valid.
	StateTTL time.Duration

	// UpstreamTimeout bounds each outbound call (token exchange, profile
	// store).
	UpstreamTimeout time.Duration

	Logger *slog.Logger
}

// loginService implements the LoginService interface.
type loginService struct {
	codec            driven.StateCodec
	provider         driven.IdentityProvider
	profiles         driven.ProfileStore
	sessions         driven.SessionTokens
	hasher           driven.PersonalNumberHasher
	appDomain        string
	defaultReturnURL string
	stateTTL         time.Duration
	upstreamTimeout  time.Duration
	logger           *slog.Logger
}

// NewLoginService creates a new login service.
func NewLoginService(cfg LoginServiceConfig) driving.LoginService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stateTTL := cfg.StateTTL
	if stateTTL <= 0 {
		stateTTL = 5 * time.Minute
	}
	upstreamTimeout := cfg.UpstreamTimeout
	if upstreamTimeout <= 0 {
		upstreamTimeout = 10 * time.Second
	}
	return &loginService{
		codec:            cfg.StateCodec,
		provider:         cfg.Provider,
		profiles:         cfg.Profiles,
		sessions:         cfg.Sessions,
		hasher:           cfg.Hasher,
		appDomain:        cfg.AppDomain,
		defaultReturnURL: cfg.DefaultReturnURL,
		stateTTL:         stateTTL,
		upstreamTimeout:  upstreamTimeout,
		logger:           logger,
	}
}

// Start resolves the return URL, binds it to a fresh state token, and
// returns the provider authorization URL.
func (s *loginService) Start(ctx context.Context, req driving.StartRequest) (*driving.StartResponse, error) {
	returnURL := domain.ResolveReturnURL(req.ReturnURL, s.appDomain, s.defaultReturnURL)

	state, err := s.codec.Bind(ctx, returnURL)
	if err != nil {
		return nil, fmt.Errorf("bind state: %w", err)
	}

	s.logger.Info("login started",
		"return_url", returnURL,
		"state_bound", true)

	return &driving.StartResponse{
		AuthorizationURL: s.provider.AuthCodeURL(state),
		State:            state,
		ExpiresAt:        time.Now().Add(s.stateTTL),
	}, nil
}

// Finalize runs the callback pipeline. The ordering is load-bearing: the
// session token is minted only after the state has validated, the code has
// exchanged, and the profile has reconciled. A failure at any step leaks no
// partial session.
func (s *loginService) Finalize(ctx context.Context, req driving.FinalizeRequest) (*driving.FinalizeResponse, error) {
	if req.Code == "" {
		return nil, domain.ErrMissingCode
	}

	// Validate and consume the state (single-use).
	returnURL, err := s.codec.Unbind(ctx, req.State)
	if err != nil {
		s.logger.Warn("state validation failed", "error", err)
		if errors.Is(err, domain.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}

	// Exchange the code and verify the identity token.
	exchangeCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	claims, err := s.provider.Exchange(exchangeCtx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSubject) {
			s.logger.Error("identity token missing subject")
			return nil, err
		}
		s.logger.Error("token exchange failed", "error", err)
		if errors.Is(err, domain.ErrTokenExchange) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchange, err)
	}

	// Reconcile the profile with a single atomic upsert.
	storeCtx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	firstLogin, err := s.profiles.Upsert(storeCtx, s.profileFromClaims(claims))
	if err != nil {
		s.logger.Error("profile upsert failed", "subject", claims.Subject, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileStore, err)
	}

	token, err := s.sessions.Mint(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	redirect := returnURL
	if firstLogin {
		redirect = appendFirstLogin(returnURL)
	}

	s.logger.Info("login finalized",
		"subject", claims.Subject,
		"first_login", firstLogin,
		"redirect", redirect)

	return &driving.FinalizeResponse{
		RedirectURL:  redirect,
		SessionToken: token,
		FirstLogin:   firstLogin,
	}, nil
}

// profileFromClaims maps verified claims to the row handed to the store.
// The raw personal number is replaced by its keyed hash here and nowhere
// else.
func (s *loginService) profileFromClaims(claims *domain.IdentityClaims) *domain.Profile {
	now := time.Now().UTC()
	profile := &domain.Profile{
		Subject:          claims.Subject,
		NeedsContactInfo: true,
		LastLoginAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if claims.DisplayName != "" {
		profile.DisplayName = &claims.DisplayName
	}
	if claims.Email != "" {
		profile.Email = &claims.Email
	}
	if claims.PhoneNumber != "" {
		profile.Phone = &claims.PhoneNumber
	}
	if claims.PersonalNumber != "" && s.hasher != nil {
		hash := s.hasher.Hash(claims.PersonalNumber)
		profile.PersonalNumberHash = &hash
	}
	return profile
}

// appendFirstLogin adds first=1 to drive client-side onboarding.
func appendFirstLogin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("first", "1")
	u.RawQuery = q.Encode()
	return u.String()
}
