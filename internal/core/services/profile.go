package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
	"github.com/auction-man/vasa-auth/internal/core/ports/driving"
)

// Ensure profileService implements ProfileService
var _ driving.ProfileService = (*profileService)(nil)

// profileService implements the ProfileService interface.
type profileService struct {
	profiles driven.ProfileStore
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles driven.ProfileStore, logger *slog.Logger) driving.ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{profiles: profiles, logger: logger}
}

// Complete stores the submitted contact details and clears the onboarding
// flag. It refuses to proceed without accepted terms.
func (s *profileService) Complete(ctx context.Context, req driving.CompleteRequest) error {
	if req.Subject == "" {
		return domain.ErrUnauthorized
	}
	if !req.Info.AcceptTerms {
		return domain.ErrTermsNotAccepted
	}

	if err := s.profiles.Complete(ctx, req.Subject, req.Info); err != nil {
		if err == domain.ErrNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("complete profile: %w", err)
	}

	s.logger.Info("profile completed", "subject", req.Subject)
	return nil
}

// Get returns the profile for a subject.
func (s *profileService) Get(ctx context.Context, subject string) (*domain.Profile, error) {
	if subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.profiles.Get(ctx, subject)
}
