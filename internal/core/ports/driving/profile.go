package driving

import (
	"context"

	"github.com/auction-man/vasa-auth/internal/core/domain"
)

// ProfileService handles the post-login profile operations that the session
// cookie exists to authenticate.
type ProfileService interface {
	// Complete fills in the contact details collected during onboarding and
	// clears the needs_contact_info flag. Terms must be accepted.
	//   domain.ErrTermsNotAccepted - accept_terms was false
	//   domain.ErrNotFound         - no profile row for the subject
	Complete(ctx context.Context, req CompleteRequest) error

	// Get returns the profile for the authenticated subject.
	Get(ctx context.Context, subject string) (*domain.Profile, error)
}

// CompleteRequest carries the submitted contact details for a subject.
type CompleteRequest struct {
	Subject string
	Info    domain.ContactInfo
}
