package driven

import (
	"context"

	"github.com/auction-man/vasa-auth/internal/core/domain"
)

// ProfileStore persists user profiles keyed by the provider subject.
type ProfileStore interface {
	// Upsert inserts the profile or, if a row for the subject already
	// exists, refreshes last_login_at and any newly provided display
	// attributes. It must be a single atomic statement backed by the
	// uniqueness of the subject column so two concurrent callbacks for one
	// subject cannot both observe a first login. Returns true when the row
	// was created by this call.
	Upsert(ctx context.Context, profile *domain.Profile) (firstLogin bool, err error)

	// Get retrieves a profile by subject.
	// Returns domain.ErrNotFound if no row exists.
	Get(ctx context.Context, subject string) (*domain.Profile, error)

	// Complete fills in contact details and clears needs_contact_info.
	// Returns domain.ErrNotFound if no row exists for the subject.
	Complete(ctx context.Context, subject string, info domain.ContactInfo) error
}
