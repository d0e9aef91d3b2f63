package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore implements driven.ProfileStore using PostgreSQL
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a new ProfileStore
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Upsert reconciles the profile row for a login in one atomic statement.
// Insert-vs-update is reported via xmax: the system column is 0 only for a
// freshly inserted row, so concurrent callbacks for the same subject resolve
// to exactly one first login. The update branch refreshes last_login_at and
// fills display attributes only where a new value arrived; it never touches
// needs_contact_info.
func (s *ProfileStore) Upsert(ctx context.Context, p *domain.Profile) (bool, error) {
	query := `
		INSERT INTO profiles (
			subject, display_name, email, phone, personal_number_hash,
			needs_contact_info, last_login_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6, $6)
		ON CONFLICT (subject) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
			email = COALESCE(EXCLUDED.email, profiles.email),
			phone = COALESCE(EXCLUDED.phone, profiles.phone),
			personal_number_hash = COALESCE(EXCLUDED.personal_number_hash, profiles.personal_number_hash),
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)
	`

	var firstLogin bool
	err := s.db.QueryRowContext(ctx, query,
		p.Subject,
		NullString(p.DisplayName),
		NullString(p.Email),
		NullString(p.Phone),
		NullString(p.PersonalNumberHash),
		p.LastLoginAt,
	).Scan(&firstLogin)
	if err != nil {
		return false, fmt.Errorf("upsert profile: %w", err)
	}

	return firstLogin, nil
}

// Get retrieves a profile by subject
func (s *ProfileStore) Get(ctx context.Context, subject string) (*domain.Profile, error) {
	query := `
		SELECT subject, display_name, email, phone, address, zip, city,
		       personal_number_hash, needs_contact_info, accepted_terms,
		       last_login_at, created_at, updated_at
		FROM profiles
		WHERE subject = $1
	`

	var p domain.Profile
	var displayName, email, phone, address, zip, city, pnrHash sql.NullString

	err := s.db.QueryRowContext(ctx, query, subject).Scan(
		&p.Subject,
		&displayName,
		&email,
		&phone,
		&address,
		&zip,
		&city,
		&pnrHash,
		&p.NeedsContactInfo,
		&p.AcceptedTerms,
		&p.LastLoginAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.DisplayName = StringPtr(displayName)
	p.Email = StringPtr(email)
	p.Phone = StringPtr(phone)
	p.Address = StringPtr(address)
	p.Zip = StringPtr(zip)
	p.City = StringPtr(city)
	p.PersonalNumberHash = StringPtr(pnrHash)
	return &p, nil
}

// Complete fills in contact details and clears the onboarding flag
func (s *ProfileStore) Complete(ctx context.Context, subject string, info domain.ContactInfo) error {
	query := `
		UPDATE profiles SET
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			zip = COALESCE($5, zip),
			city = COALESCE($6, city),
			needs_contact_info = FALSE,
			accepted_terms = TRUE,
			updated_at = NOW()
		WHERE subject = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		subject,
		NullString(info.Email),
		NullString(info.Phone),
		NullString(info.Address),
		NullString(info.Zip),
		NullString(info.City),
	)
	if err != nil {
		return fmt.Errorf("complete profile: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete profile: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
