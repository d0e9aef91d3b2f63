package domain

import "time"

// Profile is the persisted user record, keyed by the identity provider's
// stable subject identifier. It is created on first login and mutated on
// every subsequent login and by profile completion.
type Profile struct {
	Subject            string     `json:"subject"`
	DisplayName        *string    `json:"display_name,omitempty"`
	Email              *string    `json:"email,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	Address            *string    `json:"address,omitempty"`
	Zip                *string    `json:"zip,omitempty"`
	City               *string    `json:"city,omitempty"`
	PersonalNumberHash *string    `json:"-"` // Never serialize
	NeedsContactInfo   bool       `json:"needs_contact_info"`
	AcceptedTerms      bool       `json:"accepted_terms"`
	LastLoginAt        time.Time  `json:"last_login_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ContactInfo carries the details a user submits to complete their profile.
// Nil fields are left untouched in the stored row.
type ContactInfo struct {
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Zip         *string `json:"zip"`
	City        *string `json:"city"`
	AcceptTerms bool    `json:"accept_terms"`
}
