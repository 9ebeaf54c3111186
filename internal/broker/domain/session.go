package domain

import (
	"errors"
	"time"
)

// Status is the flow position of a Session. Token freshness is tracked by
// ExpiresAt and NeedsReauth, never by Status.
type Status string

const (
	StatusLaunched      Status = "launched"
	StatusAuthenticated Status = "authenticated"
)

// ErrInvariant is returned when a mutation would leave a Session inconsistent.
var ErrInvariant = errors.New("domain: session invariant violated")

// Session is one SMART launch, from the EHR launch request until it is deleted.
// ID doubles as the OAuth state value and the front-end handle.
type Session struct {
	ID string

	FHIRBase      string
	AuthEndpoint  string
	TokenEndpoint string
	JWKSURI       string // from discovery, kept for a verifying claims decoder

	LaunchContext string
	ClientID      string
	RedirectURI   string
	Scope         string

	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // meaningful only when AccessToken is set

	PatientID      string
	PractitionerID string
	EncounterID    string

	Status      Status
	NeedsReauth bool
	StateUsed   bool // a callback carrying this state was accepted

	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Validate checks the invariants every stored Session must satisfy.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.Join(ErrInvariant, errors.New("empty id"))
	}
	switch s.Status {
	case StatusLaunched:
	case StatusAuthenticated:
		if s.AccessToken == "" {
			return errors.Join(ErrInvariant, errors.New("authenticated session without access token"))
		}
	default:
		return errors.Join(ErrInvariant, errors.New("unknown status "+string(s.Status)))
	}
	return nil
}

// Authenticated reports whether the code exchange has completed.
func (s *Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.AccessToken != ""
}

// FreshAt reports whether the access token is still usable at now with at
// least margin to spare.
func (s *Session) FreshAt(now time.Time, margin time.Duration) bool {
	return s.AccessToken != "" && s.ExpiresAt.After(now.Add(margin))
}

// TimeRemaining is the time until ExpiresAt, zero when no token is held.
func (s *Session) TimeRemaining(now time.Time) time.Duration {
	if s.AccessToken == "" || s.ExpiresAt.IsZero() {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// ApplyContext fills the context ids that are still empty. Fields that already
// hold a value are never overwritten. It returns the names of the fields set.
func (s *Session) ApplyContext(c ClinicalContext) []string {
	var set []string
	if s.PatientID == "" && c.PatientID != "" {
		s.PatientID = c.PatientID
		set = append(set, "patient")
	}
	if s.PractitionerID == "" && c.PractitionerID != "" {
		s.PractitionerID = c.PractitionerID
		set = append(set, "practitioner")
	}
	if s.EncounterID == "" && c.EncounterID != "" {
		s.EncounterID = c.EncounterID
		set = append(set, "encounter")
	}
	return set
}

// ClinicalContext is the launch context discovered after the code exchange.
type ClinicalContext struct {
	PatientID      string
	PractitionerID string
	EncounterID    string

	// Sources records where each populated field came from, keyed by field
	// name ("patient", "practitioner", "encounter").
	Sources map[string]string
}
