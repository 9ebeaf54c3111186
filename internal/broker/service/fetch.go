package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/internal/broker/store"
	"github.com/aussiebroadwan/smartbroker/pkg/idx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// DefaultFetchTimeout bounds each resource GET.
const DefaultFetchTimeout = 30 * time.Second

// FHIRContentType is requested on every resource fetch.
const FHIRContentType = "application/fhir+json"

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeFailed
	OutcomeReauthRequired
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeFailed:
		return "failed"
	case OutcomeReauthRequired:
		return "reauth_required"
	default:
		return "unknown"
	}
}

// Outcome is the result of one resource fetch. Data is set for OutcomeOK; Err
// explains the other kinds and is a *ResourceError, a *NetworkError, or wraps
// ErrReauthRequired.
type Outcome struct {
	Kind OutcomeKind
	Data json.RawMessage
	Err  error
}

// BundleResult aggregates a patient data bundle run.
type BundleResult struct {
	FetchID     string
	Session     domain.Session
	Resources   map[string]json.RawMessage
	Fetched     []string
	Failed      []string
	Errors      []string
	NeedsReauth bool
	FetchedAt   time.Time
}

// FetchService is the Resource Fetcher.
type FetchService struct {
	Sessions store.Sessions
	Tokens   TokenManager
	HTTP     *Outbound
	Timeout  time.Duration
	Metrics  *Metrics
	Now      func() time.Time
}

func (f *FetchService) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FetchOne fetches resourcePath (relative to the session's FHIR base) for an
// authenticated session. The returned error is only set when the session is
// unknown or not authenticated; fetch failures are reported in the Outcome.
func (f *FetchService) FetchOne(ctx context.Context, sessionID, resourcePath string) (Outcome, domain.Session, error) {
	ctx = slogx.WithSession(ctx, sessionID)

	sess, err := f.authenticated(ctx, sessionID)
	if err != nil {
		return Outcome{}, domain.Session{}, err
	}

	out := f.fetch(ctx, sess, resourcePath)
	f.Metrics.fetch(metricResource(resourcePath), out.Kind)

	return out, f.touch(ctx, sessionID, sess), nil
}

// Resource fetches one of SupportedResourceTypes with its default search
// parameters, scoped to the session's patient when one is known.
func (f *FetchService) Resource(ctx context.Context, sessionID, resourceType string) (Outcome, domain.Session, error) {
	sess, err := f.authenticated(ctx, sessionID)
	if err != nil {
		return Outcome{}, domain.Session{}, err
	}
	path, err := ResourcePath(resourceType, sess.PatientID)
	if err != nil {
		return Outcome{}, domain.Session{}, err
	}
	return f.FetchOne(ctx, sessionID, path)
}

// Search runs a free-form search. query is passed through unchanged.
func (f *FetchService) Search(ctx context.Context, sessionID, resourceType, query string) (Outcome, domain.Session, error) {
	if _, err := f.authenticated(ctx, sessionID); err != nil {
		return Outcome{}, domain.Session{}, err
	}
	path, err := SearchPath(resourceType, query)
	if err != nil {
		return Outcome{}, domain.Session{}, err
	}
	return f.FetchOne(ctx, sessionID, path)
}

// FetchBundle runs the six bundle fetches in order. Each failure is recorded
// and the run continues, except ReauthRequired which stops the run.
func (f *FetchService) FetchBundle(ctx context.Context, sessionID string) (*BundleResult, error) {
	ctx = slogx.WithSession(ctx, sessionID)
	l := slogx.FromContext(ctx)

	sess, err := f.authenticated(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &BundleResult{
		FetchID:   idx.New().String(),
		Resources: map[string]json.RawMessage{},
		Fetched:   []string{},
		Failed:    []string{},
		Errors:    []string{},
	}
	l = l.With("fetch_id", result.FetchID)

	if sess, err = f.Tokens.EnsureValid(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		result.NeedsReauth = true
		result.Errors = append(result.Errors, "Token validation failed: "+err.Error())
		l.Warn("bundle skipped, re-authentication required", "error", err)
		result.Session = f.touch(ctx, sessionID, sess)
		result.FetchedAt = f.now()
		return result, nil
	}

	for _, r := range BundleResources(sess.PatientID) {
		// Pick up a token refreshed by an earlier fetch in this run.
		if current, err := f.Sessions.Get(ctx, sessionID); err == nil {
			sess = current
		}

		out := f.fetch(ctx, sess, r.Path)
		f.Metrics.fetch(r.Name, out.Kind)

		switch out.Kind {
		case OutcomeOK:
			result.Resources[r.Name] = out.Data
			result.Fetched = append(result.Fetched, r.Name)
			l.Info("resource fetched", "resource", r.Name, "entries", entryCount(out.Data))
		default:
			result.Failed = append(result.Failed, r.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Description, out.Err))
			l.Warn("resource fetch failed", "resource", r.Name, "error", out.Err)
		}

		if out.Kind == OutcomeReauthRequired {
			result.NeedsReauth = true
			l.Warn("re-authentication required, remaining fetches skipped")
			break
		}
	}

	result.Session = f.touch(ctx, sessionID, sess)
	result.FetchedAt = f.now()

	l.Info("bundle fetch complete",
		"fetched", result.Fetched,
		"failed", result.Failed,
		"needs_reauth", result.NeedsReauth,
	)
	return result, nil
}

func (f *FetchService) authenticated(ctx context.Context, sessionID string) (domain.Session, error) {
	sess, err := f.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}
	if !sess.Authenticated() {
		return sess, ErrNotAuthenticated
	}
	return sess, nil
}

// fetch performs the GET, and on a 401 replaces the token and retries once.
func (f *FetchService) fetch(ctx context.Context, sess domain.Session, resourcePath string) Outcome {
	l := slogx.FromContext(ctx)
	url := strings.TrimRight(sess.FHIRBase, "/") + "/" + strings.TrimLeft(resourcePath, "/")

	status, body, err := f.get(ctx, url, sess.AccessToken)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}

	if status == http.StatusUnauthorized {
		l.Warn("resource server rejected token, refreshing", "url", url)

		refreshed, err := f.Tokens.ReplaceRejected(ctx, sess.ID, sess.AccessToken)
		if err != nil {
			return Outcome{Kind: OutcomeReauthRequired, Err: reauthError(err)}
		}

		status, body, err = f.get(ctx, url, refreshed.AccessToken)
		if err != nil {
			return Outcome{Kind: OutcomeFailed, Err: err}
		}
		if status == http.StatusOK {
			l.Info("request successful after token refresh", "url", url)
		}
	}

	if status != http.StatusOK {
		return Outcome{Kind: OutcomeFailed, Err: &ResourceError{Status: status, Body: string(body)}}
	}
	if !json.Valid(body) {
		return Outcome{Kind: OutcomeFailed, Err: &ResourceError{Status: status, Body: "response is not valid JSON"}}
	}
	return Outcome{Kind: OutcomeOK, Data: json.RawMessage(body)}
}

func (f *FetchService) get(ctx context.Context, url, accessToken string) (int, []byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return f.HTTP.Get(ctx, url, timeout, http.Header{
		"Authorization": {"Bearer " + accessToken},
		"Accept":        {FHIRContentType},
	})
}

// touch records access and returns the latest session state, or fallback if
// the session vanished meanwhile.
func (f *FetchService) touch(ctx context.Context, sessionID string, fallback domain.Session) domain.Session {
	sess, err := f.Sessions.WithLock(ctx, sessionID, func(s *domain.Session) error {
		s.LastAccessedAt = f.now()
		return nil
	})
	if err != nil {
		return fallback
	}
	return sess
}

func reauthError(err error) error {
	if errors.Is(err, ErrReauthRequired) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReauthRequired, err)
}

// metricResource keeps metric label cardinality bounded to the resource type.
func metricResource(resourcePath string) string {
	name, _, _ := strings.Cut(strings.TrimLeft(resourcePath, "/"), "?")
	name, _, _ = strings.Cut(name, "/")
	if resourceTypePattern.MatchString(name) {
		return name
	}
	return "other"
}

// Summary is the part of a FHIR Bundle the broker reports on.
type Summary struct {
	Total   int `json:"total"`
	Entries int `json:"entry_count"`
}

// Summarize counts the entries of a FHIR searchset. Non-bundle resources
// summarize to zero.
func Summarize(data json.RawMessage) Summary {
	var bundle struct {
		Total int               `json:"total"`
		Entry []json.RawMessage `json:"entry"`
	}
	// Non-bundle bodies fail to decode and leave the counts at zero.
	_ = json.Unmarshal(data, &bundle)
	return Summary{Total: bundle.Total, Entries: len(bundle.Entry)}
}

func entryCount(data json.RawMessage) int {
	return Summarize(data).Entries
}
