package service

import (
	"context"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/jwtx"
	"github.com/aussiebroadwan/smartbroker/pkg/slogx"
)

// Context sources, in precedence order.
const (
	SourceTokenResponse = "token_response"
	SourceIDToken       = "id_token"
)

var contextFields = []string{"patient", "practitioner", "encounter"}

// TokenContext is what the token endpoint returned that can carry launch
// context: the top-level SMART fields and the raw id_token.
type TokenContext struct {
	Fields  map[string]string // "patient", "practitioner", "encounter"
	IDToken string
}

// ClaimsExtractor derives the clinical context of a launch. Decoder defaults
// to jwtx.InsecurePeek, which does NOT verify the id_token.
type ClaimsExtractor struct {
	Decoder jwtx.ClaimsDecoder
}

// Extract applies the precedence rules: top-level token response fields
// first, then id_token claims, first match wins per field. The launch value is
// only logged; resolving it to a patient is not this component's job.
func (e *ClaimsExtractor) Extract(ctx context.Context, tc TokenContext, launch string) domain.ClinicalContext {
	l := slogx.FromContext(ctx)
	found := map[string]string{}
	sources := map[string]string{}

	for _, field := range contextFields {
		if v := tc.Fields[field]; v != "" {
			found[field] = v
			sources[field] = SourceTokenResponse
		}
	}

	if tc.IDToken != "" {
		claims, err := e.decoder().Decode(tc.IDToken)
		if err != nil {
			l.Warn("failed to decode id_token, continuing without claims", "error", err)
		} else {
			for _, field := range contextFields {
				if _, ok := found[field]; ok {
					continue
				}
				if v := jwtx.StringClaim(claims, field); v != "" {
					found[field] = v
					sources[field] = SourceIDToken
				}
			}
			l.Debug("id_token claims read",
				"sub", jwtx.StringClaim(claims, "sub"),
				"iss", jwtx.StringClaim(claims, "iss"),
			)
		}
	}

	if launch != "" && found["patient"] == "" {
		l.Info("launch context present but not resolved to a patient", "launch", launch)
	}

	return domain.ClinicalContext{
		PatientID:      found["patient"],
		PractitionerID: found["practitioner"],
		EncounterID:    found["encounter"],
		Sources:        sources,
	}
}

func (e *ClaimsExtractor) decoder() jwtx.ClaimsDecoder {
	if e == nil || e.Decoder == nil {
		return jwtx.InsecurePeek{}
	}
	return e.Decoder
}
