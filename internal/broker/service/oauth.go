package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/internal/broker/domain"
	"github.com/aussiebroadwan/smartbroker/pkg/jwtx"
	"golang.org/x/oauth2"
)

// DefaultExpiresIn applies when the token endpoint omits expires_in.
const DefaultExpiresIn = 3600 * time.Second

// DefaultTokenTimeout bounds the code exchange and refresh POSTs.
const DefaultTokenTimeout = 30 * time.Second

// oauthConfig builds the x/oauth2 view of a session. Client credentials are
// sent in the form body, the way SMART public and confidential clients expect.
func oauthConfig(s domain.Session, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: clientSecret,
		RedirectURL:  s.RedirectURI,
		Scopes:       strings.Fields(s.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.AuthEndpoint,
			TokenURL:  s.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// expiresIn reads expires_in from the raw token response. If it is absent, or
// not a number, the default applies.
func expiresIn(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Duration(n) * time.Second
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return DefaultExpiresIn
}

// tokenContext pulls the launch context fields out of a token response.
func tokenContext(tok *oauth2.Token) TokenContext {
	raw := map[string]any{}
	for _, field := range contextFields {
		raw[field] = tok.Extra(field)
	}

	tc := TokenContext{Fields: map[string]string{}}
	for _, field := range contextFields {
		if v := jwtx.StringClaim(raw, field); v != "" {
			tc.Fields[field] = v
		}
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		tc.IDToken = idToken
	}
	return tc
}
