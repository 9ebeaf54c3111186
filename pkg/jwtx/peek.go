package jwtx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token cannot be decoded at all.
var ErrMalformed = errors.New("jwtx: malformed token")

// ClaimsDecoder turns a compact JWT into its claim set. Callers depend on this
// interface so a verifying implementation (JWKS from discovery, aud/iss checks)
// can replace InsecurePeek without touching them.
type ClaimsDecoder interface {
	Decode(raw string) (map[string]any, error)
}

// InsecurePeek reads the claims of a JWT WITHOUT verifying its signature,
// issuer, audience or expiry. Use it only to read hints (launch context ids)
// from a token that arrived directly from the token endpoint over TLS.
type InsecurePeek struct{}

var peekParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode implements ClaimsDecoder.
func (InsecurePeek) Decode(raw string) (map[string]any, error) {
	return PeekClaims(raw)
}

// PeekClaims decodes the payload segment of raw. Both padded and unpadded
// base64url segments are accepted. An unknown or missing "alg" header does not
// matter here since nothing is verified.
func PeekClaims(raw string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	token, _, err := peekParser.ParseUnverified(raw, claims)
	if err != nil && (token == nil || !errors.Is(err, jwt.ErrTokenUnverifiable)) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return claims, nil
}

// StringClaim returns claims[key] as a string. JSON numbers are rendered
// without a fractional part when they are integral; other types yield "".
func StringClaim(claims map[string]any, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
