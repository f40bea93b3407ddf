// Package token decodes bearer tokens and keeps the current one in local
// storage. Signatures are never verified here; the backend is authoritative.
package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rescue-console/internal/model"
)

var ErrMalformed = errors.New("malformed token")

// Claims is the subset of the payload the console acts on.
type Claims struct {
	ExpiresAt time.Time
	HasExpiry bool
	Role      model.Role
	UserID    string
}

// ExpiredAt reports whether the token is no longer valid at now. A token
// without an exp claim counts as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c == nil || !c.HasExpiry {
		return true
	}
	return c.ExpiresAt.Unix() <= now.Unix()
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts claims from the payload segment of a
// header.payload.signature token. Header and signature are ignored. Any
// structural problem yields an error wrapping ErrMalformed.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected three segments, got %d", ErrMalformed, len(parts))
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding: %v", ErrMalformed, err)
	}

	mapClaims := jwt.MapClaims{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&mapClaims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", ErrMalformed, err)
	}

	out := &Claims{}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp: %v", ErrMalformed, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
		out.HasExpiry = true
	}

	if role, ok := mapClaims["role"].(string); ok {
		out.Role = model.Role(strings.TrimSpace(role))
	}

	out.UserID = stringifyID(mapClaims["id"])

	return out, nil
}

func stringifyID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(id)
	default:
		return fmt.Sprint(id)
	}
}
