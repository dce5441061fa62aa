package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for token verification; the auth service maps them to its
// own taxonomy before they reach any caller.
var (
	// ErrMalformedToken is returned when a token does not have three
	// base64url segments or its payload cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not match.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the token payload. Issue always sets iat, exp, and a random jti.
type Claims map[string]any

// Subject returns the "sub" claim as an integer subject id.
func (c Claims) Subject() (int64, bool) {
	return claimInt(c, "sub")
}

// Expiry returns the "exp" claim in unix seconds.
func (c Claims) Expiry() (int64, bool) {
	return claimInt(c, "exp")
}

func claimInt(c Claims, key string) (int64, bool) {
	switch v := c[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// tokenHeader is the fixed JWT header. The algorithm is not negotiable:
// verification always recomputes HMAC-SHA256 regardless of what a
// presented token's header says, which closes the algorithm-confusion
// class of forgeries.
type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Codec issues and verifies compact HS256 bearer tokens:
// base64url(header).base64url(payload).base64url(HMAC-SHA256(secret, header.payload)),
// base64url without padding. Timestamps are integer unix seconds with no
// clock-skew leeway.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret. now is the clock used for
// iat/exp; nil means time.Now.
func NewCodec(secret []byte, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: secret, now: now}
}

var (
	b64 = base64.RawURLEncoding
	// Decoding is strict so trailing-bit variants of a segment are rejected
	// rather than silently canonicalized; a token differing in any byte
	// from the issued one must not verify.
	b64strict = base64.RawURLEncoding.Strict()
)

// Issue builds and signs a token carrying claims, valid for ttl from now.
// The payload is claims extended with iat, exp, and a random jti; the
// caller's map is not modified.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	iat := c.now().Unix()
	payload := make(Claims, len(claims)+3)
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = iat
	payload["exp"] = iat + int64(ttl/time.Second)
	payload["jti"] = uuid.NewString()

	headerJSON, err := json.Marshal(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	signingInput := b64.EncodeToString(headerJSON) + "." + b64.EncodeToString(payloadJSON)
	return signingInput + "." + b64.EncodeToString(c.sign(signingInput)), nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Fails with ErrMalformedToken, ErrInvalidSignature, or ErrTokenExpired.
// Every authorization decision must go through Verify, never Decode.
func (c *Codec) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	sig, err := b64strict.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}
	if !hmac.Equal(sig, c.sign(parts[0]+"."+parts[1])) {
		return nil, ErrInvalidSignature
	}
	claims, err := decodeSegment(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	exp, ok := claims.Expiry()
	if !ok || exp < c.now().Unix() {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// Decode returns the payload without checking signature or expiry. It exists
// for diagnostics (log enrichment, support tooling) only and grants nothing.
func (c *Codec) Decode(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	claims, err := decodeSegment(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func (c *Codec) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func decodeSegment(seg string) (Claims, error) {
	raw, err := b64strict.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}
