package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader  = "Stripe-Signature"
	DefaultTolerance = 5 * time.Minute
	signatureScheme  = "v1"
)

var (
	ErrMissingSignature = errors.New("webhooks: signature is required")
	ErrMissingSecret    = errors.New("webhooks: signature secret is required")
	ErrMalformedHeader  = errors.New("webhooks: malformed signature header")
	ErrSignatureInvalid = errors.New("webhooks: signature verification failed")
	ErrOutsideTolerance = errors.New("webhooks: timestamp outside tolerance window")
)

// SignedHeader is the parsed form of a signature header.
type SignedHeader struct {
	Timestamp  time.Time
	Signatures [][]byte
}

func ParseSignedHeader(header string) (SignedHeader, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return SignedHeader{}, ErrMissingSignature
	}
	parsed := SignedHeader{}
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			unix, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return SignedHeader{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedHeader, err)
			}
			parsed.Timestamp = time.Unix(unix, 0).UTC()
		case signatureScheme:
			decoded, err := hex.DecodeString(strings.TrimSpace(value))
			if err != nil {
				continue
			}
			parsed.Signatures = append(parsed.Signatures, decoded)
		}
	}
	if parsed.Timestamp.IsZero() {
		return SignedHeader{}, fmt.Errorf("%w: timestamp is required", ErrMalformedHeader)
	}
	if len(parsed.Signatures) == 0 {
		return SignedHeader{}, fmt.Errorf("%w: no %s signature", ErrMalformedHeader, signatureScheme)
	}
	return parsed, nil
}

type SignatureVerifier struct {
	Secret    string
	Tolerance time.Duration
	Now       func() time.Time
}

func NewSignatureVerifier(secret string) SignatureVerifier {
	return SignatureVerifier{
		Secret:    strings.TrimSpace(secret),
		Tolerance: DefaultTolerance,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (v SignatureVerifier) Verify(payload []byte, header string) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return ErrMissingSecret
	}
	signed, err := ParseSignedHeader(header)
	if err != nil {
		return err
	}

	expected := computeSignature(secret, signed.Timestamp, payload)
	matched := false
	for _, candidate := range signed.Signatures {
		if subtle.ConstantTimeCompare(candidate, expected) == 1 {
			matched = true
			break
		}
	}
	if !matched {
		return ErrSignatureInvalid
	}

	now := time.Now().UTC()
	if v.Now != nil {
		now = v.Now().UTC()
	}
	window := v.Tolerance
	if window <= 0 {
		window = DefaultTolerance
	}
	delta := now.Sub(signed.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	if delta > window {
		return ErrOutsideTolerance
	}
	return nil
}

// Sign produces a header value for payload, used by demo tooling and tests.
func Sign(secret string, payload []byte, at time.Time) string {
	at = at.UTC().Truncate(time.Second)
	signature := computeSignature(strings.TrimSpace(secret), at, payload)
	return fmt.Sprintf("t=%d,%s=%s", at.Unix(), signatureScheme, hex.EncodeToString(signature))
}

func computeSignature(secret string, at time.Time, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(at.Unix(), 10)))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}
