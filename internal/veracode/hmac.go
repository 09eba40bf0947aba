package veracode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// HMAC signing constants. The request version string and header layout are
// part of the backend wire contract and must not change.
const (
	authScheme     = "VERACODE-HMAC-SHA-256"
	requestVersion = "vcode_request_version_1"
	nonceSize      = 16 // 128-bit nonce, hex-encoded in the header
)

// hmacSigner computes the per-request Authorization header value from an
// API key pair. The credential pair is immutable for the signer's lifetime.
//
// The signature chain is keyed-hash over keyed-hash, not a plain HMAC:
//
//	k1 = HMAC-SHA256(secret, nonce)
//	k2 = HMAC-SHA256(k1, timestampMillis)
//	k3 = HMAC-SHA256(k2, "vcode_request_version_1")
//	sig = hex(HMAC-SHA256(k3, "id=…&host=…&url=…&method=…"))
//
// A fresh nonce and timestamp are generated per request and never reused,
// so signing the same request twice yields two different header values.
type hmacSigner struct {
	keyID  string
	secret []byte

	// nonce and now are injection points for deterministic tests.
	// Production signers use crypto/rand and the wall clock.
	nonce func() ([]byte, error)
	now   func() time.Time
}

// newHMACSigner decodes the hex secret and returns a ready signer.
// Credential problems surface here, before any request is attempted.
func newHMACSigner(keyID, secretHex string) (*hmacSigner, error) {
	keyID = strings.TrimSpace(keyID)
	secretHex = strings.TrimSpace(secretHex)
	if keyID == "" || secretHex == "" {
		return nil, ErrMissingCredentials
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}

	return &hmacSigner{
		keyID:  keyID,
		secret: secret,
		nonce:  randomNonce,
		now:    time.Now,
	}, nil
}

// AuthHeader returns the Authorization header value for one request.
// urlPath is the request path including any encoded query string and must
// start with "/". host is the API hostname without scheme.
func (s *hmacSigner) AuthHeader(method, host, urlPath string) (string, error) {
	if !strings.HasPrefix(urlPath, "/") {
		return "", fmt.Errorf("request path %q must start with /", urlPath)
	}

	nonce, err := s.nonce()
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	timestamp := fmt.Sprintf("%d", s.now().UnixMilli())

	data := fmt.Sprintf("id=%s&host=%s&url=%s&method=%s",
		s.keyID, host, urlPath, strings.ToUpper(method))

	k1 := hmacSHA256(s.secret, nonce)
	k2 := hmacSHA256(k1, []byte(timestamp))
	k3 := hmacSHA256(k2, []byte(requestVersion))
	sig := hex.EncodeToString(hmacSHA256(k3, []byte(data)))

	return fmt.Sprintf("%s id=%s,ts=%s,nonce=%s,sig=%s",
		authScheme, s.keyID, timestamp, hex.EncodeToString(nonce), sig), nil
}

// hmacSHA256 computes a single HMAC-SHA256 round.
func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// randomNonce draws nonceSize bytes from crypto/rand.
func randomNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}
