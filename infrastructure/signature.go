// infrastructure/signature.go
package infrastructure

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clipstack/video-hosting-service/domain"
)

// signatureTolerance bounds how stale a signed timestamp may be. Matches
// the provider's documented default.
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a "t=<unix>,v1=<hex>" signature header
// against the raw, unmodified request body. The HMAC-SHA256 is computed
// over "<t>.<body>" with the shared secret. Re-serializing the body before
// calling this breaks verification.
func VerifyWebhookSignature(rawBody []byte, header, secret string, now time.Time) error {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	issued := time.Unix(timestamp, 0)
	if now.Sub(issued) > signatureTolerance || issued.Sub(now) > signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", domain.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	given, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, given) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// SignWebhookBody produces the header value the verifier accepts. Used by
// tests and by local delivery tooling.
func SignWebhookBody(rawBody []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (timestamp int64, signature string, err error) {
	var hasTimestamp bool
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", domain.ErrInvalidSignature)
			}
			hasTimestamp = true
		case "v1":
			signature = value
		}
	}
	if !hasTimestamp || signature == "" {
		return 0, "", fmt.Errorf("%w: malformed header", domain.ErrInvalidSignature)
	}
	return timestamp, signature, nil
}
