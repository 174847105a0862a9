package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"threadkart/internal/model"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "Webhook-Signature"

// DefaultTolerance bounds how stale a signed webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID        string `json:"id"`
			SessionID string `json:"session_id"`
		} `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the signature over the raw payload and parses the
// event. The header has the form "t=<unix>,v1=<hex>" where v1 is
// HMAC-SHA256(secret, "<unix>.<payload>"). Verification happens before any
// payload parsing; a failed check returns ErrInvalidSignature with no side
// effects.
func ConstructEvent(payload []byte, sigHeader, secret string) (*Event, error) {
	return constructEventAt(payload, sigHeader, secret, time.Now(), DefaultTolerance)
}

func constructEventAt(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, model.ErrInvalidSignature
	}

	if now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return nil, model.ErrInvalidSignature
	}

	expected := computeSignature(timestamp, payload, secret)

	valid := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			valid = true
			break
		}
	}

	if !valid {
		return nil, model.ErrInvalidSignature
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	sessionRef := envelope.Data.Object.SessionID
	if sessionRef == "" {
		sessionRef = envelope.Data.Object.ID
	}

	return &Event{
		ID:         envelope.ID,
		Type:       envelope.Type,
		SessionRef: sessionRef,
	}, nil
}

// Sign produces a signature header for a payload. Used by tests and by
// local provider simulators.
func Sign(payload []byte, secret string, at time.Time) string {
	timestamp := at.Unix()
	sig := computeSignature(timestamp, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(sig))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return 0, nil, fmt.Errorf("malformed signature header")
		}

		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("incomplete signature header")
	}

	return timestamp, signatures, nil
}
