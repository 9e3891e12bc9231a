package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// Hash chains the canonical encoding of an event onto the previous hash.
// An empty previous hash is hashed like any other value.
func Hash(previousHash string, canonical []byte) string {
	digest := sha256.New()
	digest.Write([]byte(previousHash))
	digest.Write(canonical)
	return hex.EncodeToString(digest.Sum(nil))
}

// Seal builds an event and computes its hash. Payload text is coerced to
// valid UTF-8 first so the stored event re-encodes to the same bytes after a
// JSON round trip.
func Seal(previousHash string, t int64, kind models.EventKind, questionID, payload *string) models.Event {
	event := models.Event{
		Timestamp:    t,
		Kind:         kind,
		QuestionID:   validUTF8(questionID),
		Payload:      validUTF8(payload),
		PreviousHash: previousHash,
	}
	event.Hash = Hash(previousHash, Encode(event))
	return event
}

// IsHexDigest reports whether value looks like a lowercase hex SHA-256 digest.
func IsHexDigest(value string) bool {
	if len(value) != sha256.Size*2 {
		return false
	}
	return strings.Trim(value, "0123456789abcdef") == ""
}

func validUTF8(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := strings.ToValidUTF8(*value, "�")
	return &cleaned
}
