package integrity

import (
	"bytes"
	"encoding/json"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// canonicalEvent fixes the key order of the encoding. Pointer fields with
// omitempty keep an absent value distinct from an empty string.
type canonicalEvent struct {
	Timestamp    int64            `json:"t"`
	Kind         models.EventKind `json:"type"`
	QuestionID   *string          `json:"qid,omitempty"`
	Payload      *string          `json:"payload,omitempty"`
	PreviousHash string           `json:"prev"`
}

// Encode returns the canonical byte encoding of every field of the event except its hash.
func Encode(event models.Event) []byte {
	return encodeFields(event.Timestamp, event.Kind, event.QuestionID, event.Payload, event.PreviousHash)
}

func encodeFields(t int64, kind models.EventKind, qid, payload *string, prev string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Only strings and an int64 are encoded; Encode cannot fail.
	_ = enc.Encode(canonicalEvent{
		Timestamp:    t,
		Kind:         kind,
		QuestionID:   qid,
		Payload:      payload,
		PreviousHash: prev,
	})
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// unescapeLineSeparators writes U+2028 and U+2029 as raw UTF-8, the form
// stored chains were hashed with. An escaped backslash followed by "u2028"
// is literal text and stays as it is.
func unescapeLineSeparators(encoded []byte) []byte {
	if !bytes.Contains(encoded, []byte(`\u202`)) {
		return encoded
	}

	out := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		if encoded[i] != '\\' || i+1 >= len(encoded) {
			out = append(out, encoded[i])
			continue
		}
		if i+5 < len(encoded) && encoded[i+1] == 'u' {
			switch string(encoded[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, encoded[i], encoded[i+1])
		i++
	}
	return out
}
