package integrity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

func TestEncodeKeyOrderAndOmission(t *testing.T) {
	event := models.Event{Timestamp: 1700000000000, Kind: models.EventKindStart, Payload: strPtr("session_start")}
	require.Equal(t, `{"t":1700000000000,"type":"start","payload":"session_start","prev":""}`, string(Encode(event)))

	answer := models.Event{
		Timestamp:    1700000000001,
		Kind:         models.EventKindAnswer,
		QuestionID:   strPtr("freeform"),
		Payload:      strPtr("a < b & c"),
		PreviousHash: "abc",
		Hash:         "ignored",
	}
	require.Equal(t, `{"t":1700000000001,"type":"answer","qid":"freeform","payload":"a < b & c","prev":"abc"}`, string(Encode(answer)))
}

func TestEncodeDistinguishesAbsentFromEmpty(t *testing.T) {
	absent := models.Event{Timestamp: 1, Kind: models.EventKindFinalize}
	empty := models.Event{Timestamp: 1, Kind: models.EventKindFinalize, Payload: strPtr("")}

	require.NotEqual(t, Encode(absent), Encode(empty))
	require.NotEqual(t, Hash("", Encode(absent)), Hash("", Encode(empty)))
}

func TestEncodeIgnoresStoredHash(t *testing.T) {
	event := models.Event{Timestamp: 5, Kind: models.EventKindStart}
	tampered := event
	tampered.Hash = "deadbeef"

	require.Equal(t, Encode(event), Encode(tampered))
}

func TestEncodeWritesLineSeparatorsRaw(t *testing.T) {
	event := models.Event{
		Timestamp:    1700000000001,
		Kind:         models.EventKindAnswer,
		QuestionID:   strPtr("freeform"),
		Payload:      strPtr("tab\there \\u2028 \"q\" \u00e9\u2029\u2028"),
		PreviousHash: "d31637a33d2e82cac24af8e3bd20ca785bf335792106b113d34591c71e4bcc7c",
	}

	want := "{\"t\":1700000000001,\"type\":\"answer\",\"qid\":\"freeform\"," +
		"\"payload\":\"tab\\there \\\\u2028 \\\"q\\\" \u00e9\u2029\u2028\"," +
		"\"prev\":\"d31637a33d2e82cac24af8e3bd20ca785bf335792106b113d34591c71e4bcc7c\"}"
	require.Equal(t, want, string(Encode(event)))
}
