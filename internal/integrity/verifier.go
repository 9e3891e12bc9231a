package integrity

import (
	"strconv"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

// Verify walks the record's events in stored order and recomputes every hash.
//
// It fails with ErrEmptyChain when there are no events, ErrHashMismatch at the
// first event whose predecessor or hash does not match, and
// ErrFinalHashMismatch when final_hash is not the hash of a closing finalize
// event.
func Verify(record models.SubmissionRecord) error {
	if len(record.Events) == 0 {
		return &IntegrityError{Kind: ErrEmptyChain}
	}

	expectedPrevious := ""
	for idx, event := range record.Events {
		if event.PreviousHash != expectedPrevious {
			return &IntegrityError{Kind: ErrHashMismatch, Index: idx, Expected: expectedPrevious, Actual: event.PreviousHash}
		}

		computed := Hash(expectedPrevious, Encode(event))
		if computed != event.Hash {
			return &IntegrityError{Kind: ErrHashMismatch, Index: idx, Expected: computed, Actual: event.Hash}
		}

		expectedPrevious = event.Hash
	}

	last := record.Events[len(record.Events)-1]
	if record.FinalHash != last.Hash {
		return &IntegrityError{Kind: ErrFinalHashMismatch, Index: len(record.Events) - 1, Expected: last.Hash, Actual: record.FinalHash}
	}
	if last.Kind != models.EventKindFinalize {
		return &IntegrityError{Kind: ErrFinalHashMismatch, Index: len(record.Events) - 1, Expected: "finalize event", Actual: string(last.Kind) + " event"}
	}

	return nil
}

// VerifyLifecycle runs Verify and then requires exactly start, answer, finalize.
func VerifyLifecycle(record models.SubmissionRecord) error {
	if err := Verify(record); err != nil {
		return err
	}

	expected := []models.EventKind{models.EventKindStart, models.EventKindAnswer, models.EventKindFinalize}
	if len(record.Events) != len(expected) {
		return &IntegrityError{Kind: ErrLifecycle, Index: len(record.Events) - 1, Expected: "3 events", Actual: strconv.Itoa(len(record.Events)) + " events"}
	}
	for idx, kind := range expected {
		if record.Events[idx].Kind != kind {
			return &IntegrityError{Kind: ErrLifecycle, Index: idx, Expected: string(kind), Actual: string(record.Events[idx].Kind)}
		}
	}

	return nil
}
