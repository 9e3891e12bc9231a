// Package integrity builds and verifies the hash-linked event log recorded
// for every homework submission.
//
// Each event is committed with
//
//	hash = hex(sha256(prev || canonical(event)))
//
// where canonical(event) is the compact JSON object
// {"t":..,"type":..,"qid":..,"payload":..,"prev":..} with absent optional
// fields omitted. The first event chains from the empty string.
package integrity
