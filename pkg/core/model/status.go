package model

import (
	"fmt"
	"strings"
)

// Status is the attendance state of a JoinEvent
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts the canonical values as well as the legacy spellings
// ("pendding", "accept", "reject") still present on older records
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "pendding":
		return StatusPending, true
	case "accepted", "accept":
		return StatusAccepted, true
	case "rejected", "reject":
		return StatusRejected, true
	}
	return "", false
}

// Normalized maps legacy spellings onto the canonical status; unknown values are returned unchanged
func (s Status) Normalized() Status {
	if parsed, ok := ParseStatus(string(s)); ok {
		return parsed
	}
	return s
}

// IsTerminal reports whether no further transition is allowed out of s
func (s Status) IsTerminal() bool {
	n := s.Normalized()
	return n == StatusAccepted || n == StatusRejected
}

// Decision is an organizer's verdict on a pending join request
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision parses "accept" or "reject" (case-insensitive)
func ParseDecision(raw string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accept", "accepted", "confirm":
		return DecisionAccept, true
	case "reject", "rejected", "absent":
		return DecisionReject, true
	}
	return "", false
}

func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// Target returns the status a decision moves a pending record into
func (d Decision) Target() Status {
	if d == DecisionAccept {
		return StatusAccepted
	}
	return StatusRejected
}

// ApplyDecision runs one step of the attendance state machine.
//
//   - pending -> target: changed
//   - target -> target: unchanged, no error (a retried decision)
//   - other terminal state: *ConflictError
func ApplyDecision(joinEventID string, current Status, d Decision) (next Status, changed bool, err error) {
	if !d.Valid() {
		return current, false, fmt.Errorf("unknown decision %q: %w", d, ErrValidation)
	}
	target := d.Target()
	switch cur := current.Normalized(); {
	case cur == StatusPending:
		return target, true, nil
	case cur == target:
		return cur, false, nil
	case cur.IsTerminal():
		return cur, false, &ConflictError{JoinEventID: joinEventID, Current: cur, Requested: target}
	default:
		return cur, false, &ConflictError{JoinEventID: joinEventID, Current: current, Requested: target}
	}
}
