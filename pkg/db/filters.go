package db

import "github.com/jakechorley/volunteer-hub/pkg/core/model"

// EventFilter narrows ListEvents. Zero fields match everything.
type EventFilter struct {
	OrganizerEmail string
	// FromDate (YYYY-MM-DD) keeps events on or after that day
	FromDate string
}

// JoinEventFilter narrows QueryJoinEvents. Zero fields match everything.
type JoinEventFilter struct {
	EmailAddress string
	EventID      string
	// Status matches the canonical value and its legacy spelling
	Status model.Status
	// WithoutEventID selects legacy records that carry no event back-reference
	WithoutEventID bool
}

// StatusSpellings returns every stored spelling of a canonical status
func StatusSpellings(s model.Status) []string {
	switch s.Normalized() {
	case model.StatusPending:
		return []string{string(model.StatusPending), "pendding"}
	case model.StatusAccepted:
		return []string{string(model.StatusAccepted), "accept"}
	case model.StatusRejected:
		return []string{string(model.StatusRejected), "reject"}
	}
	return []string{string(s)}
}
