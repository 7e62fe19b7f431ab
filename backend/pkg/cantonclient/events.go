package cantonclient

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ExerciseResult carries the choice's declared result plus the ledger
// events produced by executing it.
type ExerciseResult struct {
	ExerciseResult json.RawMessage `json:"exerciseResult"`
	Events         []Event         `json:"events"`
}

// Event groups the contract deltas of one transaction step.
type Event struct {
	Created  []CreatedEvent  `json:"created,omitempty"`
	Archived []ArchivedEvent `json:"archived,omitempty"`
}

// CreatedEvent is a contract brought into existence by a choice.
type CreatedEvent struct {
	ContractID string          `json:"contractId"`
	Payload    json.RawMessage `json:"payload"`
}

// ArchivedEvent is a contract retired by a choice.
type ArchivedEvent struct {
	ContractID string `json:"contractId"`
}

// ResultField reads a single field out of the choice's declared result,
// e.g. "_1" for the first slot of a tuple-shaped result.
func (r *ExerciseResult) ResultField(field string) string {
	return gjson.GetBytes(r.ExerciseResult, field).String()
}

// FirstCreatedWithField scans the created events for the first contract
// whose payload carries the given field. The boolean is the explicit
// nothing-matched outcome: callers must treat false as soft
// incompleteness, not as success.
func (r *ExerciseResult) FirstCreatedWithField(field string) (CreatedEvent, bool) {
	for _, ev := range r.Events {
		for _, created := range ev.Created {
			if gjson.GetBytes(created.Payload, field).Exists() {
				return created, true
			}
		}
	}
	return CreatedEvent{}, false
}

// FirstCreatedWhere scans the created events for the first contract
// whose payload field equals the given value. Used when one choice can
// create more than one contract shape carrying the same field.
func (r *ExerciseResult) FirstCreatedWhere(field, value string) (CreatedEvent, bool) {
	for _, ev := range r.Events {
		for _, created := range ev.Created {
			if gjson.GetBytes(created.Payload, field).String() == value {
				return created, true
			}
		}
	}
	return CreatedEvent{}, false
}
