package models

import "errors"

var ErrNoReviewTarget = errors.New("review must reference an event, a merch item, or both")

// ReviewTarget is the application-level view of the review's nullable FK
// pair. The database keeps the pair plus a table check; this type rejects
// the no-target case before the insert even reaches the engine.
type ReviewTarget struct {
	EventID *uint
	MerchID *uint
}

func (t ReviewTarget) Validate() error {
	if t.EventID == nil && t.MerchID == nil {
		return ErrNoReviewTarget
	}
	return nil
}
