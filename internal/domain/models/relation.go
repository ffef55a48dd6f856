package models

import "time"

// RelationStatus represents the status of a manager-agent pairing
type RelationStatus string

const (
	RelationActive   RelationStatus = "ACTIVE"
	RelationInactive RelationStatus = "INACTIVE"
)

// AffiliateRelation is one episode of a manager supervising an agent.
// Relations are an interval log, not a mutable edge: commission attribution
// must reflect the pairing that existed at sale time, so each pairing episode
// gets its own row with an effective interval. EffectiveUntil is nil while
// the episode is open.
type AffiliateRelation struct {
	ID             string
	ManagerID      string
	AgentID        string
	Status         RelationStatus
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CoversInstant reports whether the relation interval contains the given time
func (r *AffiliateRelation) CoversInstant(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && !at.Before(*r.EffectiveUntil) {
		return false
	}
	return true
}
