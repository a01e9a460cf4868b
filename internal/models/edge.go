package models

import (
	"errors"
	"time"
)

// EdgeRelation is the closed set of typed relationships between two event
// claims. Values are persisted as their string form.
type EdgeRelation string

const (
	RelationFollowUp  EdgeRelation = "follow_up"
	RelationRefutes   EdgeRelation = "refutes"
	RelationClarifies EdgeRelation = "clarifies"
	RelationRepeats   EdgeRelation = "repeats"
	RelationAction    EdgeRelation = "action"
	RelationOther     EdgeRelation = "other"
)

// AllRelations returns every known relation kind in display order
func AllRelations() []EdgeRelation {
	return []EdgeRelation{
		RelationFollowUp,
		RelationRefutes,
		RelationClarifies,
		RelationRepeats,
		RelationAction,
		RelationOther,
	}
}

var relationDescriptions = map[EdgeRelation]string{
	RelationFollowUp:  "B happens after A and references/extends A",
	RelationRefutes:   "B contradicts A",
	RelationClarifies: "B qualifies A without contradicting",
	RelationRepeats:   "B restates A",
	RelationAction:    "B is a concrete policy/action following A",
	RelationOther:     "Other relationship type",
}

// Relation kinds whose direction can be flipped without changing meaning
// enough to matter. Refutations, clarifications and actions are one-way.
var reversibleRelations = map[EdgeRelation]bool{
	RelationFollowUp: true,
	RelationRepeats:  true,
	RelationOther:    true,
}

// Known reports whether r is one of the enumerated relation kinds
func (r EdgeRelation) Known() bool {
	_, ok := relationDescriptions[r]
	return ok
}

// Description returns a human-readable description of the relation
func (r EdgeRelation) Description() string {
	if d, ok := relationDescriptions[r]; ok {
		return d
	}
	return "Unknown relationship"
}

// Reversible reports whether edges of this kind may swap direction
func (r EdgeRelation) Reversible() bool {
	return reversibleRelations[r]
}

// Edge is a directed, typed relationship between two event claims
type Edge struct {
	ID         uint         `json:"id" db:"id" gorm:"primaryKey"`
	SrcEventID uint         `json:"src_event_id" db:"src_event_id" gorm:"not null;index;uniqueIndex:uk_edge_unique_relation"`
	DstEventID uint         `json:"dst_event_id" db:"dst_event_id" gorm:"not null;index;uniqueIndex:uk_edge_unique_relation"`
	Relation   EdgeRelation `json:"relation" db:"relation" gorm:"size:20;not null;index;uniqueIndex:uk_edge_unique_relation"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	SourceEvent EventClaim `json:"source_event,omitempty" gorm:"foreignKey:SrcEventID;references:ID"`
	TargetEvent EventClaim `json:"target_event,omitempty" gorm:"foreignKey:DstEventID;references:ID"`
}

// TableName sets the table name for the Edge model
func (Edge) TableName() string {
	return "edges"
}

// IsValid reports whether the edge has been persisted
func (e *Edge) IsValid() bool {
	return e.ID != 0
}

// Validate returns every violated constraint as a human-readable message
func (e *Edge) Validate() []string {
	var errs []string

	if e.SrcEventID != 0 && e.SrcEventID == e.DstEventID {
		errs = append(errs, "Event cannot be related to itself")
	}
	if e.SrcEventID == 0 || e.DstEventID == 0 {
		errs = append(errs, "Both source and destination events are required")
	}
	if e.Relation == "" {
		errs = append(errs, "Relationship type is required")
	} else if !e.Relation.Known() {
		errs = append(errs, "Unknown relationship type")
	}

	return errs
}

// ErrNotReversible is returned by Reverse for one-way relation kinds
var ErrNotReversible = errors.New("this relationship type cannot be reversed")

// Reverse swaps the edge's direction in place. One-way relation kinds are
// rejected and the edge is left unchanged.
func (e *Edge) Reverse() error {
	if !e.Relation.Reversible() {
		return ErrNotReversible
	}
	e.SrcEventID, e.DstEventID = e.DstEventID, e.SrcEventID
	return nil
}
