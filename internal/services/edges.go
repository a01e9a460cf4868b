package services

import (
	"fmt"
	"log"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// EdgesService manages typed relationships between event claims
type EdgesService struct {
	db *gorm.DB
}

// NewEdgesService creates a new EdgesService
func NewEdgesService(db *gorm.DB) *EdgesService {
	return &EdgesService{db: db}
}

// CreateRelationship connects two event claims with a typed edge. When the
// pair cannot be connected it returns a human-readable reason and touches
// no storage.
func (s *EdgesService) CreateRelationship(src, dst *models.EventClaim, relation models.EdgeRelation) (*models.Edge, string, error) {
	if ok, reason := src.CanConnectTo(dst); !ok {
		return nil, reason, nil
	}

	var count int64
	err := s.db.Model(&models.Edge{}).
		Where("(src_event_id = ? AND dst_event_id = ?) OR (src_event_id = ? AND dst_event_id = ?)",
			src.ID, dst.ID, dst.ID, src.ID).
		Count(&count).Error
	if err != nil {
		log.Printf("Database error checking existing edges between %d and %d: %v", src.ID, dst.ID, err)
		return nil, "", fmt.Errorf("failed to check existing relationships: %w", err)
	}
	if count > 0 {
		return nil, "These events are already connected", nil
	}

	edge := &models.Edge{
		SrcEventID: src.ID,
		DstEventID: dst.ID,
		Relation:   relation,
	}
	if violations := edge.Validate(); len(violations) > 0 {
		return nil, "", NewValidationError(violations)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(edge).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, "These events are already connected", nil
		}
		log.Printf("Database error creating edge %d -> %d: %v", src.ID, dst.ID, err)
		return nil, "", fmt.Errorf("failed to create relationship: %w", err)
	}
	return edge, "", nil
}

// Reverse swaps the direction of a persisted edge. One-way relation kinds
// return models.ErrNotReversible and the stored edge is unchanged.
func (s *EdgesService) Reverse(edge *models.Edge) error {
	if err := edge.Reverse(); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(edge).Updates(map[string]interface{}{
			"src_event_id": edge.SrcEventID,
			"dst_event_id": edge.DstEventID,
		}).Error
	})
	if err != nil {
		// Restore the in-memory direction so the caller's view matches
		// storage
		edge.SrcEventID, edge.DstEventID = edge.DstEventID, edge.SrcEventID
		log.Printf("Database error reversing edge %d: %v", edge.ID, err)
		return fmt.Errorf("failed to reverse relationship: %w", err)
	}
	return nil
}

// Delete removes an edge
func (s *EdgesService) Delete(edge *models.Edge) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(edge).Error
	})
	if err != nil {
		log.Printf("Database error deleting edge %d: %v", edge.ID, err)
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	return nil
}

// FindByID finds an edge by id, returning (nil, nil) on a miss
func (s *EdgesService) FindByID(id uint) (*models.Edge, error) {
	var edge models.Edge
	if err := s.db.First(&edge, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding edge %d: %v", id, err)
		return nil, err
	}
	return &edge, nil
}

// FindBySource returns the edges leaving an event
func (s *EdgesService) FindBySource(eventID uint) []models.Edge {
	var edges []models.Edge
	if err := s.db.Where("src_event_id = ?", eventID).Find(&edges).Error; err != nil {
		log.Printf("Database error finding edges by source %d: %v", eventID, err)
		return nil
	}
	return edges
}

// FindByTarget returns the edges arriving at an event
func (s *EdgesService) FindByTarget(eventID uint) []models.Edge {
	var edges []models.Edge
	if err := s.db.Where("dst_event_id = ?", eventID).Find(&edges).Error; err != nil {
		log.Printf("Database error finding edges by target %d: %v", eventID, err)
		return nil
	}
	return edges
}

// FindByEvent returns every edge touching an event in either direction
func (s *EdgesService) FindByEvent(eventID uint) []models.Edge {
	var edges []models.Edge
	err := s.db.Where("src_event_id = ? OR dst_event_id = ?", eventID, eventID).Find(&edges).Error
	if err != nil {
		log.Printf("Database error finding edges for event %d: %v", eventID, err)
		return nil
	}
	return edges
}

// FindByRelation returns every edge of one relation kind
func (s *EdgesService) FindByRelation(relation models.EdgeRelation) []models.Edge {
	var edges []models.Edge
	if err := s.db.Where("relation = ?", relation).Find(&edges).Error; err != nil {
		log.Printf("Database error finding edges by relation %s: %v", relation, err)
		return nil
	}
	return edges
}

// FindBetween returns the edges connecting two events in either direction
func (s *EdgesService) FindBetween(eventA, eventB uint) []models.Edge {
	var edges []models.Edge
	err := s.db.Where("(src_event_id = ? AND dst_event_id = ?) OR (src_event_id = ? AND dst_event_id = ?)",
		eventA, eventB, eventB, eventA).
		Find(&edges).Error
	if err != nil {
		log.Printf("Database error finding edges between %d and %d: %v", eventA, eventB, err)
		return nil
	}
	return edges
}

// RelationStats returns the edge count per relation kind, degrading to an
// empty map on storage failure
func (s *EdgesService) RelationStats() map[models.EdgeRelation]int64 {
	stats := make(map[models.EdgeRelation]int64)

	type row struct {
		Relation models.EdgeRelation
		Count    int64
	}
	var rows []row
	err := s.db.Model(&models.Edge{}).
		Select("relation, COUNT(*) as count").
		Group("relation").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Database error computing relation stats: %v", err)
		return stats
	}
	for _, r := range rows {
		stats[r.Relation] = r.Count
	}
	return stats
}
