package services

import (
	"fmt"
	"log"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// EventsService manages event claims, their story evidence and the graph
// relationships between them
type EventsService struct {
	db *gorm.DB
}

// NewEventsService creates a new EventsService
func NewEventsService(db *gorm.DB) *EventsService {
	return &EventsService{db: db}
}

// EventUpdate enumerates the mutable fields of an event claim. Nil fields
// are left unchanged.
type EventUpdate struct {
	ClaimText      *string
	EventDate      *time.Time
	Importance     *int
	StoryPrimaryID *uint
}

// RelatedEvent is an event reached by traversing one edge from a source
// event, with the relation label and traversal direction.
type RelatedEvent struct {
	Event     models.EventClaim   `json:"event"`
	Relation  models.EdgeRelation `json:"relation"`
	Direction string              `json:"direction"` // "outgoing" or "incoming"
}

// EventStoryStats summarizes an event's story evidence
type EventStoryStats struct {
	TotalStories int64 `json:"total_stories"`
	HasPrimary   bool  `json:"has_primary"`
}

// Create persists a new event claim under a topic
func (s *EventsService) Create(topicID uint, claimText string, eventDate time.Time, importance *int, storyPrimaryID *uint) (*models.EventClaim, error) {
	event := &models.EventClaim{
		TopicID:        topicID,
		ClaimText:      claimText,
		EventDate:      eventDate,
		Importance:     importance,
		StoryPrimaryID: storyPrimaryID,
	}

	if violations := event.Validate(); len(violations) > 0 {
		return nil, NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		log.Printf("Database error creating event claim: %v", err)
		return nil, fmt.Errorf("failed to create event claim: %w", err)
	}
	return event, nil
}

// Update applies the set fields of upd and persists the result
func (s *EventsService) Update(event *models.EventClaim, upd EventUpdate) error {
	if upd.ClaimText != nil {
		event.ClaimText = *upd.ClaimText
	}
	if upd.EventDate != nil {
		event.EventDate = *upd.EventDate
	}
	if upd.Importance != nil {
		event.Importance = upd.Importance
	}
	if upd.StoryPrimaryID != nil {
		event.StoryPrimaryID = upd.StoryPrimaryID
	}

	if violations := event.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(event).Error
	})
	if err != nil {
		log.Printf("Database error updating event claim %d: %v", event.ID, err)
		return fmt.Errorf("failed to update event claim: %w", err)
	}
	return nil
}

// Delete removes an event claim together with its edges, story links and
// thread memberships
func (s *EventsService) Delete(event *models.EventClaim) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("src_event_id = ? OR dst_event_id = ?", event.ID, event.ID).Delete(&models.Edge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventStoryLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.ThreadEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
	if err != nil {
		log.Printf("Database error deleting event claim %d: %v", event.ID, err)
		return fmt.Errorf("failed to delete event claim: %w", err)
	}
	return nil
}

// FindByID finds an event claim by id, returning (nil, nil) on a miss
func (s *EventsService) FindByID(id uint) (*models.EventClaim, error) {
	var event models.EventClaim
	if err := s.db.First(&event, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding event claim %d: %v", id, err)
		return nil, err
	}
	return &event, nil
}

// FindByTopic returns the topic's events in chronological order
func (s *EventsService) FindByTopic(topicID uint) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ?", topicID).Order("event_date ASC").Find(&events).Error
	if err != nil {
		log.Printf("Database error finding events by topic %d: %v", topicID, err)
		return nil
	}
	return events
}

// FindByThread returns the thread's events in chronological order
func (s *EventsService) FindByThread(threadID uint) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Joins("JOIN thread_events ON thread_events.event_id = event_claims.id").
		Where("thread_events.thread_id = ?", threadID).
		Order("event_claims.event_date ASC").
		Find(&events).Error
	if err != nil {
		log.Printf("Database error finding events by thread %d: %v", threadID, err)
		return nil
	}
	return events
}

// FindByDateRange returns a topic's events with event dates inside the
// inclusive range
func (s *EventsService) FindByDateRange(topicID uint, from, to time.Time) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ? AND event_date >= ? AND event_date <= ?", topicID, from, to).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		log.Printf("Database error finding events by date range: %v", err)
		return nil
	}
	return events
}

// FindByImportance returns a topic's events at or above the given
// importance, most important first
func (s *EventsService) FindByImportance(topicID uint, minImportance int) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ? AND importance >= ?", topicID, minImportance).
		Order("importance DESC, event_date ASC").
		Find(&events).Error
	if err != nil {
		log.Printf("Database error finding events by importance: %v", err)
		return nil
	}
	return events
}

// FindUnsorted returns a topic's events that belong to no thread
func (s *EventsService) FindUnsorted(topicID uint) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ?", topicID).
		Where("id NOT IN (?)", s.db.Model(&models.ThreadEvent{}).Select("event_id")).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		log.Printf("Database error finding unsorted events for topic %d: %v", topicID, err)
		return nil
	}
	return events
}

// AddStory links a story to the event as supporting evidence. Linking a
// story twice is a no-op success.
func (s *EventsService) AddStory(event *models.EventClaim, storyID uint, note string) (bool, error) {
	var existing models.EventStoryLink
	err := s.db.Where("event_id = ? AND story_id = ?", event.ID, storyID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}

	link := models.EventStoryLink{EventID: event.ID, StoryID: storyID, Note: note}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&link).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		log.Printf("Database error linking story %d to event %d: %v", storyID, event.ID, err)
		return false, fmt.Errorf("failed to link story to event: %w", err)
	}
	return true, nil
}

// RemoveStory unlinks a story from the event. Removing an absent link
// succeeds with removed == false.
func (s *EventsService) RemoveStory(event *models.EventClaim, storyID uint) (bool, error) {
	res := s.db.Where("event_id = ? AND story_id = ?", event.ID, storyID).Delete(&models.EventStoryLink{})
	if res.Error != nil {
		log.Printf("Database error unlinking story %d from event %d: %v", storyID, event.ID, res.Error)
		return false, fmt.Errorf("failed to unlink story from event: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AllStories returns the event's primary story followed by its linked
// stories, deduplicated
func (s *EventsService) AllStories(event *models.EventClaim) []models.Story {
	var stories []models.Story
	seen := make(map[uint]bool)

	if event.StoryPrimaryID != nil {
		var primary models.Story
		err := s.db.First(&primary, *event.StoryPrimaryID).Error
		if err == nil {
			stories = append(stories, primary)
			seen[primary.ID] = true
		} else if !isNotFound(err) {
			log.Printf("Database error loading primary story for event %d: %v", event.ID, err)
		}
	}

	var linked []models.Story
	err := s.db.Joins("JOIN event_story_links ON event_story_links.story_id = stories.id").
		Where("event_story_links.event_id = ?", event.ID).
		Find(&linked).Error
	if err != nil {
		log.Printf("Database error loading linked stories for event %d: %v", event.ID, err)
		return stories
	}
	for _, story := range linked {
		if !seen[story.ID] {
			stories = append(stories, story)
			seen[story.ID] = true
		}
	}
	return stories
}

// RelatedEvents returns the events connected to eventID by one edge in
// either direction. A non-nil relation restricts the traversal to that
// relation type. Storage errors degrade to an empty result.
func (s *EventsService) RelatedEvents(eventID uint, relation *models.EdgeRelation) []RelatedEvent {
	var related []RelatedEvent

	outgoing := s.db.Where("src_event_id = ?", eventID)
	incoming := s.db.Where("dst_event_id = ?", eventID)
	if relation != nil {
		outgoing = outgoing.Where("relation = ?", *relation)
		incoming = incoming.Where("relation = ?", *relation)
	}

	var outEdges []models.Edge
	if err := outgoing.Find(&outEdges).Error; err != nil {
		log.Printf("Database error loading outgoing edges for event %d: %v", eventID, err)
		return nil
	}
	var inEdges []models.Edge
	if err := incoming.Find(&inEdges).Error; err != nil {
		log.Printf("Database error loading incoming edges for event %d: %v", eventID, err)
		return nil
	}

	for _, edge := range outEdges {
		var event models.EventClaim
		if err := s.db.First(&event, edge.DstEventID).Error; err != nil {
			log.Printf("Database error loading related event %d: %v", edge.DstEventID, err)
			continue
		}
		related = append(related, RelatedEvent{Event: event, Relation: edge.Relation, Direction: "outgoing"})
	}
	for _, edge := range inEdges {
		var event models.EventClaim
		if err := s.db.First(&event, edge.SrcEventID).Error; err != nil {
			log.Printf("Database error loading related event %d: %v", edge.SrcEventID, err)
			continue
		}
		related = append(related, RelatedEvent{Event: event, Relation: edge.Relation, Direction: "incoming"})
	}
	return related
}

// StoryStats summarizes an event's evidence, degrading to zeroes on
// storage failure
func (s *EventsService) StoryStats(event *models.EventClaim) EventStoryStats {
	stats := EventStoryStats{HasPrimary: event.StoryPrimaryID != nil}

	var count int64
	err := s.db.Model(&models.EventStoryLink{}).Where("event_id = ?", event.ID).Count(&count).Error
	if err != nil {
		log.Printf("Database error counting stories for event %d: %v", event.ID, err)
		return stats
	}
	stats.TotalStories = count
	if stats.HasPrimary {
		var linked int64
		s.db.Model(&models.EventStoryLink{}).
			Where("event_id = ? AND story_id = ?", event.ID, *event.StoryPrimaryID).
			Count(&linked)
		if linked == 0 {
			stats.TotalStories++
		}
	}
	return stats
}
