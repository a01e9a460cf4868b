package services

import (
	"fmt"
	"log"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// TopicsService manages top-level topics and their aggregate views
type TopicsService struct {
	db *gorm.DB
}

// NewTopicsService creates a new TopicsService
func NewTopicsService(db *gorm.DB) *TopicsService {
	return &TopicsService{db: db}
}

// TopicUpdate enumerates the mutable fields of a topic. Nil fields are left
// unchanged.
type TopicUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// Create persists a new topic
func (s *TopicsService) Create(name, description, color string) (*models.Topic, error) {
	topic := &models.Topic{
		Name:        name,
		Description: description,
		Color:       color,
	}

	if violations := topic.Validate(); len(violations) > 0 {
		return nil, NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(topic).Error
	})
	if err != nil {
		log.Printf("Database error creating topic %s: %v", name, err)
		if isDuplicate(err) {
			return nil, fmt.Errorf("topic name already exists")
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	return topic, nil
}

// Update applies the set fields of upd and persists the result
func (s *TopicsService) Update(topic *models.Topic, upd TopicUpdate) error {
	if upd.Name != nil {
		topic.Name = *upd.Name
	}
	if upd.Description != nil {
		topic.Description = *upd.Description
	}
	if upd.Color != nil {
		topic.Color = *upd.Color
	}

	if violations := topic.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(topic).Error
	})
	if err != nil {
		log.Printf("Database error updating topic %d: %v", topic.ID, err)
		if isDuplicate(err) {
			return fmt.Errorf("topic name already exists")
		}
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return nil
}

// Delete removes a topic
func (s *TopicsService) Delete(topic *models.Topic) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(topic).Error
	})
	if err != nil {
		log.Printf("Database error deleting topic %d: %v", topic.ID, err)
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return nil
}

// FindByID finds a topic by id, returning (nil, nil) on a miss
func (s *TopicsService) FindByID(id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.First(&topic, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding topic %d: %v", id, err)
		return nil, err
	}
	return &topic, nil
}

// FindByName finds a topic by exact name, returning (nil, nil) on a miss
func (s *TopicsService) FindByName(name string) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.Where("name = ?", name).First(&topic).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding topic by name %s: %v", name, err)
		return nil, err
	}
	return &topic, nil
}

// FindOrCreate finds a topic by name or creates it with empty description
// and color
func (s *TopicsService) FindOrCreate(name string) (*models.Topic, error) {
	topic, err := s.FindByName(name)
	if err != nil {
		return nil, err
	}
	if topic != nil {
		return topic, nil
	}
	return s.Create(name, "", "")
}

// SearchByName returns topics whose name matches the term, case-insensitive.
// Storage errors degrade to an empty list.
func (s *TopicsService) SearchByName(term string) []models.Topic {
	var topics []models.Topic
	err := s.db.Where("name ILIKE ?", "%"+term+"%").Find(&topics).Error
	if err != nil {
		log.Printf("Database error searching topics by name %s: %v", term, err)
		return nil
	}
	return topics
}

// AllOrdered returns every topic ordered by name
func (s *TopicsService) AllOrdered() []models.Topic {
	var topics []models.Topic
	if err := s.db.Order("name ASC").Find(&topics).Error; err != nil {
		log.Printf("Database error getting all topics: %v", err)
		return nil
	}
	return topics
}

// ThreadCount returns the number of threads owned by the topic, zero on
// storage failure
func (s *TopicsService) ThreadCount(topicID uint) int64 {
	var count int64
	err := s.db.Model(&models.Thread{}).Where("topic_id = ?", topicID).Count(&count).Error
	if err != nil {
		log.Printf("Database error counting threads for topic %d: %v", topicID, err)
		return 0
	}
	return count
}

// EventCount returns the number of events in the topic, zero on storage
// failure
func (s *TopicsService) EventCount(topicID uint) int64 {
	var count int64
	err := s.db.Model(&models.EventClaim{}).Where("topic_id = ?", topicID).Count(&count).Error
	if err != nil {
		log.Printf("Database error counting events for topic %d: %v", topicID, err)
		return 0
	}
	return count
}

// UnsortedEvents returns the topic's events that belong to no thread
func (s *TopicsService) UnsortedEvents(topicID uint) []models.EventClaim {
	var events []models.EventClaim
	sub := s.db.Model(&models.ThreadEvent{}).Select("event_id")
	err := s.db.Where("topic_id = ? AND id NOT IN (?)", topicID, sub).Find(&events).Error
	if err != nil {
		log.Printf("Database error finding unsorted events for topic %d: %v", topicID, err)
		return nil
	}
	return events
}

// EventsByDate returns the topic's events in chronological order
func (s *TopicsService) EventsByDate(topicID uint) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ?", topicID).Order("event_date ASC").Find(&events).Error
	if err != nil {
		log.Printf("Database error loading events by date for topic %d: %v", topicID, err)
		return nil
	}
	return events
}

// EventsByImportance returns the topic's events ranked by importance,
// unranked events last
func (s *TopicsService) EventsByImportance(topicID uint) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Where("topic_id = ?", topicID).
		Order("importance DESC NULLS LAST").Find(&events).Error
	if err != nil {
		log.Printf("Database error loading events by importance for topic %d: %v", topicID, err)
		return nil
	}
	return events
}
