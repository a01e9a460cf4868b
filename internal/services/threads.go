package services

import (
	"fmt"
	"log"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// ThreadsService manages threads and their event, story and topic
// associations
type ThreadsService struct {
	db *gorm.DB
}

// NewThreadsService creates a new ThreadsService
func NewThreadsService(db *gorm.DB) *ThreadsService {
	return &ThreadsService{db: db}
}

// ThreadUpdate enumerates the mutable fields of a thread. Nil fields are
// left unchanged.
type ThreadUpdate struct {
	Name        *string
	Description *string
	StartDate   *time.Time
}

// Create persists a new thread under a topic and links the owning topic in
// the thread_topics junction within the same transaction.
func (s *ThreadsService) Create(topicID uint, name, description string, startDate *time.Time) (*models.Thread, error) {
	thread := &models.Thread{
		TopicID:     topicID,
		Name:        name,
		Description: description,
		StartDate:   startDate,
	}

	if violations := thread.Validate(); len(violations) > 0 {
		return nil, NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		link := models.ThreadTopic{ThreadID: thread.ID, TopicID: topicID}
		return tx.Create(&link).Error
	})
	if err != nil {
		log.Printf("Database error creating thread %s: %v", name, err)
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

// Update applies the set fields of upd and persists the result
func (s *ThreadsService) Update(thread *models.Thread, upd ThreadUpdate) error {
	if upd.Name != nil {
		thread.Name = *upd.Name
	}
	if upd.Description != nil {
		thread.Description = *upd.Description
	}
	if upd.StartDate != nil {
		thread.StartDate = upd.StartDate
	}

	if violations := thread.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(thread).Error
	})
	if err != nil {
		log.Printf("Database error updating thread %d: %v", thread.ID, err)
		return fmt.Errorf("failed to update thread: %w", err)
	}
	return nil
}

// Delete removes a thread together with its junction rows
func (s *ThreadsService) Delete(thread *models.Thread) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&models.ThreadEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&models.ThreadStory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&models.ThreadTopic{}).Error; err != nil {
			return err
		}
		return tx.Delete(thread).Error
	})
	if err != nil {
		log.Printf("Database error deleting thread %d: %v", thread.ID, err)
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// FindByID finds a thread by id, returning (nil, nil) on a miss
func (s *ThreadsService) FindByID(id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.First(&thread, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding thread %d: %v", id, err)
		return nil, err
	}
	return &thread, nil
}

// FindByName finds a thread by exact name. A non-zero topicID scopes the
// lookup to that topic. Returns (nil, nil) on a miss.
func (s *ThreadsService) FindByName(name string, topicID uint) (*models.Thread, error) {
	query := s.db.Where("name = ?", name)
	if topicID != 0 {
		query = query.Where("topic_id = ?", topicID)
	}

	var thread models.Thread
	if err := query.First(&thread).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding thread by name %s: %v", name, err)
		return nil, err
	}
	return &thread, nil
}

// FindByTopic returns the topic's threads ordered by start date. Storage
// errors degrade to an empty list.
func (s *ThreadsService) FindByTopic(topicID uint) []models.Thread {
	var threads []models.Thread
	err := s.db.Where("topic_id = ?", topicID).Order("start_date ASC").Find(&threads).Error
	if err != nil {
		log.Printf("Database error finding threads by topic %d: %v", topicID, err)
		return nil
	}
	return threads
}

// SearchByName returns threads whose name matches the term,
// case-insensitive, optionally scoped to a topic
func (s *ThreadsService) SearchByName(term string, topicID uint) []models.Thread {
	query := s.db.Where("name ILIKE ?", "%"+term+"%")
	if topicID != 0 {
		query = query.Where("topic_id = ?", topicID)
	}

	var threads []models.Thread
	if err := query.Order("start_date ASC").Find(&threads).Error; err != nil {
		log.Printf("Database error searching threads by name %s: %v", term, err)
		return nil
	}
	return threads
}

// FindUnsorted returns threads without a start date, optionally scoped to
// a topic
func (s *ThreadsService) FindUnsorted(topicID uint) []models.Thread {
	query := s.db.Where("start_date IS NULL")
	if topicID != 0 {
		query = query.Where("topic_id = ?", topicID)
	}

	var threads []models.Thread
	if err := query.Order("name ASC").Find(&threads).Error; err != nil {
		log.Printf("Database error finding unsorted threads: %v", err)
		return nil
	}
	return threads
}

// AddEvent puts an event into the thread. The event must share the
// thread's topic. Adding an event already present is a no-op success.
func (s *ThreadsService) AddEvent(thread *models.Thread, event *models.EventClaim) (bool, error) {
	if event.TopicID != thread.TopicID {
		return false, fmt.Errorf("event must be in the same topic as the thread")
	}

	var existing models.ThreadEvent
	err := s.db.Where("thread_id = ? AND event_id = ?", thread.ID, event.ID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		log.Printf("Database error checking thread membership for event %d: %v", event.ID, err)
		return false, err
	}

	link := models.ThreadEvent{ThreadID: thread.ID, EventID: event.ID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&link).Error
	})
	if err != nil {
		if isDuplicate(err) {
			// Lost a race with a concurrent add; the association exists
			return false, nil
		}
		log.Printf("Database error adding event %d to thread %d: %v", event.ID, thread.ID, err)
		return false, fmt.Errorf("failed to add event to thread: %w", err)
	}
	return true, nil
}

// RemoveEvent takes an event out of the thread. Removing an absent event
// succeeds with removed == false.
func (s *ThreadsService) RemoveEvent(thread *models.Thread, event *models.EventClaim) (bool, error) {
	res := s.db.Where("thread_id = ? AND event_id = ?", thread.ID, event.ID).Delete(&models.ThreadEvent{})
	if res.Error != nil {
		log.Printf("Database error removing event %d from thread %d: %v", event.ID, thread.ID, res.Error)
		return false, fmt.Errorf("failed to remove event from thread: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MoveEvent moves an event from this thread to another thread in the same
// topic, atomically
func (s *ThreadsService) MoveEvent(from, to *models.Thread, event *models.EventClaim) error {
	if to.TopicID != from.TopicID {
		return fmt.Errorf("new thread must be in the same topic")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("thread_id = ? AND event_id = ?", from.ID, event.ID).Delete(&models.ThreadEvent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("event is not in this thread")
		}
		return tx.Create(&models.ThreadEvent{ThreadID: to.ID, EventID: event.ID}).Error
	})
	if err != nil {
		log.Printf("Error moving event %d between threads %d -> %d: %v", event.ID, from.ID, to.ID, err)
		return err
	}
	return nil
}

// SetStories atomically replaces the thread's full story association set.
// Calling it again with the same set is a no-op that still succeeds.
func (s *ThreadsService) SetStories(thread *models.Thread, storyIDs []uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&models.ThreadStory{}).Error; err != nil {
			return err
		}
		seen := make(map[uint]bool, len(storyIDs))
		for _, id := range storyIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if err := tx.Create(&models.ThreadStory{ThreadID: thread.ID, StoryID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Database error setting stories for thread %d: %v", thread.ID, err)
		return fmt.Errorf("failed to set thread stories: %w", err)
	}
	return nil
}

// AddStory attaches a story to the thread, idempotently
func (s *ThreadsService) AddStory(thread *models.Thread, storyID uint) (bool, error) {
	var existing models.ThreadStory
	err := s.db.Where("thread_id = ? AND story_id = ?", thread.ID, storyID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models.ThreadStory{ThreadID: thread.ID, StoryID: storyID}).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		log.Printf("Database error linking story %d to thread %d: %v", storyID, thread.ID, err)
		return false, fmt.Errorf("failed to link story to thread: %w", err)
	}
	return true, nil
}

// RemoveStory detaches a story from the thread. Removing an absent story
// succeeds with removed == false.
func (s *ThreadsService) RemoveStory(thread *models.Thread, storyID uint) (bool, error) {
	res := s.db.Where("thread_id = ? AND story_id = ?", thread.ID, storyID).Delete(&models.ThreadStory{})
	if res.Error != nil {
		log.Printf("Database error unlinking story %d from thread %d: %v", storyID, thread.ID, res.Error)
		return false, fmt.Errorf("failed to unlink story from thread: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Stories returns the thread's associated stories
func (s *ThreadsService) Stories(thread *models.Thread) []models.Story {
	var stories []models.Story
	err := s.db.Joins("JOIN thread_stories ON thread_stories.story_id = stories.id").
		Where("thread_stories.thread_id = ?", thread.ID).
		Find(&stories).Error
	if err != nil {
		log.Printf("Database error loading stories for thread %d: %v", thread.ID, err)
		return nil
	}
	return stories
}

// LinkTopic attaches an additional topic to the thread, idempotently
func (s *ThreadsService) LinkTopic(thread *models.Thread, topicID uint) (bool, error) {
	var existing models.ThreadTopic
	err := s.db.Where("thread_id = ? AND topic_id = ?", thread.ID, topicID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models.ThreadTopic{ThreadID: thread.ID, TopicID: topicID}).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		log.Printf("Database error linking topic %d to thread %d: %v", topicID, thread.ID, err)
		return false, fmt.Errorf("failed to link topic to thread: %w", err)
	}
	return true, nil
}

// UnlinkTopic detaches a topic from the thread. Removing an absent link
// succeeds with removed == false.
func (s *ThreadsService) UnlinkTopic(thread *models.Thread, topicID uint) (bool, error) {
	res := s.db.Where("thread_id = ? AND topic_id = ?", thread.ID, topicID).Delete(&models.ThreadTopic{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to unlink topic from thread: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Events returns the thread's events in chronological order
func (s *ThreadsService) Events(thread *models.Thread) []models.EventClaim {
	var events []models.EventClaim
	err := s.db.Joins("JOIN thread_events ON thread_events.event_id = event_claims.id").
		Where("thread_events.thread_id = ?", thread.ID).
		Order("event_claims.event_date ASC").
		Find(&events).Error
	if err != nil {
		log.Printf("Database error loading events for thread %d: %v", thread.ID, err)
		return nil
	}
	return events
}

// EventCount returns the number of events in the thread, zero on storage
// failure
func (s *ThreadsService) EventCount(thread *models.Thread) int64 {
	var count int64
	err := s.db.Model(&models.ThreadEvent{}).Where("thread_id = ?", thread.ID).Count(&count).Error
	if err != nil {
		log.Printf("Database error counting events for thread %d: %v", thread.ID, err)
		return 0
	}
	return count
}

// FirstEventDate returns the date of the thread's earliest event, nil when
// the thread is empty
func (s *ThreadsService) FirstEventDate(thread *models.Thread) *time.Time {
	return s.boundaryEventDate(thread, "ASC")
}

// LastEventDate returns the date of the thread's latest event, nil when the
// thread is empty
func (s *ThreadsService) LastEventDate(thread *models.Thread) *time.Time {
	return s.boundaryEventDate(thread, "DESC")
}

func (s *ThreadsService) boundaryEventDate(thread *models.Thread, direction string) *time.Time {
	var event models.EventClaim
	err := s.db.Joins("JOIN thread_events ON thread_events.event_id = event_claims.id").
		Where("thread_events.thread_id = ?", thread.ID).
		Order("event_claims.event_date " + direction).
		First(&event).Error
	if err != nil {
		if !isNotFound(err) {
			log.Printf("Database error finding boundary event for thread %d: %v", thread.ID, err)
		}
		return nil
	}
	return &event.EventDate
}

// DateRange returns the first and last event dates of the thread
func (s *ThreadsService) DateRange(thread *models.Thread) (*time.Time, *time.Time) {
	return s.FirstEventDate(thread), s.LastEventDate(thread)
}

// UpdateStartDateFromEvents derives the thread's start date from its
// earliest event. It reports whether a date was written.
func (s *ThreadsService) UpdateStartDateFromEvents(thread *models.Thread) (bool, error) {
	first := s.FirstEventDate(thread)
	if first == nil {
		return false, nil
	}

	thread.StartDate = first
	err := s.db.Model(thread).Update("start_date", first).Error
	if err != nil {
		log.Printf("Database error updating start date for thread %d: %v", thread.ID, err)
		return false, fmt.Errorf("failed to update thread start date: %w", err)
	}
	return true, nil
}
