package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// StoriesService manages stories and their tag and topic associations
type StoriesService struct {
	db *gorm.DB
}

// NewStoriesService creates a new StoriesService
func NewStoriesService(db *gorm.DB) *StoriesService {
	return &StoriesService{db: db}
}

// StoryUpdate enumerates the mutable fields of a story. Nil fields are
// left unchanged.
type StoryUpdate struct {
	Title       *string
	SourceName  *string
	Author      *string
	PublishedAt *time.Time
	Summary     *string
	RawText     *string
}

// DuplicateMatch is a stored story that looks like a duplicate of a
// candidate, with the reason and a confidence score in (0, 1].
type DuplicateMatch struct {
	Story      models.Story `json:"story"`
	Reason     string       `json:"reason"`
	Confidence float64      `json:"confidence"`
}

// Titles at or above this similarity are considered near-duplicates
const titleSimilarityThreshold = 0.92

// Create canonicalizes the story's URL, validates it and persists it. A
// story whose canonical URL is already stored is rejected.
func (s *StoriesService) Create(story *models.Story) error {
	story.CanonicalizeURL()

	if violations := story.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(story).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return NewValidationError([]string{"A story with this URL already exists"})
		}
		log.Printf("Database error creating story %s: %v", story.URL, err)
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// Update applies the set fields of upd and persists the result
func (s *StoriesService) Update(story *models.Story, upd StoryUpdate) error {
	if upd.Title != nil {
		story.Title = *upd.Title
	}
	if upd.SourceName != nil {
		story.SourceName = *upd.SourceName
	}
	if upd.Author != nil {
		story.Author = *upd.Author
	}
	if upd.PublishedAt != nil {
		story.PublishedAt = upd.PublishedAt
	}
	if upd.Summary != nil {
		story.Summary = *upd.Summary
	}
	if upd.RawText != nil {
		story.RawText = *upd.RawText
	}

	if violations := story.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(story).Error
	})
	if err != nil {
		log.Printf("Database error updating story %d: %v", story.ID, err)
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// Delete removes a story together with its junction rows. Event claims
// whose primary story this was keep a dangling reference cleared here.
func (s *StoriesService) Delete(story *models.Story) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.EventStoryLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.StoryTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.StoryTopic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.ThreadStory{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.EventClaim{}).
			Where("story_primary_id = ?", story.ID).
			Update("story_primary_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(story).Error
	})
	if err != nil {
		log.Printf("Database error deleting story %d: %v", story.ID, err)
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// FindByID finds a story by id, returning (nil, nil) on a miss
func (s *StoriesService) FindByID(id uint) (*models.Story, error) {
	var story models.Story
	if err := s.db.First(&story, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding story %d: %v", id, err)
		return nil, err
	}
	return &story, nil
}

// FindByURL finds a story by its canonical URL, returning (nil, nil) on a
// miss. The given URL is canonicalized before lookup.
func (s *StoriesService) FindByURL(rawURL string) (*models.Story, error) {
	probe := models.Story{URL: rawURL}
	probe.CanonicalizeURL()

	var story models.Story
	if err := s.db.Where("url = ?", probe.URL).First(&story).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding story by url: %v", err)
		return nil, err
	}
	return &story, nil
}

// FindBySource returns stories from one source, newest first
func (s *StoriesService) FindBySource(sourceName string) []models.Story {
	var stories []models.Story
	err := s.db.Where("source_name = ?", sourceName).
		Order("published_at DESC NULLS LAST").
		Find(&stories).Error
	if err != nil {
		log.Printf("Database error finding stories by source %s: %v", sourceName, err)
		return nil
	}
	return stories
}

// FindByDateRange returns stories published inside the inclusive range
func (s *StoriesService) FindByDateRange(from, to time.Time) []models.Story {
	var stories []models.Story
	err := s.db.Where("published_at >= ? AND published_at <= ?", from, to).
		Order("published_at ASC").
		Find(&stories).Error
	if err != nil {
		log.Printf("Database error finding stories by date range: %v", err)
		return nil
	}
	return stories
}

// List returns a page of stories newest first along with the total count
func (s *StoriesService) List(limit, offset int) ([]models.Story, int64, error) {
	var total int64
	if err := s.db.Model(&models.Story{}).Count(&total).Error; err != nil {
		log.Printf("Database error counting stories: %v", err)
		return nil, 0, err
	}

	var stories []models.Story
	err := s.db.Order("captured_at DESC").Limit(limit).Offset(offset).Find(&stories).Error
	if err != nil {
		log.Printf("Database error listing stories: %v", err)
		return nil, 0, err
	}
	return stories, total, nil
}

// FindDuplicates finds stored stories that look like duplicates of the
// candidate. Matches are advisory: an exact canonical URL match scores
// 1.0, a near-identical title scores its similarity ratio, and a story
// from the same source within three days of the candidate's publish date
// scores 0.8. Storage errors degrade to no matches.
func (s *StoriesService) FindDuplicates(candidate *models.Story) []DuplicateMatch {
	probe := *candidate
	probe.CanonicalizeURL()

	var matches []DuplicateMatch
	seen := make(map[uint]bool)
	if candidate.ID != 0 {
		seen[candidate.ID] = true
	}

	var exact models.Story
	err := s.db.Where("url = ?", probe.URL).First(&exact).Error
	if err == nil && !seen[exact.ID] {
		matches = append(matches, DuplicateMatch{Story: exact, Reason: "Exact URL match", Confidence: 1.0})
		seen[exact.ID] = true
	} else if err != nil && !isNotFound(err) {
		log.Printf("Database error checking URL duplicates: %v", err)
		return nil
	}

	if title := strings.TrimSpace(candidate.Title); title != "" {
		var stored []models.Story
		if err := s.db.Where("title != ''").Find(&stored).Error; err != nil {
			log.Printf("Database error checking title duplicates: %v", err)
			return matches
		}
		for _, other := range stored {
			if seen[other.ID] {
				continue
			}
			ratio := similarityRatio(strings.ToLower(title), strings.ToLower(other.Title))
			if ratio >= titleSimilarityThreshold {
				matches = append(matches, DuplicateMatch{
					Story:      other,
					Reason:     fmt.Sprintf("Similar title (%.0f%% match)", ratio*100),
					Confidence: ratio,
				})
				seen[other.ID] = true
			}
		}
	}

	if candidate.SourceName != "" && candidate.PublishedAt != nil {
		from := candidate.PublishedAt.AddDate(0, 0, -3)
		to := candidate.PublishedAt.AddDate(0, 0, 3)
		var nearby []models.Story
		err := s.db.Where("source_name = ? AND published_at >= ? AND published_at <= ?",
			candidate.SourceName, from, to).
			Find(&nearby).Error
		if err != nil {
			log.Printf("Database error checking same-source duplicates: %v", err)
			return matches
		}
		for _, other := range nearby {
			if seen[other.ID] {
				continue
			}
			matches = append(matches, DuplicateMatch{
				Story:      other,
				Reason:     "Same source within 3 days",
				Confidence: 0.8,
			})
			seen[other.ID] = true
		}
	}

	return matches
}

// AddTag attaches a tag to the story by name, creating the tag if needed.
// The name is normalized first. Tagging twice is a no-op success.
func (s *StoriesService) AddTag(story *models.Story, name string) (*models.Tag, bool, error) {
	normalized := models.NormalizeTagName(name)
	if normalized == "" {
		return nil, false, NewValidationError([]string{"Tag name cannot be empty"})
	}

	var tag models.Tag
	err := s.db.Where("name = ?", normalized).First(&tag).Error
	if err != nil {
		if !isNotFound(err) {
			log.Printf("Database error finding tag %s: %v", normalized, err)
			return nil, false, err
		}
		tag = models.Tag{Name: normalized}
		if err := s.db.Create(&tag).Error; err != nil {
			if isDuplicate(err) {
				if err := s.db.Where("name = ?", normalized).First(&tag).Error; err != nil {
					return nil, false, err
				}
			} else {
				log.Printf("Database error creating tag %s: %v", normalized, err)
				return nil, false, fmt.Errorf("failed to create tag: %w", err)
			}
		}
	}

	var existing models.StoryTag
	err = s.db.Where("story_id = ? AND tag_id = ?", story.ID, tag.ID).First(&existing).Error
	if err == nil {
		return &tag, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	link := models.StoryTag{StoryID: story.ID, TagID: tag.ID}
	if err := s.db.Create(&link).Error; err != nil {
		if isDuplicate(err) {
			return &tag, false, nil
		}
		log.Printf("Database error tagging story %d with %s: %v", story.ID, normalized, err)
		return nil, false, fmt.Errorf("failed to tag story: %w", err)
	}
	return &tag, true, nil
}

// RemoveTag detaches a tag from the story by name. Removing an absent tag
// succeeds with removed == false.
func (s *StoriesService) RemoveTag(story *models.Story, name string) (bool, error) {
	normalized := models.NormalizeTagName(name)

	var tag models.Tag
	err := s.db.Where("name = ?", normalized).First(&tag).Error
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	res := s.db.Where("story_id = ? AND tag_id = ?", story.ID, tag.ID).Delete(&models.StoryTag{})
	if res.Error != nil {
		log.Printf("Database error untagging story %d: %v", story.ID, res.Error)
		return false, fmt.Errorf("failed to remove tag: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Tags returns the story's tags in name order
func (s *StoriesService) Tags(story *models.Story) []models.Tag {
	var tags []models.Tag
	err := s.db.Joins("JOIN story_tags ON story_tags.tag_id = tags.id").
		Where("story_tags.story_id = ?", story.ID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		log.Printf("Database error loading tags for story %d: %v", story.ID, err)
		return nil
	}
	return tags
}

// AddTopic attaches a topic to the story, idempotently
func (s *StoriesService) AddTopic(story *models.Story, topicID uint) (bool, error) {
	var existing models.StoryTopic
	err := s.db.Where("story_id = ? AND topic_id = ?", story.ID, topicID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, err
	}

	link := models.StoryTopic{StoryID: story.ID, TopicID: topicID}
	if err := s.db.Create(&link).Error; err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		log.Printf("Database error linking topic %d to story %d: %v", topicID, story.ID, err)
		return false, fmt.Errorf("failed to link topic to story: %w", err)
	}
	return true, nil
}

// RemoveTopic detaches a topic from the story. Removing an absent link
// succeeds with removed == false.
func (s *StoriesService) RemoveTopic(story *models.Story, topicID uint) (bool, error) {
	res := s.db.Where("story_id = ? AND topic_id = ?", story.ID, topicID).Delete(&models.StoryTopic{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to unlink topic from story: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Topics returns the story's topics in name order
func (s *StoriesService) Topics(story *models.Story) []models.Topic {
	var topics []models.Topic
	err := s.db.Joins("JOIN story_topics ON story_topics.topic_id = topics.id").
		Where("story_topics.story_id = ?", story.ID).
		Order("topics.name ASC").
		Find(&topics).Error
	if err != nil {
		log.Printf("Database error loading topics for story %d: %v", story.ID, err)
		return nil
	}
	return topics
}
