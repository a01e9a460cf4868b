package services

import (
	"fmt"
	"log"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// TagsService manages the tag vocabulary and tag usage queries
type TagsService struct {
	db *gorm.DB
}

// NewTagsService creates a new TagsService
func NewTagsService(db *gorm.DB) *TagsService {
	return &TagsService{db: db}
}

// TagUsage is a tag with the number of stories carrying it
type TagUsage struct {
	Tag        models.Tag `json:"tag"`
	StoryCount int64      `json:"story_count"`
}

// FindOrCreate returns the tag with the normalized form of name, creating
// it if needed
func (s *TagsService) FindOrCreate(name string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)
	if normalized == "" {
		return nil, NewValidationError([]string{"Tag name cannot be empty"})
	}

	var tag models.Tag
	err := s.db.Where("name = ?", normalized).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !isNotFound(err) {
		log.Printf("Database error finding tag %s: %v", normalized, err)
		return nil, err
	}

	tag = models.Tag{Name: normalized}
	if err := s.db.Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			if err := s.db.Where("name = ?", normalized).First(&tag).Error; err != nil {
				return nil, err
			}
			return &tag, nil
		}
		log.Printf("Database error creating tag %s: %v", normalized, err)
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// FindByID finds a tag by id, returning (nil, nil) on a miss
func (s *TagsService) FindByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding tag %d: %v", id, err)
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag by name after normalization, returning (nil, nil)
// on a miss
func (s *TagsService) FindByName(name string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)

	var tag models.Tag
	if err := s.db.Where("name = ?", normalized).First(&tag).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		log.Printf("Database error finding tag %s: %v", normalized, err)
		return nil, err
	}
	return &tag, nil
}

// SearchByName returns tags whose name contains the term,
// case-insensitive
func (s *TagsService) SearchByName(term string) []models.Tag {
	var tags []models.Tag
	err := s.db.Where("name ILIKE ?", "%"+term+"%").Order("name ASC").Find(&tags).Error
	if err != nil {
		log.Printf("Database error searching tags by name %s: %v", term, err)
		return nil
	}
	return tags
}

// AllOrdered returns every tag in name order
func (s *TagsService) AllOrdered() []models.Tag {
	var tags []models.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		log.Printf("Database error listing tags: %v", err)
		return nil
	}
	return tags
}

// Delete removes a tag together with its story links
func (s *TagsService) Delete(tag *models.Tag) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.StoryTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
	if err != nil {
		log.Printf("Database error deleting tag %d: %v", tag.ID, err)
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// StoryCount returns the number of stories carrying the tag, zero on
// storage failure
func (s *TagsService) StoryCount(tag *models.Tag) int64 {
	var count int64
	err := s.db.Model(&models.StoryTag{}).Where("tag_id = ?", tag.ID).Count(&count).Error
	if err != nil {
		log.Printf("Database error counting stories for tag %d: %v", tag.ID, err)
		return 0
	}
	return count
}

// Stories returns the stories carrying the tag, newest first
func (s *TagsService) Stories(tag *models.Tag) []models.Story {
	var stories []models.Story
	err := s.db.Joins("JOIN story_tags ON story_tags.story_id = stories.id").
		Where("story_tags.tag_id = ?", tag.ID).
		Order("stories.captured_at DESC").
		Find(&stories).Error
	if err != nil {
		log.Printf("Database error loading stories for tag %d: %v", tag.ID, err)
		return nil
	}
	return stories
}

// PopularTags returns the most-used tags with their story counts,
// degrading to an empty list on storage failure
func (s *TagsService) PopularTags(limit int) []TagUsage {
	type row struct {
		ID    uint
		Name  string
		Count int64
	}
	var rows []row
	err := s.db.Model(&models.Tag{}).
		Select("tags.id, tags.name, COUNT(story_tags.story_id) as count").
		Joins("LEFT JOIN story_tags ON story_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("count DESC, tags.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		log.Printf("Database error computing popular tags: %v", err)
		return nil
	}

	usages := make([]TagUsage, 0, len(rows))
	for _, r := range rows {
		usages = append(usages, TagUsage{
			Tag:        models.Tag{ID: r.ID, Name: r.Name},
			StoryCount: r.Count,
		})
	}
	return usages
}

// UsageStats returns tag vocabulary totals, degrading to zeroes on
// storage failure
func (s *TagsService) UsageStats() (totalTags, usedTags int64) {
	if err := s.db.Model(&models.Tag{}).Count(&totalTags).Error; err != nil {
		log.Printf("Database error counting tags: %v", err)
		return 0, 0
	}
	err := s.db.Model(&models.StoryTag{}).Distinct("tag_id").Count(&usedTags).Error
	if err != nil {
		log.Printf("Database error counting used tags: %v", err)
		return totalTags, 0
	}
	return totalTags, usedTags
}
