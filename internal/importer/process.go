package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/admiralorbiter/skien/internal/models"

	"github.com/araddon/dateparse"
	"gorm.io/gorm"
)

// ProcessResult tallies one processed import
type ProcessResult struct {
	Success      int        `json:"success"`
	Errors       int        `json:"errors"`
	Duplicates   int        `json:"duplicates"`
	ErrorDetails []RowError `json:"error_details"`
}

// Process imports a stored upload row by row. Each row runs in its own
// transaction so one bad row cannot poison the rest: duplicate URLs are
// skipped and counted, failures roll back that row and are recorded with
// their row number. The uploaded file is removed afterwards, best effort.
func (im *Importer) Process(filename string, mapping map[string]string) (*ProcessResult, error) {
	normalized, err := normalizeMapping(mapping)
	if err != nil {
		return nil, err
	}

	f, err := im.open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	result := &ProcessResult{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row %d: %w", row+1, err)
		}
		row++

		mapped := applyMapping(header, record, normalized)
		if problems := validateRow(mapped); len(problems) > 0 {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, RowError{
				Row:   row,
				Error: strings.Join(problems, "; "),
			})
			continue
		}

		duplicate, err := im.importRow(mapped)
		if err != nil {
			log.Printf("Import row %d failed: %v", row, err)
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, RowError{
				Row:   row,
				Error: err.Error(),
			})
			continue
		}
		if duplicate {
			result.Duplicates++
			continue
		}
		result.Success++
	}

	im.Remove(filename)
	return result, nil
}

// importRow creates the story and its fan-out rows inside one
// transaction. Thread and event claim rows are created only when the
// row carries those fields. Reports duplicate == true when the URL is
// already stored.
func (im *Importer) importRow(mapped map[string]string) (duplicate bool, err error) {
	story := models.Story{
		URL:        mapped["url"],
		Title:      mapped["title"],
		SourceName: mapped["source_name"],
		Author:     mapped["author"],
		Summary:    mapped["summary"],
		RawText:    mapped["raw_text"],
	}
	story.CanonicalizeURL()

	if date := mapped["published_at"]; date != "" {
		parsed, err := dateparse.ParseAny(date)
		if err != nil {
			return false, fmt.Errorf("unparseable date: %s", date)
		}
		story.PublishedAt = &parsed
	}
	if story.SourceName == "" {
		story.SourceName = SourceNameForDomain(story.Domain())
	}

	err = im.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Story
		lookupErr := tx.Where("url = ?", story.URL).First(&existing).Error
		if lookupErr == nil {
			duplicate = true
			return nil
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}

		if violations := story.Validate(); len(violations) > 0 {
			return fmt.Errorf("%s", strings.Join(violations, "; "))
		}
		if err := tx.Create(&story).Error; err != nil {
			return fmt.Errorf("failed to create story: %w", err)
		}

		topics, err := attachTopics(tx, &story, mapped["topics"])
		if err != nil {
			return err
		}

		threadName := mapped["thread"]
		claimText := mapped["event_claim"]
		if threadName == "" && claimText == "" {
			return nil
		}

		// The row's first topic anchors its thread and event claim.
		// "General" is the fallback when the row maps no topics.
		var topic *models.Topic
		if len(topics) > 0 {
			topic = &topics[0]
		} else {
			topic, err = findOrCreateTopic(tx, "General")
			if err != nil {
				return err
			}
		}

		var thread *models.Thread
		if threadName != "" {
			thread, err = findOrCreateThread(tx, topic, threadName)
			if err != nil {
				return err
			}
			if err := tx.Create(&models.ThreadStory{ThreadID: thread.ID, StoryID: story.ID}).Error; err != nil {
				return fmt.Errorf("failed to link story to thread: %w", err)
			}
		}

		if claimText != "" {
			eventDate := time.Now()
			if story.PublishedAt != nil {
				eventDate = *story.PublishedAt
			}
			event := models.EventClaim{
				TopicID:        topic.ID,
				StoryPrimaryID: &story.ID,
				ClaimText:      claimText,
				EventDate:      eventDate,
			}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("failed to create event claim: %w", err)
			}
			if err := tx.Create(&models.EventStoryLink{EventID: event.ID, StoryID: story.ID}).Error; err != nil {
				return fmt.Errorf("failed to link story to event: %w", err)
			}
			if thread != nil {
				if err := tx.Create(&models.ThreadEvent{ThreadID: thread.ID, EventID: event.ID}).Error; err != nil {
					return fmt.Errorf("failed to link event to thread: %w", err)
				}
			}
		}
		return nil
	})
	return duplicate, err
}

// attachTopics splits a semicolon-separated topic cell, finds or creates
// each topic and links it to the story
func attachTopics(tx *gorm.DB, story *models.Story, cell string) ([]models.Topic, error) {
	var topics []models.Topic
	for _, name := range strings.Split(cell, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		topic, err := findOrCreateTopic(tx, name)
		if err != nil {
			return nil, err
		}
		link := models.StoryTopic{StoryID: story.ID, TopicID: topic.ID}
		if err := tx.Create(&link).Error; err != nil {
			return nil, fmt.Errorf("failed to link topic %s to story: %w", name, err)
		}
		topics = append(topics, *topic)
	}
	return topics, nil
}

func findOrCreateTopic(tx *gorm.DB, name string) (*models.Topic, error) {
	var topic models.Topic
	err := tx.Where("name = ?", name).First(&topic).Error
	if err == nil {
		return &topic, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	topic = models.Topic{Name: name}
	if err := tx.Create(&topic).Error; err != nil {
		return nil, fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	return &topic, nil
}

func findOrCreateThread(tx *gorm.DB, topic *models.Topic, name string) (*models.Thread, error) {
	var thread models.Thread
	err := tx.Where("name = ? AND topic_id = ?", name, topic.ID).First(&thread).Error
	if err == nil {
		return &thread, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	thread = models.Thread{TopicID: topic.ID, Name: name}
	if err := tx.Create(&thread).Error; err != nil {
		return nil, fmt.Errorf("failed to create thread %s: %w", name, err)
	}
	link := models.ThreadTopic{ThreadID: thread.ID, TopicID: topic.ID}
	if err := tx.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to link thread %s to topic: %w", name, err)
	}
	return &thread, nil
}
