package models

import "time"

// Pure association relations with composite keys and no owned data beyond
// timestamps. Junctions that carry payload (EventStoryLink) or are mutated
// individually (StoryTag) are full entities in their own files.

// StoryTopic joins a story to a topic
type StoryTopic struct {
	StoryID   uint      `json:"story_id" db:"story_id" gorm:"primaryKey;autoIncrement:false"`
	TopicID   uint      `json:"topic_id" db:"topic_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the StoryTopic model
func (StoryTopic) TableName() string {
	return "story_topics"
}

// ThreadStory joins a thread to a story
type ThreadStory struct {
	ThreadID  uint      `json:"thread_id" db:"thread_id" gorm:"primaryKey;autoIncrement:false"`
	StoryID   uint      `json:"story_id" db:"story_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ThreadStory model
func (ThreadStory) TableName() string {
	return "thread_stories"
}

// ThreadTopic joins a thread to a topic
type ThreadTopic struct {
	ThreadID  uint      `json:"thread_id" db:"thread_id" gorm:"primaryKey;autoIncrement:false"`
	TopicID   uint      `json:"topic_id" db:"topic_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ThreadTopic model
func (ThreadTopic) TableName() string {
	return "thread_topics"
}

// ThreadEvent joins a thread to an event claim
type ThreadEvent struct {
	ThreadID  uint      `json:"thread_id" db:"thread_id" gorm:"primaryKey;autoIncrement:false"`
	EventID   uint      `json:"event_id" db:"event_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the ThreadEvent model
func (ThreadEvent) TableName() string {
	return "thread_events"
}
