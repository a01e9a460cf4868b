package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/admiralorbiter/skien/internal/models"
	"github.com/admiralorbiter/skien/internal/services"

	"github.com/gin-gonic/gin"
)

// ContentHandler exposes the content graph over JSON: topics, threads,
// event claims, edges, stories and tags. Handlers stay thin; the services
// own the rules.
type ContentHandler struct {
	topics  *services.TopicsService
	threads *services.ThreadsService
	events  *services.EventsService
	edges   *services.EdgesService
	stories *services.StoriesService
	tags    *services.TagsService
	audit   *services.AuditService
}

// NewContentHandler creates a new content handler
func NewContentHandler(topics *services.TopicsService, threads *services.ThreadsService,
	events *services.EventsService, edges *services.EdgesService,
	stories *services.StoriesService, tags *services.TagsService,
	audit *services.AuditService) *ContentHandler {
	return &ContentHandler{
		topics:  topics,
		threads: threads,
		events:  events,
		edges:   edges,
		stories: stories,
		tags:    tags,
		audit:   audit,
	}
}

func (h *ContentHandler) logAction(c *gin.Context, action string, targetID uint, details string) {
	if claims := currentClaims(c); claims != nil {
		h.audit.LogAction(claims.UserID, action, &targetID, details, requestMeta(c))
	}
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	if violations := services.Violations(err); violations != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": violations})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// --- Topics ---

// ListTopics returns every topic in name order, optionally filtered by a
// search term
func (h *ContentHandler) ListTopics(c *gin.Context) {
	if term := c.Query("q"); term != "" {
		c.JSON(http.StatusOK, gin.H{"topics": h.topics.SearchByName(term)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": h.topics.AllOrdered()})
}

// GetTopic returns one topic with its aggregate counts
func (h *ContentHandler) GetTopic(c *gin.Context) {
	topic, ok := h.lookupTopic(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"topic":        topic,
		"thread_count": h.topics.ThreadCount(topic.ID),
		"event_count":  h.topics.EventCount(topic.ID),
	})
}

type topicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CreateTopic creates a new topic
func (h *ContentHandler) CreateTopic(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic, err := h.topics.Create(req.Name, req.Description, req.Color)
	if err != nil {
		respondServiceError(c, err, "failed to create topic")
		return
	}
	h.logAction(c, "topic_created", topic.ID, fmt.Sprintf("Created topic %s", topic.Name))
	c.JSON(http.StatusCreated, topic)
}

type topicUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// UpdateTopic applies a partial update to a topic
func (h *ContentHandler) UpdateTopic(c *gin.Context) {
	topic, ok := h.lookupTopic(c)
	if !ok {
		return
	}

	var req topicUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.TopicUpdate{Name: req.Name, Description: req.Description, Color: req.Color}
	if err := h.topics.Update(topic, upd); err != nil {
		respondServiceError(c, err, "failed to update topic")
		return
	}
	h.logAction(c, "topic_updated", topic.ID, fmt.Sprintf("Updated topic %s", topic.Name))
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes a topic
func (h *ContentHandler) DeleteTopic(c *gin.Context) {
	topic, ok := h.lookupTopic(c)
	if !ok {
		return
	}
	if err := h.topics.Delete(topic); err != nil {
		respondServiceError(c, err, "failed to delete topic")
		return
	}
	h.logAction(c, "topic_deleted", topic.ID, fmt.Sprintf("Deleted topic %s", topic.Name))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// TopicEvents returns a topic's events, ordered by date or importance,
// or only those in no thread when unsorted=true
func (h *ContentHandler) TopicEvents(c *gin.Context) {
	topic, ok := h.lookupTopic(c)
	if !ok {
		return
	}

	var events []models.EventClaim
	switch {
	case c.Query("unsorted") == "true":
		events = h.topics.UnsortedEvents(topic.ID)
	case c.Query("order") == "importance":
		events = h.topics.EventsByImportance(topic.ID)
	default:
		events = h.topics.EventsByDate(topic.ID)
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// TopicThreads returns a topic's threads
func (h *ContentHandler) TopicThreads(c *gin.Context) {
	topic, ok := h.lookupTopic(c)
	if !ok {
		return
	}
	if c.Query("unsorted") == "true" {
		c.JSON(http.StatusOK, gin.H{"threads": h.threads.FindUnsorted(topic.ID)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": h.threads.FindByTopic(topic.ID)})
}

func (h *ContentHandler) lookupTopic(c *gin.Context) (*models.Topic, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	topic, err := h.topics.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load topic"})
		return nil, false
	}
	if topic == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return nil, false
	}
	return topic, true
}

// --- Threads ---

type threadRequest struct {
	TopicID     uint       `json:"topic_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
}

// CreateThread creates a new thread under a topic
func (h *ContentHandler) CreateThread(c *gin.Context) {
	var req threadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thread, err := h.threads.Create(req.TopicID, req.Name, req.Description, req.StartDate)
	if err != nil {
		respondServiceError(c, err, "failed to create thread")
		return
	}
	h.logAction(c, "thread_created", thread.ID, fmt.Sprintf("Created thread %s", thread.Name))
	c.JSON(http.StatusCreated, thread)
}

// GetThread returns one thread with its events and date range
func (h *ContentHandler) GetThread(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}
	first, last := h.threads.DateRange(thread)
	c.JSON(http.StatusOK, gin.H{
		"thread":      thread,
		"events":      h.threads.Events(thread),
		"event_count": h.threads.EventCount(thread),
		"first_event": first,
		"last_event":  last,
	})
}

type threadUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
}

// UpdateThread applies a partial update to a thread
func (h *ContentHandler) UpdateThread(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}

	var req threadUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.ThreadUpdate{Name: req.Name, Description: req.Description, StartDate: req.StartDate}
	if err := h.threads.Update(thread, upd); err != nil {
		respondServiceError(c, err, "failed to update thread")
		return
	}
	h.logAction(c, "thread_updated", thread.ID, fmt.Sprintf("Updated thread %s", thread.Name))
	c.JSON(http.StatusOK, thread)
}

// DeleteThread removes a thread
func (h *ContentHandler) DeleteThread(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}
	if err := h.threads.Delete(thread); err != nil {
		respondServiceError(c, err, "failed to delete thread")
		return
	}
	h.logAction(c, "thread_deleted", thread.ID, fmt.Sprintf("Deleted thread %s", thread.Name))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AddThreadEvent puts an event into a thread
func (h *ContentHandler) AddThreadEvent(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}
	event, ok := h.lookupEventParam(c, "eventId")
	if !ok {
		return
	}

	added, err := h.threads.AddEvent(thread, event)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if added {
		h.logAction(c, "thread_event_added", thread.ID,
			fmt.Sprintf("Added event %d to thread %s", event.ID, thread.Name))
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveThreadEvent takes an event out of a thread
func (h *ContentHandler) RemoveThreadEvent(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}
	event, ok := h.lookupEventParam(c, "eventId")
	if !ok {
		return
	}

	removed, err := h.threads.RemoveEvent(thread, event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove event"})
		return
	}
	if removed {
		h.logAction(c, "thread_event_removed", thread.ID,
			fmt.Sprintf("Removed event %d from thread %s", event.ID, thread.Name))
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

type setStoriesRequest struct {
	StoryIDs []uint `json:"story_ids"`
}

// SetThreadStories replaces a thread's story associations
func (h *ContentHandler) SetThreadStories(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}

	var req setStoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.threads.SetStories(thread, req.StoryIDs); err != nil {
		respondServiceError(c, err, "failed to set thread stories")
		return
	}
	h.logAction(c, "thread_stories_set", thread.ID,
		fmt.Sprintf("Set %d stories on thread %s", len(req.StoryIDs), thread.Name))
	c.JSON(http.StatusOK, gin.H{"stories": h.threads.Stories(thread)})
}

// UpdateThreadStartDate derives a thread's start date from its earliest
// event
func (h *ContentHandler) UpdateThreadStartDate(c *gin.Context) {
	thread, ok := h.lookupThread(c)
	if !ok {
		return
	}
	updated, err := h.threads.UpdateStartDateFromEvents(thread)
	if err != nil {
		respondServiceError(c, err, "failed to update start date")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "start_date": thread.StartDate})
}

func (h *ContentHandler) lookupThread(c *gin.Context) (*models.Thread, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	thread, err := h.threads.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread"})
		return nil, false
	}
	if thread == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
		return nil, false
	}
	return thread, true
}

// --- Events ---

type eventRequest struct {
	TopicID        uint      `json:"topic_id"`
	ClaimText      string    `json:"claim_text"`
	EventDate      time.Time `json:"event_date"`
	Importance     *int      `json:"importance"`
	StoryPrimaryID *uint     `json:"story_primary_id"`
}

// CreateEvent creates a new event claim
func (h *ContentHandler) CreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.Create(req.TopicID, req.ClaimText, req.EventDate,
		req.Importance, req.StoryPrimaryID)
	if err != nil {
		respondServiceError(c, err, "failed to create event")
		return
	}
	h.logAction(c, "event_created", event.ID, "Created event claim")
	c.JSON(http.StatusCreated, event)
}

// GetEvent returns one event with its stories
func (h *ContentHandler) GetEvent(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event":   event,
		"stories": h.events.AllStories(event),
	})
}

type eventUpdateRequest struct {
	ClaimText      *string    `json:"claim_text"`
	EventDate      *time.Time `json:"event_date"`
	Importance     *int       `json:"importance"`
	StoryPrimaryID *uint      `json:"story_primary_id"`
}

// UpdateEvent applies a partial update to an event claim
func (h *ContentHandler) UpdateEvent(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}

	var req eventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.EventUpdate{
		ClaimText:      req.ClaimText,
		EventDate:      req.EventDate,
		Importance:     req.Importance,
		StoryPrimaryID: req.StoryPrimaryID,
	}
	if err := h.events.Update(event, upd); err != nil {
		respondServiceError(c, err, "failed to update event")
		return
	}
	h.logAction(c, "event_updated", event.ID, "Updated event claim")
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event claim and everything hanging off it
func (h *ContentHandler) DeleteEvent(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}
	if err := h.events.Delete(event); err != nil {
		respondServiceError(c, err, "failed to delete event")
		return
	}
	h.logAction(c, "event_deleted", event.ID, "Deleted event claim")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RelatedEvents returns the events one edge away from this one, with
// relation and direction. relation=<kind> filters by relation type.
func (h *ContentHandler) RelatedEvents(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}

	var relation *models.EdgeRelation
	if r := c.Query("relation"); r != "" {
		kind := models.EdgeRelation(r)
		if !kind.Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown relation type"})
			return
		}
		relation = &kind
	}
	c.JSON(http.StatusOK, gin.H{"related": h.events.RelatedEvents(event.ID, relation)})
}

type eventStoryRequest struct {
	StoryID uint   `json:"story_id"`
	Note    string `json:"note"`
}

// AddEventStory links a story to an event as evidence
func (h *ContentHandler) AddEventStory(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}

	var req eventStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.events.AddStory(event, req.StoryID, req.Note)
	if err != nil {
		respondServiceError(c, err, "failed to link story")
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveEventStory unlinks a story from an event
func (h *ContentHandler) RemoveEventStory(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}
	storyID, ok := paramID(c, "storyId")
	if !ok {
		return
	}

	removed, err := h.events.RemoveStory(event, storyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unlink story"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *ContentHandler) lookupEventParam(c *gin.Context, name string) (*models.EventClaim, bool) {
	id, ok := paramID(c, name)
	if !ok {
		return nil, false
	}
	event, err := h.events.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return nil, false
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return nil, false
	}
	return event, true
}

// --- Edges ---

type edgeRequest struct {
	SrcEventID uint   `json:"src_event_id"`
	DstEventID uint   `json:"dst_event_id"`
	Relation   string `json:"relation"`
}

// CreateEdge connects two event claims with a typed relationship
func (h *ContentHandler) CreateEdge(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.events.FindByID(req.SrcEventID)
	if err != nil || src == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source event not found"})
		return
	}
	dst, err := h.events.FindByID(req.DstEventID)
	if err != nil || dst == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "target event not found"})
		return
	}

	edge, reason, err := h.edges.CreateRelationship(src, dst, models.EdgeRelation(req.Relation))
	if err != nil {
		respondServiceError(c, err, "failed to create relationship")
		return
	}
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}
	h.logAction(c, "edge_created", edge.ID,
		fmt.Sprintf("Connected events %d -> %d (%s)", src.ID, dst.ID, req.Relation))
	c.JSON(http.StatusCreated, edge)
}

// ReverseEdge flips the direction of an edge
func (h *ContentHandler) ReverseEdge(c *gin.Context) {
	edge, ok := h.lookupEdge(c)
	if !ok {
		return
	}

	if err := h.edges.Reverse(edge); err != nil {
		if err == models.ErrNotReversible {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reverse relationship"})
		return
	}
	h.logAction(c, "edge_reversed", edge.ID, "Reversed relationship direction")
	c.JSON(http.StatusOK, edge)
}

// DeleteEdge removes an edge
func (h *ContentHandler) DeleteEdge(c *gin.Context) {
	edge, ok := h.lookupEdge(c)
	if !ok {
		return
	}
	if err := h.edges.Delete(edge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete relationship"})
		return
	}
	h.logAction(c, "edge_deleted", edge.ID, "Deleted relationship")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// EventEdges returns every edge touching an event
func (h *ContentHandler) EventEdges(c *gin.Context) {
	event, ok := h.lookupEventParam(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"edges": h.edges.FindByEvent(event.ID)})
}

// RelationStats returns edge counts grouped by relation type
func (h *ContentHandler) RelationStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.edges.RelationStats()})
}

// RelationTypes returns the known relation kinds with descriptions and
// reversibility
func (h *ContentHandler) RelationTypes(c *gin.Context) {
	types := make([]gin.H, 0, len(models.AllRelations()))
	for _, r := range models.AllRelations() {
		types = append(types, gin.H{
			"relation":    r,
			"description": r.Description(),
			"reversible":  r.Reversible(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}

func (h *ContentHandler) lookupEdge(c *gin.Context) (*models.Edge, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	edge, err := h.edges.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load edge"})
		return nil, false
	}
	if edge == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "edge not found"})
		return nil, false
	}
	return edge, true
}

// --- Stories ---

// ListStories returns a page of stories
func (h *ContentHandler) ListStories(c *gin.Context) {
	limit, offset := pagination(c, 20)
	stories, total, err := h.stories.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories, "total": total})
}

type storyRequest struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	SourceName  string     `json:"source_name"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	Summary     string     `json:"summary"`
	RawText     string     `json:"raw_text"`
}

// CreateStory creates a new story
func (h *ContentHandler) CreateStory(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story := &models.Story{
		URL:         req.URL,
		Title:       req.Title,
		SourceName:  req.SourceName,
		Author:      req.Author,
		PublishedAt: req.PublishedAt,
		Summary:     req.Summary,
		RawText:     req.RawText,
	}
	if err := h.stories.Create(story); err != nil {
		respondServiceError(c, err, "failed to create story")
		return
	}
	h.logAction(c, "story_created", story.ID, fmt.Sprintf("Created story %s", story.URL))
	c.JSON(http.StatusCreated, story)
}

// GetStory returns one story with its tags and topics
func (h *ContentHandler) GetStory(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"story":  story,
		"tags":   h.stories.Tags(story),
		"topics": h.stories.Topics(story),
	})
}

type storyUpdateRequest struct {
	Title       *string    `json:"title"`
	SourceName  *string    `json:"source_name"`
	Author      *string    `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	Summary     *string    `json:"summary"`
	RawText     *string    `json:"raw_text"`
}

// UpdateStory applies a partial update to a story
func (h *ContentHandler) UpdateStory(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}

	var req storyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := services.StoryUpdate{
		Title:       req.Title,
		SourceName:  req.SourceName,
		Author:      req.Author,
		PublishedAt: req.PublishedAt,
		Summary:     req.Summary,
		RawText:     req.RawText,
	}
	if err := h.stories.Update(story, upd); err != nil {
		respondServiceError(c, err, "failed to update story")
		return
	}
	h.logAction(c, "story_updated", story.ID, fmt.Sprintf("Updated story %s", story.URL))
	c.JSON(http.StatusOK, story)
}

// DeleteStory removes a story and its associations
func (h *ContentHandler) DeleteStory(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}
	if err := h.stories.Delete(story); err != nil {
		respondServiceError(c, err, "failed to delete story")
		return
	}
	h.logAction(c, "story_deleted", story.ID, fmt.Sprintf("Deleted story %s", story.URL))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CheckDuplicates reports stored stories that look like duplicates of the
// posted candidate
func (h *ContentHandler) CheckDuplicates(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidate := &models.Story{
		URL:         req.URL,
		Title:       req.Title,
		SourceName:  req.SourceName,
		PublishedAt: req.PublishedAt,
	}
	matches := h.stories.FindDuplicates(candidate)
	c.JSON(http.StatusOK, gin.H{"duplicates": matches, "count": len(matches)})
}

type tagNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddStoryTag attaches a tag to a story by name
func (h *ContentHandler) AddStoryTag(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}

	var req tagNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag name is required"})
		return
	}

	tag, added, err := h.stories.AddTag(story, req.Name)
	if err != nil {
		respondServiceError(c, err, "failed to add tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "added": added})
}

// RemoveStoryTag detaches a tag from a story by name
func (h *ContentHandler) RemoveStoryTag(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}

	removed, err := h.stories.RemoveTag(story, c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove tag"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

type storyTopicRequest struct {
	TopicID uint `json:"topic_id" binding:"required"`
}

// AddStoryTopic attaches a topic to a story
func (h *ContentHandler) AddStoryTopic(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}

	var req storyTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic_id is required"})
		return
	}

	added, err := h.stories.AddTopic(story, req.TopicID)
	if err != nil {
		respondServiceError(c, err, "failed to add topic")
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveStoryTopic detaches a topic from a story
func (h *ContentHandler) RemoveStoryTopic(c *gin.Context) {
	story, ok := h.lookupStory(c)
	if !ok {
		return
	}
	topicID, ok := paramID(c, "topicId")
	if !ok {
		return
	}

	removed, err := h.stories.RemoveTopic(story, topicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove topic"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *ContentHandler) lookupStory(c *gin.Context) (*models.Story, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	story, err := h.stories.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load story"})
		return nil, false
	}
	if story == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return nil, false
	}
	return story, true
}

// --- Tags ---

// ListTags returns every tag in name order, optionally filtered by a
// search term
func (h *ContentHandler) ListTags(c *gin.Context) {
	if term := c.Query("q"); term != "" {
		c.JSON(http.StatusOK, gin.H{"tags": h.tags.SearchByName(term)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": h.tags.AllOrdered()})
}

// PopularTags returns the most-used tags with story counts
func (h *ContentHandler) PopularTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 200 {
		limit = 20
	}
	total, used := h.tags.UsageStats()
	c.JSON(http.StatusOK, gin.H{
		"tags":       h.tags.PopularTags(limit),
		"total_tags": total,
		"used_tags":  used,
	})
}

// DeleteTag removes a tag from the vocabulary
func (h *ContentHandler) DeleteTag(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	tag, err := h.tags.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tag"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
		return
	}
	if err := h.tags.Delete(tag); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete tag"})
		return
	}
	h.logAction(c, "tag_deleted", tag.ID, fmt.Sprintf("Deleted tag %s", tag.Name))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
