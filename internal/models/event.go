package models

// Event types published after a successful mutation.
const (
	EventUserRegistered = "user.registered"
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventCommentCreated = "comment.created"
	EventCommentDeleted = "comment.deleted"
)

// Event describes a change to blog data, published to Kafka.
type Event struct {
	EventID    string `json:"event_id"`    // Unique identifier of the event
	Timestamp  int64  `json:"timestamp"`   // Unix timestamp (seconds)
	Type       string `json:"type"`        // One of the Event* constants
	UserID     int64  `json:"user_id"`     // Acting user
	ResourceID int64  `json:"resource_id"` // Affected user, post or comment
}
