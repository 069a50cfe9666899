package realtime

import (
	"encoding/json"
	"strings"

	"inpstories/internal/models"
)

// Client to server.
const (
	EventJoin              = "join-testimonial"
	EventLeave             = "leave-testimonial"
	EventNewTestimonial    = "new-testimonial"
	EventTestimonialLike   = "testimonial-like"
	EventNewComment        = "new-comment"
	EventCommentLike       = "comment-like"
	EventDeleteTestimonial = "delete-testimonial"
	EventDeleteComment     = "delete-comment"
	EventTyping            = "typing"
	EventStopTyping        = "stop-typing"
)

// Server to client.
const (
	EventTestimonialCreated    = "testimonial-created"
	EventTestimonialLikeUpdate = "testimonial-like-update"
	EventTestimonialDeleted    = "testimonial-deleted"
	EventCommentCreated        = "comment-created"
	EventCommentLikeUpdate     = "comment-like-update"
	EventCommentDeleted        = "comment-deleted"
	EventUserTyping            = "user-typing"
	EventUserStopTyping        = "user-stop-typing"
)

const roomPrefix = "testimonial-"

// Room returns the channel name for one testimonial.
func Room(testimonialID string) string {
	return roomPrefix + testimonialID
}

// Frame is the wire format in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is a frame plus its routing. An empty Room means every client.
type Envelope struct {
	Room    string          `json:"room,omitempty"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
	Exclude string          `json:"exclude,omitempty"` // client id that must not receive it
}

type relayRule struct {
	emit          string
	roomScoped    bool
	excludeSender bool
	// mutating events duplicate what the REST handlers already publish.
	mutating bool
}

var relayRules = map[string]relayRule{
	EventNewTestimonial:    {emit: EventTestimonialCreated, mutating: true},
	EventTestimonialLike:   {emit: EventTestimonialLikeUpdate, roomScoped: true, mutating: true},
	EventNewComment:        {emit: EventCommentCreated, roomScoped: true, mutating: true},
	EventCommentLike:       {emit: EventCommentLikeUpdate, roomScoped: true, mutating: true},
	EventDeleteTestimonial: {emit: EventTestimonialDeleted, mutating: true},
	EventDeleteComment:     {emit: EventCommentDeleted, roomScoped: true, mutating: true},
	EventTyping:            {emit: EventUserTyping, roomScoped: true, excludeSender: true},
	EventStopTyping:        {emit: EventUserStopTyping, roomScoped: true, excludeSender: true},
}

// testimonialRef extracts the testimonial id from a join payload, which is either
// a bare JSON string or an object carrying testimonialId.
func testimonialRef(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var obj struct {
		TestimonialID string `json:"testimonialId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return strings.TrimSpace(obj.TestimonialID)
	}
	return ""
}

// Payloads published by the REST handlers.

type TestimonialLikeUpdate struct {
	TestimonialID string            `json:"testimonialId"`
	UserID        string            `json:"userId"`
	Action        models.LikeAction `json:"action"`
	LikesCount    int               `json:"likesCount"`
	LikedByUser   bool              `json:"likedByUser"`
}

type CommentLikeUpdate struct {
	CommentID     string            `json:"commentId"`
	TestimonialID string            `json:"testimonialId"`
	UserID        string            `json:"userId"`
	Action        models.LikeAction `json:"action"`
	LikesCount    int               `json:"likesCount"`
	LikedByUser   bool              `json:"likedByUser"`
}

type TestimonialDeleted struct {
	TestimonialID string `json:"testimonialId"`
}
