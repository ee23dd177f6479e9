package domain

import "time"

// Role identifies which inbox screen a session is viewing. The sync engine
// itself is role-agnostic; roles only select the surrounding screen.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RolePerformer Role = "performer"
)

// ValidRole reports whether s names a known inbox role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAttendee, RoleOrganizer, RolePerformer:
		return true
	}
	return false
}

// Conversation is a messaging thread summary shown in an inbox list.
// A 1:1 conversation has a ParticipantID; an empty ParticipantID marks a
// group conversation, which uses Title instead of the participant name.
type Conversation struct {
	ID                string    `json:"id"`
	ParticipantID     string    `json:"participantId"`
	ParticipantName   string    `json:"participantName"`
	ParticipantAvatar string    `json:"participantAvatar,omitempty"`
	Title             string    `json:"conversationTitle,omitempty"`
	LastMessage       string    `json:"lastMessage"`
	LastMessageTime   time.Time `json:"lastMessageTime"`
	UnreadCount       int       `json:"unreadCount"`
	IsActive          bool      `json:"isActive"`
}

// IsGroup reports whether the conversation is multi-party.
func (c Conversation) IsGroup() bool {
	return c.ParticipantID == ""
}

// DisplayName returns the title for groups and the participant name for
// 1:1 conversations.
func (c Conversation) DisplayName() string {
	if c.IsGroup() && c.Title != "" {
		return c.Title
	}
	return c.ParticipantName
}

// Message is a single message within a conversation. The sync engine only
// fetches these as an authorization probe and discards the payload; the
// type exists to give the transport contract a concrete shape.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}
