package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

const (
	ConversationInitiated = "INITIATED"
	ConversationAccepted  = "ACCEPTED"
	ConversationBlocked   = "BLOCKED"
)

const (
	CallStateIdle    = "idle"
	CallStateCalling = "calling"
	CallStateActive  = "active"
)

const (
	MessageTypeText       = "text/plain"
	MessageTypeVoice      = "audio/voice"
	MessageTypeMissedCall = "call/missed"
)

// CanonicalPair sorts two profile ids into the stored order: byte-wise
// comparison of the raw UUIDs, independent of who initiates.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

// Conversation is the single row per unordered profile pair. ProfileAID is
// always the canonically lower id; the unique index on the pair is the
// backstop against concurrent duplicate creates.
type Conversation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileAID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair,priority:1;column:profile_a_id" json:"profile_a_id"`
	ProfileBID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair,priority:2;index;column:profile_b_id" json:"profile_b_id"`

	Status      string    `gorm:"size:16;not null;column:status" json:"status"`
	InitiatorID uuid.UUID `gorm:"type:uuid;not null;column:initiator_id" json:"initiator_id"`

	CallState     string     `gorm:"size:16;not null;default:idle;column:call_state" json:"call_state"`
	CallerID      *uuid.UUID `gorm:"type:uuid;column:caller_id" json:"caller_id,omitempty"`
	CallStartedAt *time.Time `gorm:"column:call_started_at" json:"call_started_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

func (c *Conversation) HasParticipant(profileID uuid.UUID) bool {
	return c.ProfileAID == profileID || c.ProfileBID == profileID
}

func (c *Conversation) CounterpartOf(profileID uuid.UUID) (uuid.UUID, bool) {
	if c.ProfileAID == profileID {
		return c.ProfileBID, true
	}
	if c.ProfileBID == profileID {
		return c.ProfileAID, true
	}
	return uuid.Nil, false
}

// CanSend decides whether sender may append the next message. While the
// conversation is INITIATED only the non-initiator may send; the reply flips
// the status to ACCEPTED.
func (c *Conversation) CanSend(sender uuid.UUID) bool {
	if !c.HasParticipant(sender) {
		return false
	}
	switch c.Status {
	case ConversationAccepted:
		return true
	case ConversationInitiated:
		return sender != c.InitiatorID
	default:
		return false
	}
}

// ConversationParticipant holds participant-local state. Each side mutates
// only its own row; nothing here is inferred from the counterpart.
type ConversationParticipant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_pair,priority:1;column:conversation_id" json:"conversation_id"`
	ProfileID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_pair,priority:2;index;column:profile_id" json:"profile_id"`

	LastReadAt *time.Time `gorm:"column:last_read_at" json:"last_read_at,omitempty"`
	IsMuted    bool       `gorm:"not null;default:false;column:is_muted" json:"is_muted"`
	IsArchived bool       `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	IsCallable bool       `gorm:"not null;default:true;column:is_callable" json:"is_callable"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConversationParticipant) TableName() string { return "conversation_participant" }

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;column:conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;column:sender_id" json:"sender_id"`
	Content        string    `gorm:"not null;column:content" json:"content"`
	MessageType    string    `gorm:"size:64;not null;default:text/plain;column:message_type" json:"message_type"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`

	Attachment *MessageAttachment `gorm:"foreignKey:MessageID" json:"attachment,omitempty"`
}

func (Message) TableName() string { return "message" }

type MessageAttachment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:message_id" json:"message_id"`
	FileKey         string    `gorm:"not null;column:file_key" json:"file_key"`
	MimeType        string    `gorm:"size:128;not null;column:mime_type" json:"mime_type"`
	SizeBytes       int64     `gorm:"not null;default:0;column:size_bytes" json:"size_bytes"`
	DurationSeconds *float64  `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MessageAttachment) TableName() string { return "message_attachment" }
