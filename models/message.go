package models

import (
	"errors"
	"time"
)

// MessageKind is the discriminant for what a message carries. It is decided
// once at construction; everything downstream can switch on it instead of
// probing optional fields.
type MessageKind string

const (
	MessageKindText      MessageKind = "text"
	MessageKindMedia     MessageKind = "media"
	MessageKindTextMedia MessageKind = "text_media"
)

// MediaDescriptor is the opaque attachment descriptor returned by the media
// collaborator. It is stored verbatim on the message.
type MediaDescriptor struct {
	URL         string `dynamodbav:"url" json:"url"`
	ContentType string `dynamodbav:"contentType" json:"contentType"`
	SizeBytes   int64  `dynamodbav:"sizeBytes,omitempty" json:"sizeBytes,omitempty"`
	Width       int    `dynamodbav:"width,omitempty" json:"width,omitempty"`
	Height      int    `dynamodbav:"height,omitempty" json:"height,omitempty"`
}

// Message is one entry in a conversation's ledger. The read flag is a single
// boolean per message, which is only correct because conversations are
// strictly two-party: the non-sender is always the sole reader.
type Message struct {
	MessageID string           `dynamodbav:"messageId" json:"messageId"`
	SenderID  string           `dynamodbav:"senderId" json:"senderId"`
	Kind      MessageKind      `dynamodbav:"kind" json:"kind"`
	Text      string           `dynamodbav:"text,omitempty" json:"text,omitempty"`
	Media     *MediaDescriptor `dynamodbav:"media,omitempty" json:"media,omitempty"`
	CreatedAt string           `dynamodbav:"createdAt" json:"createdAt"`

	IsRead bool   `dynamodbav:"isRead" json:"isRead"`
	ReadAt string `dynamodbav:"readAt,omitempty" json:"readAt,omitempty"`

	IsEdited     bool   `dynamodbav:"isEdited,omitempty" json:"isEdited,omitempty"`
	OriginalText string `dynamodbav:"originalText,omitempty" json:"originalText,omitempty"`
	EditedAt     string `dynamodbav:"editedAt,omitempty" json:"editedAt,omitempty"`

	IsFlagged  bool   `dynamodbav:"isFlagged,omitempty" json:"isFlagged,omitempty"`
	FlagReason string `dynamodbav:"flagReason,omitempty" json:"flagReason,omitempty"`
}

var ErrEmptyMessage = errors.New("message requires text or media")

// NewMessage validates the text/media variant and stamps identity and time.
// An empty text with no media is rejected here so call sites never have to
// re-check nullability.
func NewMessage(id, senderID, text string, media *MediaDescriptor, at time.Time) (Message, error) {
	kind := MessageKindText
	switch {
	case text != "" && media != nil:
		kind = MessageKindTextMedia
	case media != nil:
		kind = MessageKindMedia
	case text == "":
		return Message{}, ErrEmptyMessage
	}

	return Message{
		MessageID: id,
		SenderID:  senderID,
		Kind:      kind,
		Text:      text,
		Media:     media,
		CreatedAt: at.UTC().Format(time.RFC3339Nano),
	}, nil
}
