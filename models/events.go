package models

// Event names pushed over the real-time fanout. Each payload carries enough
// for a client to act without re-querying.
const (
	EventConversationCreated = "conversation.created"
	EventMessageAppended     = "message.appended"
	EventMatchCreated        = "match.created"
)

type ConversationCreatedEvent struct {
	ConversationID string   `json:"conversationId"`
	Participants   []string `json:"participants"`
	InitiatedBy    string   `json:"initiatedBy"`
	CreatedAt      string   `json:"createdAt"`
}

type MessageAppendedEvent struct {
	ConversationID string  `json:"conversationId"`
	Message        Message `json:"message"`
}

type MatchCreatedEvent struct {
	MatchID       string               `json:"matchId"`
	User1ID       string               `json:"user1Id"`
	User2ID       string               `json:"user2Id"`
	Compatibility CompatibilityMetrics `json:"compatibility"`
	CreatedAt     string               `json:"createdAt"`
}
