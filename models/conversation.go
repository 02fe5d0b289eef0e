package models

import (
	"sort"
	"time"
)

// RequestStatus tracks the chat-request handshake on a conversation.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusBlocked  RequestStatus = "blocked"
)

// Conversation is the durable entity for one unordered participant pair.
// ConversationKey is the canonical pair key and the table's partition key;
// the uniqueness of that key is what makes creation exactly-once.
//
// The message ledger and the per-participant unread/lastOpened maps live on
// the item itself so an append can adjust all of them in one atomic update.
type Conversation struct {
	ConversationKey string   `dynamodbav:"conversationKey" json:"conversationKey"`
	ID              string   `dynamodbav:"id" json:"id"`
	Participants    []string `dynamodbav:"participants" json:"participants"`

	Messages []Message `dynamodbav:"messages" json:"messages"`

	RequestStatus    RequestStatus `dynamodbav:"requestStatus" json:"requestStatus"`
	RequestInitiator string        `dynamodbav:"requestInitiator" json:"requestInitiator"`
	BlockedBy        []string      `dynamodbav:"blockedBy,stringset,omitempty" json:"blockedBy,omitempty"`
	DeletedBy        []string      `dynamodbav:"deletedBy,stringset,omitempty" json:"deletedBy,omitempty"`

	UnreadCounts map[string]int    `dynamodbav:"unreadCounts" json:"unreadCounts"`
	LastOpenedAt map[string]string `dynamodbav:"lastOpenedAt" json:"lastOpenedAt"`

	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdatedAt string `dynamodbav:"lastUpdatedAt" json:"lastUpdatedAt"`

	// Revision counts ledger-affecting writes. Whole-ledger rewrites are
	// conditional on the revision they loaded, so a rewrite racing an append
	// fails and retries instead of erasing the appended message.
	Revision int64 `dynamodbav:"revision" json:"revision"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// DeletedFor reports whether userID has soft-deleted this conversation.
func (c *Conversation) DeletedFor(userID string) bool {
	for _, d := range c.DeletedBy {
		if d == userID {
			return true
		}
	}
	return false
}

// DeletedByAll reports whether every participant has soft-deleted, which
// makes the conversation eligible for hard deletion.
func (c *Conversation) DeletedByAll() bool {
	for _, p := range c.Participants {
		if !c.DeletedFor(p) {
			return false
		}
	}
	return true
}

// UnreadFor returns userID's unread counter, zero when absent.
func (c *Conversation) UnreadFor(userID string) int {
	return c.UnreadCounts[userID]
}

// Timestamp parses the message's creation time. A zero time is returned for
// unparseable values so sorting stays total.
func (m Message) Timestamp() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortMessages orders a ledger by timestamp, oldest first. The sort is
// stable, so messages with equal timestamps keep their append order.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp().Before(messages[j].Timestamp())
	})
}

// RecomputeUnread derives each participant's unread counter from the ledger:
// the number of unread messages addressed to them. Used whenever the ledger
// is rewritten so counters always agree with message state.
func RecomputeUnread(messages []Message, participants []string) map[string]int {
	counts := map[string]int{}
	for _, p := range participants {
		counts[p] = 0
	}
	for _, m := range messages {
		for _, p := range participants {
			if m.SenderID != p && !m.IsRead {
				counts[p]++
			}
		}
	}
	return counts
}
