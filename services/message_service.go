package services

import (
	"context"
	"errors"
	"time"

	"kindling_server/models"
	apperrors "kindling_server/pkg/errors"

	"github.com/google/uuid"
)

// MessageService owns the per-conversation message ledger: appends, edits,
// deletions and read-state transitions, all authorized against conversation
// participation.
type MessageService struct {
	Store    ConversationStore
	Matches  MatchStore // optional; bumps the pair's lastInteractedAt on sends
	Notifier Notifier
	Clock    func() time.Time
}

func NewMessageService(store ConversationStore, matches MatchStore, notifier Notifier) *MessageService {
	return &MessageService{Store: store, Matches: matches, Notifier: notifier, Clock: time.Now}
}

func (s *MessageService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// load fetches the conversation for (callerID, otherID) and authorizes the
// caller. Blocked conversations reject all ledger mutations.
func (s *MessageService) load(ctx context.Context, callerID, otherID string) (*models.Conversation, string, error) {
	_, key, err := ResolvePair(callerID, otherID)
	if err != nil {
		return nil, "", err
	}

	conv, err := s.Store.GetByKey(ctx, key)
	if errors.Is(err, ErrConversationNotFound) {
		return nil, "", apperrors.NotFound("conversation not found")
	}
	if err != nil {
		return nil, "", apperrors.Unavailable("failed to load conversation", err)
	}
	if !conv.HasParticipant(callerID) {
		return nil, "", apperrors.Forbidden("caller is not a participant")
	}
	return conv, key, nil
}

// Append validates and appends a message. The store applies the push and the
// unread/lastOpened bookkeeping as one atomic update, so concurrent sends to
// the same conversation cannot lose each other's counters.
func (s *MessageService) Append(ctx context.Context, callerID, otherID, text string, media *models.MediaDescriptor) (*models.Message, error) {
	conv, key, err := s.load(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}
	if conv.RequestStatus == models.RequestStatusBlocked {
		return nil, apperrors.Forbidden("conversation is blocked")
	}

	now := s.now()
	msg, err := models.NewMessage(uuid.NewString(), callerID, text, media, now)
	if errors.Is(err, models.ErrEmptyMessage) {
		return nil, apperrors.InvalidArg("message requires text or media")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to build message", err)
	}

	nowStr := now.UTC().Format(time.RFC3339Nano)
	updated, err := s.Store.AppendMessage(ctx, key, msg, conv.OtherParticipant(callerID), nowStr)
	if err != nil {
		return nil, apperrors.Unavailable("failed to append message", err)
	}

	if s.Matches != nil {
		// Best effort; a missing match just means the pair chatted without one.
		_ = s.Matches.Touch(ctx, key, nowStr)
	}

	s.Notifier.Notify(updated.Participants, models.EventMessageAppended, models.MessageAppendedEvent{
		ConversationID: updated.ID,
		Message:        msg,
	})
	return &msg, nil
}

// Messages returns the ledger sorted by timestamp (append order breaking
// ties). A positive limit keeps only the newest messages, still ascending.
func (s *MessageService) Messages(ctx context.Context, callerID, otherID string, limit int) ([]models.Message, error) {
	conv, _, err := s.load(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}

	msgs := append([]models.Message(nil), conv.Messages...)
	models.SortMessages(msgs)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// ledgerRewriteAttempts bounds the optimistic-concurrency retry loop for
// whole-ledger rewrites. Each retry re-reads the row, so contention only
// costs extra reads, never lost messages.
const ledgerRewriteAttempts = 5

// errLedgerUnchanged signals from a mutate callback that the operation is a
// no-op and nothing should be written.
var errLedgerUnchanged = errors.New("ledger unchanged")

// rewriteLedger applies mutate to a fresh snapshot of the conversation and
// writes the rewritten ledger back conditionally on the revision it loaded.
// Losing to a concurrent append (or delete) retries the whole cycle so the
// rewrite is always derived from the ledger it replaces.
func (s *MessageService) rewriteLedger(ctx context.Context, callerID, otherID, failMsg string, mutate func(conv *models.Conversation, now string) error) error {
	var lastErr error
	for attempt := 0; attempt < ledgerRewriteAttempts; attempt++ {
		conv, key, err := s.load(ctx, callerID, otherID)
		if err != nil {
			return err
		}

		now := s.now().UTC().Format(time.RFC3339Nano)
		if err := mutate(conv, now); err != nil {
			if errors.Is(err, errLedgerUnchanged) {
				return nil
			}
			return err
		}

		counts := models.RecomputeUnread(conv.Messages, conv.Participants)
		err = s.Store.ReplaceMessages(ctx, key, conv.Messages, counts, conv.Revision, now)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrStaleConversation) {
			return apperrors.Unavailable(failMsg, err)
		}
		lastErr = err
	}
	return apperrors.Unavailable(failMsg, lastErr)
}

// Edit rewrites a message's text. Only the original sender may edit; the
// first edit preserves the original text.
func (s *MessageService) Edit(ctx context.Context, callerID, otherID, messageID, newText string) (*models.Message, error) {
	if newText == "" {
		return nil, apperrors.InvalidArg("edited text must not be empty")
	}

	var edited models.Message
	err := s.rewriteLedger(ctx, callerID, otherID, "failed to edit message", func(conv *models.Conversation, now string) error {
		idx := findMessage(conv.Messages, messageID)
		if idx < 0 {
			return apperrors.NotFound("message not found")
		}
		msg := &conv.Messages[idx]
		if msg.SenderID != callerID {
			return apperrors.Forbidden("only the sender can edit a message")
		}

		if !msg.IsEdited {
			msg.OriginalText = msg.Text
		}
		msg.Text = newText
		msg.IsEdited = true
		msg.EditedAt = now
		edited = *msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &edited, nil
}

// Delete removes a message from the ledger outright. Only the sender may
// delete; the recipient's unread counter is recomputed so a deleted unread
// message no longer counts.
func (s *MessageService) Delete(ctx context.Context, callerID, otherID, messageID string) error {
	return s.rewriteLedger(ctx, callerID, otherID, "failed to delete message", func(conv *models.Conversation, now string) error {
		idx := findMessage(conv.Messages, messageID)
		if idx < 0 {
			return apperrors.NotFound("message not found")
		}
		if conv.Messages[idx].SenderID != callerID {
			return apperrors.Forbidden("only the sender can delete a message")
		}

		conv.Messages = append(conv.Messages[:idx:idx], conv.Messages[idx+1:]...)
		return nil
	})
}

// MarkRead marks one message addressed to the caller as read.
func (s *MessageService) MarkRead(ctx context.Context, callerID, otherID, messageID string) error {
	return s.rewriteLedger(ctx, callerID, otherID, "failed to mark message as read", func(conv *models.Conversation, now string) error {
		idx := findMessage(conv.Messages, messageID)
		if idx < 0 {
			return apperrors.NotFound("message not found")
		}
		msg := &conv.Messages[idx]
		if msg.SenderID == callerID {
			return apperrors.InvalidArg("cannot mark own message as read")
		}
		if msg.IsRead {
			return errLedgerUnchanged
		}

		msg.IsRead = true
		msg.ReadAt = now
		return nil
	})
}

// MarkAllRead marks every message addressed to the caller as read, zeroes
// the caller's unread counter and refreshes their lastOpenedAt.
func (s *MessageService) MarkAllRead(ctx context.Context, callerID, otherID string) error {
	var lastErr error
	for attempt := 0; attempt < ledgerRewriteAttempts; attempt++ {
		conv, key, err := s.load(ctx, callerID, otherID)
		if err != nil {
			return err
		}

		now := s.now().UTC().Format(time.RFC3339Nano)
		for i := range conv.Messages {
			if conv.Messages[i].SenderID != callerID && !conv.Messages[i].IsRead {
				conv.Messages[i].IsRead = true
				conv.Messages[i].ReadAt = now
			}
		}

		err = s.Store.MarkAllRead(ctx, key, callerID, conv.Messages, conv.Revision, now)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrStaleConversation) {
			return apperrors.Unavailable("failed to mark conversation as read", err)
		}
		lastErr = err
	}
	return apperrors.Unavailable("failed to mark conversation as read", lastErr)
}

// Flag applies the moderation overlay to a message. Either participant may
// flag; the message itself is untouched beyond the overlay fields.
func (s *MessageService) Flag(ctx context.Context, callerID, otherID, messageID, reason string) error {
	if reason == "" {
		return apperrors.InvalidArg("flag reason is required")
	}

	return s.rewriteLedger(ctx, callerID, otherID, "failed to flag message", func(conv *models.Conversation, now string) error {
		idx := findMessage(conv.Messages, messageID)
		if idx < 0 {
			return apperrors.NotFound("message not found")
		}
		conv.Messages[idx].IsFlagged = true
		conv.Messages[idx].FlagReason = reason
		return nil
	})
}

func findMessage(messages []models.Message, messageID string) int {
	for i := range messages {
		if messages[i].MessageID == messageID {
			return i
		}
	}
	return -1
}
