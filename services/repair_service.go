package services

import (
	"context"
	"fmt"
	"log"

	"kindling_server/models"
)

// RepairService is the offline reconciliation pass for conversations
// persisted before creation was idempotent (or damaged since): rows that
// should share one canonical pair key are merged into a single surviving
// row with every message preserved. Running it on clean data is a no-op, so
// it is safe to re-run at any time.
type RepairService struct {
	Store ConversationStore
}

func NewRepairService(store ConversationStore) *RepairService {
	return &RepairService{Store: store}
}

type RepairReport struct {
	Scanned         int `json:"scanned"`
	DuplicateGroups int `json:"duplicateGroups"`
	Merged          int `json:"merged"`
	Deleted         int `json:"deleted"`
}

// Run scans every conversation, groups rows by their canonical pair key
// (recomputed from the participants, not trusted from the stored key), and
// collapses each group: the row with the latest lastUpdatedAt survives,
// messages from all rows are merged (deduplicated by message id, re-sorted
// by timestamp), per-user state is unioned and unread counters recomputed.
func (s *RepairService) Run(ctx context.Context, dryRun bool) (RepairReport, error) {
	var report RepairReport

	convs, err := s.Store.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to scan conversations: %w", err)
	}
	report.Scanned = len(convs)

	groups := map[string][]models.Conversation{}
	for _, conv := range convs {
		if len(conv.Participants) != 2 {
			log.Printf("repair: skipping malformed conversation %s (%d participants)", conv.ID, len(conv.Participants))
			continue
		}
		_, key, err := ResolvePair(conv.Participants[0], conv.Participants[1])
		if err != nil {
			log.Printf("repair: skipping conversation %s: %v", conv.ID, err)
			continue
		}
		groups[key] = append(groups[key], conv)
	}

	for key, group := range groups {
		// Clean case: one row already stored under its canonical key.
		if len(group) == 1 && group[0].ConversationKey == key {
			continue
		}
		if len(group) > 1 {
			report.DuplicateGroups++
		}

		merged := mergeGroup(key, group)
		report.Merged++

		if dryRun {
			continue
		}

		if err := s.Store.Save(ctx, merged); err != nil {
			return report, fmt.Errorf("failed to save merged conversation for %s: %w", key, err)
		}
		for _, row := range group {
			if row.ConversationKey == key {
				continue
			}
			if err := s.Store.Delete(ctx, row.ConversationKey); err != nil {
				return report, fmt.Errorf("failed to delete duplicate row %s: %w", row.ConversationKey, err)
			}
			report.Deleted++
		}
	}

	return report, nil
}

// mergeGroup collapses duplicate rows for one canonical key. The winner
// (latest lastUpdatedAt, id as a deterministic tie-break) contributes all
// scalar state; ledgers are unioned.
func mergeGroup(key string, group []models.Conversation) *models.Conversation {
	winner := group[0]
	for _, row := range group[1:] {
		if row.LastUpdatedAt > winner.LastUpdatedAt ||
			(row.LastUpdatedAt == winner.LastUpdatedAt && row.ID > winner.ID) {
			winner = row
		}
	}

	merged := winner
	merged.ConversationKey = key
	if pair, _, err := ResolvePair(winner.Participants[0], winner.Participants[1]); err == nil {
		merged.Participants = pair[:]
	}

	seen := map[string]bool{}
	var messages []models.Message
	for _, row := range group {
		for _, msg := range row.Messages {
			if seen[msg.MessageID] {
				continue
			}
			seen[msg.MessageID] = true
			messages = append(messages, msg)
		}
	}
	models.SortMessages(messages)
	merged.Messages = messages

	merged.BlockedBy = unionStrings(group, func(c models.Conversation) []string { return c.BlockedBy })
	merged.DeletedBy = unionStrings(group, func(c models.Conversation) []string { return c.DeletedBy })
	if len(merged.BlockedBy) > 0 {
		merged.RequestStatus = models.RequestStatusBlocked
	}

	merged.UnreadCounts = models.RecomputeUnread(messages, merged.Participants)
	if merged.LastOpenedAt == nil {
		merged.LastOpenedAt = map[string]string{}
	}

	return &merged
}

func unionStrings(group []models.Conversation, field func(models.Conversation) []string) []string {
	var out []string
	for _, row := range group {
		for _, v := range field(row) {
			if !contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}
