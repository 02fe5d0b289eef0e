package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageKinds(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	media := &MediaDescriptor{URL: "https://cdn/img.jpg", ContentType: "image/jpeg"}

	text, err := NewMessage("m1", "alice", "hi", nil, at)
	require.NoError(t, err)
	assert.Equal(t, MessageKindText, text.Kind)

	mediaOnly, err := NewMessage("m2", "alice", "", media, at)
	require.NoError(t, err)
	assert.Equal(t, MessageKindMedia, mediaOnly.Kind)

	both, err := NewMessage("m3", "alice", "look", media, at)
	require.NoError(t, err)
	assert.Equal(t, MessageKindTextMedia, both.Kind)
}

func TestNewMessageRejectsEmpty(t *testing.T) {
	_, err := NewMessage("m1", "alice", "", nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewMessageStampsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	at := time.Date(2026, 3, 1, 17, 0, 0, 0, loc)

	msg, err := NewMessage("m1", "alice", "hi", nil, at)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00Z", msg.CreatedAt)
}
