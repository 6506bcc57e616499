package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockMessageSender(t *testing.T) {
	// Test mock message sender
	mock := NewMockMessageSender()

	ctx := context.Background()

	// Test sending a message
	err := mock.SendMessage(ctx, "123456789", "Day 1 check-in")
	assert.NoError(t, err)

	// Check if message was recorded
	messages := mock.Sent()
	assert.Len(t, messages, 1)
	assert.Equal(t, "123456789", messages[0].TelegramID)
	assert.Equal(t, "Day 1 check-in", messages[0].Text)

	// Test sending to a second chat
	err = mock.SendMessage(ctx, "987654321", "Reminder:\nDay 1 check-in")
	assert.NoError(t, err)

	messages = mock.Sent()
	assert.Len(t, messages, 2)
	assert.Equal(t, "987654321", messages[1].TelegramID)

	// Test configured failures
	sendErr := errors.New("chat not found")
	mock.FailFor["123456789"] = sendErr

	err = mock.SendMessage(ctx, "123456789", "Day 2 check-in")
	assert.ErrorIs(t, err, sendErr)

	// Failed sends are not recorded
	messages = mock.Sent()
	assert.Len(t, messages, 2)

	// Other chats are unaffected
	err = mock.SendMessage(ctx, "987654321", "Day 2 check-in")
	assert.NoError(t, err)
	assert.Len(t, mock.Sent(), 3)
}

func TestTelegramSenderRejectsBadChatID(t *testing.T) {
	// A non-numeric telegram ID fails before any network call
	sender := &TelegramSender{}

	err := sender.SendMessage(context.Background(), "not-a-number", "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telegram ID")
}
