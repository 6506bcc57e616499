package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"
)

// MessageSender delivers ping texts to a participant's Telegram chat.
type MessageSender interface {
	SendMessage(ctx context.Context, telegramID, text string) error
}

// TelegramSender implements MessageSender on top of the Telegram Bot API.
type TelegramSender struct {
	bot *tele.Bot
}

// NewTelegramSender creates a Telegram sender from a bot token.
func NewTelegramSender(token string) (*TelegramSender, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramSender{bot: bot}, nil
}

// SendMessage sends an HTML-formatted message to the chat identified by telegramID.
func (s *TelegramSender) SendMessage(ctx context.Context, telegramID, text string) error {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram ID %q: %w", telegramID, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = s.bot.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

// SentMessage records one delivery made through MockMessageSender.
type SentMessage struct {
	TelegramID string
	Text       string
}

// MockMessageSender is a mock implementation of MessageSender for testing
type MockMessageSender struct {
	mu       sync.Mutex
	Messages []SentMessage
	FailFor  map[string]error
}

// NewMockMessageSender creates a mock message sender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{FailFor: make(map[string]error)}
}

// SendMessage records the message instead of delivering it.
func (m *MockMessageSender) SendMessage(_ context.Context, telegramID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailFor[telegramID]; ok {
		return err
	}

	m.Messages = append(m.Messages, SentMessage{TelegramID: telegramID, Text: text})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockMessageSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}
