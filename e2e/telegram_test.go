//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTelegramConfig(t *testing.T) models.TelegramConfig {
	t.Helper()

	botToken := os.Getenv("TEST_TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		t.Skip("TEST_TELEGRAM_BOT_TOKEN not set")
	}

	chatID := os.Getenv("TEST_TELEGRAM_CHAT_ID")
	if chatID == "" {
		t.Skip("TEST_TELEGRAM_CHAT_ID not set")
	}

	return models.TelegramConfig{
		BotToken: botToken,
		ChatID:   chatID,
	}
}

func TestTelegramSendWakeNotice_E2E(t *testing.T) {
	svc := telegram.New(testLogger(), getTelegramConfig(t))

	result, err := svc.SendWakeNotice(context.Background(), models.WakeNotice{
		Action:   "wake",
		Username: "e2e-test",
		UserID:   "1",
		Target:   "aa:bb:cc:dd:ee:ff",
		Success:  true,
		Time:     time.Now(),
	})

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
	assert.Nil(t, result.Error)
}

func TestTelegramSendFailedNotice_E2E(t *testing.T) {
	svc := telegram.New(testLogger(), getTelegramConfig(t))

	result, err := svc.SendWakeNotice(context.Background(), models.WakeNotice{
		Action:       "wake",
		Username:     "e2e-test",
		Target:       "aa:bb:cc:dd:ee:ff",
		Success:      false,
		Time:         time.Now(),
		ErrorMessage: "network error: sendto: network is unreachable",
	})

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
}

func TestTelegramInvalidToken_E2E(t *testing.T) {
	svc := telegram.New(testLogger(), models.TelegramConfig{
		BotToken: "invalid_token",
		ChatID:   "123456",
	})

	result, err := svc.SendWakeNotice(context.Background(), models.WakeNotice{Action: "wake", Time: time.Now()})

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.NotNil(t, result.Error)
}
