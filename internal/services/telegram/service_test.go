package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() models.TelegramConfig {
	return models.TelegramConfig{
		BotToken: "123456:ABC-DEF",
		ChatID:   "-100123456789",
	}
}

func testNotice() models.WakeNotice {
	return models.WakeNotice{
		Action:   "wake",
		Username: "alice",
		UserID:   "42",
		Target:   "aa:bb:cc:dd:ee:ff",
		Success:  true,
		Time:     time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestSendWakeNotice_Success(t *testing.T) {
	var capturedRequest *http.Request
	var capturedBody sendMessageRequest

	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			capturedRequest = req
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &capturedBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":true}")),
			}, nil
		},
	}

	svc := NewWithClient(testLogger(), testConfig(), httpClient, "https://api.telegram.org")

	result, err := svc.SendWakeNotice(context.Background(), testNotice())

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
	assert.Nil(t, result.Error)

	assert.Equal(t, http.MethodPost, capturedRequest.Method)
	assert.Contains(t, capturedRequest.URL.String(), "/bot123456:ABC-DEF/sendMessage")
	assert.Equal(t, "application/json", capturedRequest.Header.Get("Content-Type"))

	assert.Equal(t, "-100123456789", capturedBody.ChatID)
	assert.Equal(t, "HTML", capturedBody.ParseMode)
	assert.Contains(t, capturedBody.Text, "Wake requested")
	assert.Contains(t, capturedBody.Text, "alice")
}

func TestSendWakeNotice_HTTPError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		},
	}

	svc := NewWithClient(testLogger(), testConfig(), httpClient, "https://api.telegram.org")

	result, err := svc.SendWakeNotice(context.Background(), testNotice())

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "failed to send request")
}

func TestSendWakeNotice_APIError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":false}")),
			}, nil
		},
	}

	svc := NewWithClient(testLogger(), testConfig(), httpClient, "https://api.telegram.org")

	result, err := svc.SendWakeNotice(context.Background(), testNotice())

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "status 400")
}

func TestFormatNotice(t *testing.T) {
	t.Run("wake success", func(t *testing.T) {
		text := formatNotice(testNotice())

		assert.Contains(t, text, "Wake requested")
		assert.Contains(t, text, "alice")
		assert.Contains(t, text, "aa:bb:cc:dd:ee:ff")
		assert.Contains(t, text, "2024-01-15 10:30:00")
		assert.NotContains(t, text, "Error")
	})

	t.Run("shutdown failure", func(t *testing.T) {
		n := testNotice()
		n.Action = "shutdown"
		n.Success = false
		n.Username = ""
		n.ErrorMessage = "failed to connect: <refused>"

		text := formatNotice(n)

		assert.Contains(t, text, "Shutdown requested (failed)")
		assert.Contains(t, text, "42")
		assert.Contains(t, text, "&lt;refused&gt;")
	})
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"<script>", "&lt;script&gt;"},
		{"a & b", "a &amp; b"},
		{"<>&", "&lt;&gt;&amp;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeHTML(tt.input))
		})
	}
}

func TestSendWakeNotice_ContextCancelled(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, context.Canceled
		},
	}

	svc := NewWithClient(testLogger(), testConfig(), httpClient, "https://api.telegram.org")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.SendWakeNotice(ctx, testNotice())

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.NotNil(t, result.Error)
}
