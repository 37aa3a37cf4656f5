//go:build e2e

package e2e

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/fgeck/wolbridge/internal/services/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// Sends a real broadcast on the local network.
func TestWOL_Broadcast_E2E(t *testing.T) {
	mac := os.Getenv("TEST_WOL_MAC")
	if mac == "" {
		t.Skip("TEST_WOL_MAC not set")
	}

	broadcastIP := os.Getenv("TEST_WOL_BROADCAST_IP")
	if broadcastIP == "" {
		broadcastIP = "255.255.255.255"
	}

	svc, err := wol.New(testLogger(), models.WOLConfig{
		MACAddress:  mac,
		BroadcastIP: broadcastIP,
		Port:        wol.DefaultPort,
		SendTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	result, err := svc.Wake(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result.Error)
	assert.True(t, result.PacketSent)
	assert.Equal(t, wol.PacketSize, result.BytesSent)
}
