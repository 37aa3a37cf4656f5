package wol

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (*net.UDPConn, int) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, conn.LocalAddr().(*net.UDPAddr).Port
}

func TestUDPTransport_SendsSingleDatagram(t *testing.T) {
	conn, port := listenLoopback(t)

	transport := NewUDPTransport("127.0.0.1", port, time.Second)
	payload := []byte("hello wake")

	require.NoError(t, transport.Send(context.Background(), payload))

	buf := make([]byte, 512)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestUDPTransport_Addr(t *testing.T) {
	transport := NewUDPTransport("255.255.255.255", DefaultPort, 0)
	assert.Equal(t, "255.255.255.255:"+strconv.Itoa(DefaultPort), transport.Addr())
}

func TestUDPTransport_InvalidAddress(t *testing.T) {
	transport := NewUDPTransport("not an ip", 9, time.Second)

	err := transport.Send(context.Background(), []byte{1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNetwork))
}

func TestUDPTransport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := NewUDPTransport("127.0.0.1", 9, time.Second)
	err := transport.Send(ctx, []byte{1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNetwork))
}
