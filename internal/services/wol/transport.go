package wol

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
)

// DefaultPort is the conventional Wake-on-LAN (discard) port.
const DefaultPort = 9

// Transport sends a payload to the local network.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
}

// UDPTransport sends each payload as a single UDP broadcast datagram.
// A socket is opened and released per call.
type UDPTransport struct {
	addr    string
	timeout time.Duration
}

// NewUDPTransport creates a transport targeting broadcastIP:port.
func NewUDPTransport(broadcastIP string, port int, timeout time.Duration) *UDPTransport {
	return &UDPTransport{
		addr:    net.JoinHostPort(broadcastIP, strconv.Itoa(port)),
		timeout: timeout,
	}
}

// Addr returns the destination address.
func (t *UDPTransport) Addr() string {
	return t.addr
}

// Send binds an ephemeral endpoint and writes payload in one datagram.
func (t *UDPTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	dst, err := net.ResolveUDPAddr("udp4", t.addr)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %w", models.ErrNetwork, t.addr, err)
	}

	// The runtime sets SO_BROADCAST on datagram sockets.
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return fmt.Errorf("%w: binding local endpoint: %w", models.ErrNetwork, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("%w: setting write deadline: %w", models.ErrNetwork, err)
		}
	}

	n, err := conn.WriteTo(payload, dst)
	if err != nil {
		return fmt.Errorf("%w: sending to %s: %w", models.ErrNetwork, t.addr, err)
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", models.ErrNetwork, t.addr, n, len(payload))
	}

	return nil
}
