// Package wol provides Wake-on-LAN operations.
package wol

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for Wake-on-LAN operations.
type Service interface {
	Wake(ctx context.Context) (*models.WOLResult, error)
}

// Impl implements the WOL Service interface for a single target.
type Impl struct {
	packet    Packet
	mac       net.HardwareAddr
	transport Transport
	logger    zerolog.Logger
}

// New creates a WOL service for cfg. The magic packet is built here, so a
// malformed address fails before any wake is requested.
func New(logger zerolog.Logger, cfg models.WOLConfig) (*Impl, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	return NewWithTransport(logger, cfg, NewUDPTransport(cfg.BroadcastIP, port, cfg.SendTimeout))
}

// NewWithTransport creates a WOL service with a custom transport (for testing).
func NewWithTransport(logger zerolog.Logger, cfg models.WOLConfig, transport Transport) (*Impl, error) {
	mac, err := ParseMAC(cfg.MACAddress)
	if err != nil {
		return nil, err
	}

	packet, err := BuildPacket(mac)
	if err != nil {
		return nil, err
	}

	return &Impl{
		packet:    packet,
		mac:       mac,
		transport: transport,
		logger:    logger,
	}, nil
}

// Packet returns a copy of the magic packet.
func (s *Impl) Packet() Packet {
	return s.packet
}

// Target returns the target hardware address.
func (s *Impl) Target() string {
	return s.mac.String()
}

// Wake broadcasts the magic packet once. Send failures are stored in the
// result; the returned error is reserved for a missing transport.
func (s *Impl) Wake(ctx context.Context) (*models.WOLResult, error) {
	if s.transport == nil {
		return nil, fmt.Errorf("wol service has no transport")
	}

	result := &models.WOLResult{}
	start := time.Now()

	s.logger.Info().
		Str("mac", s.mac.String()).
		Msg("sending WOL packet")

	payload := s.packet
	if err := s.transport.Send(ctx, payload[:]); err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result, nil //nolint:nilerr // error is stored in result struct by design
	}

	result.PacketSent = true
	result.BytesSent = PacketSize
	result.Duration = time.Since(start)

	s.logger.Info().
		Dur("duration", result.Duration).
		Msg("WOL packet sent successfully")

	return result, nil
}
