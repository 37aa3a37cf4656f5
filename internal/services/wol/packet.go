package wol

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/fgeck/wolbridge/internal/models"
	"github.com/mdlayher/wol"
)

const (
	// MACLength is the number of octets in a target hardware address.
	MACLength = 6
	// PacketSize is the length of a magic packet without password.
	PacketSize = 6 + 16*MACLength
)

// Packet is a magic packet: six 0xFF bytes followed by the target
// address repeated 16 times. It is a value type so copies never alias.
type Packet [PacketSize]byte

// Bytes returns a fresh slice holding the packet.
func (p Packet) Bytes() []byte {
	b := make([]byte, PacketSize)
	copy(b, p[:])
	return b
}

// InvalidAddressError reports a MAC address that cannot be used as a wake target.
type InvalidAddressError struct {
	Address string
	Token   string // offending octet, or the whole address for count errors
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid MAC address %q: %s (%q)", e.Address, e.Reason, e.Token)
}

// Unwrap classifies the error as a configuration error.
func (e *InvalidAddressError) Unwrap() error {
	return models.ErrConfig
}

// ParseMAC parses a hex-octet MAC address such as AA-BB-CC-DD-EE-FF.
// Octets may be separated by '-' or ':' and must be exactly two hex digits.
func ParseMAC(s string) (net.HardwareAddr, error) {
	sep := "-"
	if !strings.Contains(s, sep) {
		sep = ":"
	}

	tokens := strings.Split(s, sep)
	if len(tokens) != MACLength {
		return nil, &InvalidAddressError{
			Address: s,
			Token:   s,
			Reason:  fmt.Sprintf("expected %d octets, got %d", MACLength, len(tokens)),
		}
	}

	mac := make(net.HardwareAddr, MACLength)
	for i, tok := range tokens {
		if len(tok) != 2 {
			return nil, &InvalidAddressError{Address: s, Token: tok, Reason: "octet must be two hex digits"}
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, &InvalidAddressError{Address: s, Token: tok, Reason: "octet is not hexadecimal"}
		}
		mac[i] = byte(v)
	}

	return mac, nil
}

// BuildPacket encodes the magic packet for mac.
func BuildPacket(mac net.HardwareAddr) (Packet, error) {
	var p Packet

	if len(mac) != MACLength {
		return p, &InvalidAddressError{
			Address: mac.String(),
			Token:   mac.String(),
			Reason:  fmt.Sprintf("expected %d bytes, got %d", MACLength, len(mac)),
		}
	}

	mp := &wol.MagicPacket{Target: mac}
	b, err := mp.MarshalBinary()
	if err != nil {
		return p, fmt.Errorf("encoding magic packet: %w", err)
	}
	if len(b) != PacketSize {
		return p, fmt.Errorf("encoding magic packet: got %d bytes, want %d", len(b), PacketSize)
	}

	copy(p[:], b)
	return p, nil
}
