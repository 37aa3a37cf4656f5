package models

import "time"

// WOLConfig holds Wake-on-LAN configuration.
type WOLConfig struct {
	MACAddress  string
	BroadcastIP string
	Port        int
	SendTimeout time.Duration // bounds bind and write of a single broadcast
}

// WOLResult holds the result of a Wake-on-LAN operation.
type WOLResult struct {
	PacketSent bool
	BytesSent  int
	Duration   time.Duration
	Error      error
}
