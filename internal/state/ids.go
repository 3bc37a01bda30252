package state

import "github.com/google/uuid"

// NewPathID returns a fresh path identity.
func NewPathID() string {
	return uuid.NewString()
}
