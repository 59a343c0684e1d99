// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

type SenderKey string
type RunID string
type ParentID string
type StudentID string
type SchoolID string

func NewRunID() RunID {
	return RunID(uuid.New().String())
}

// NewSenderKey builds a channel-qualified sender key, e.g.
// NewSenderKey("telegram", "12345") -> "telegram:12345".
func NewSenderKey(parts ...string) SenderKey {
	return SenderKey(strings.Join(parts, ":"))
}

// Channel returns the transport prefix of the key ("telegram", "whatsapp", ...).
func (k SenderKey) Channel() string {
	s := string(k)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i]
	}
	return s
}

// Address returns the transport-local address part of the key: the phone
// number or chat identifier used for parent authentication.
func (k SenderKey) Address() string {
	s := string(k)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
