// Package delivery routes outbound messages to the transport that owns a
// sender key, based on its channel prefix (e.g. "telegram:").
package delivery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/cartable/internal/types"
)

// Handler delivers a reply to the sender identified by the key.
type Handler func(sender types.SenderKey, reply types.Reply) error

// Registry maps channel prefixes to delivery handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty delivery registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler for sender keys starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Deliver finds the handler matching the sender key prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Deliver(sender types.SenderKey, reply types.Reply) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(string(sender), prefix) {
			return handler(sender, reply)
		}
	}
	return fmt.Errorf("no delivery handler for sender key: %s", sender)
}
