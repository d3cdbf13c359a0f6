package permission

import (
	"errors"
	"sync"
)

// Registry maps operation identifiers to required-code expressions.
// Operations are registered during initialization and the registry is
// frozen before the engine starts serving authorization checks.
type Registry struct {
	mu     sync.RWMutex
	ops    map[string]string
	frozen bool
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]string)}
}

// Register attaches a required-code expression to an operation identifier.
// Must be called before [Registry.Freeze].
func (r *Registry) Register(operation, required string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("permission: registry frozen")
	}
	if operation == "" {
		return errors.New("permission: operation identifier empty")
	}
	if _, exists := r.ops[operation]; exists {
		return errors.New("permission: operation already registered: " + operation)
	}

	r.ops[operation] = required
	return nil
}

// Required returns the required-code expression for an operation, or false
// when the operation carries no requirement.
func (r *Registry) Required(operation string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	required, ok := r.ops[operation]
	return required, ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}
