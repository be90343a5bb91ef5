package authz

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
)

// ErrForbidden is returned when the active role may not perform an operation.
var ErrForbidden = errors.New("forbidden")

// ErrAuthorizationFailed is returned on an override code mismatch.
var ErrAuthorizationFailed = errors.New("authorization failed")

// ErrNoPendingAction indicates a code was submitted with nothing requested.
var ErrNoPendingAction = errors.New("no pending action")

// Role is the cashier's permission level.
type Role string

const (
	// RoleCashier is the default till operator role.
	RoleCashier Role = "cashier"
	// RoleAdmin unlocks inventory management and sales reports.
	RoleAdmin Role = "admin"
)

// RequireAdmin enforces the role gate for admin-only operations.
func RequireAdmin(role Role) error {
	if role != RoleAdmin {
		return fmt.Errorf("role %q: %w", role, ErrForbidden)
	}
	return nil
}

// Gate implements the manager-override protocol: a privileged action is
// requested, then a secret is submitted; on match the deferred action runs
// exactly once. The gate holds no operation-specific logic. Mismatches leave
// the request pending; retries are unlimited and there is no lockout.
type Gate struct {
	mu        sync.Mutex
	secret    func() string
	pending   func()
	OnAttempt func(ok bool)
}

// NewGate builds a gate whose expected secret is read at submission time, so
// a per-cashier drawer code follows the active session.
func NewGate(secret func() string) *Gate {
	return &Gate{secret: secret}
}

// Request arms the gate with the action to run once authorized. A new
// request replaces any pending one.
func (g *Gate) Request(action func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = action
}

// Submit checks the code against the expected secret. On match the pending
// action runs exactly once and is cleared; on mismatch the action stays
// pending and ErrAuthorizationFailed is returned.
func (g *Gate) Submit(code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return ErrNoPendingAction
	}
	expected := ""
	if g.secret != nil {
		expected = g.secret()
	}
	ok := expected != "" && subtle.ConstantTimeCompare([]byte(code), []byte(expected)) == 1
	if g.OnAttempt != nil {
		g.OnAttempt(ok)
	}
	if !ok {
		return ErrAuthorizationFailed
	}
	action := g.pending
	g.pending = nil
	action()
	return nil
}

// Cancel discards any pending action without running it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}
