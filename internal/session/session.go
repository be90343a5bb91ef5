package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/authz"
)

// ErrUnknownCashier is returned when no roster entry matches the id.
var ErrUnknownCashier = errors.New("unknown cashier")

// ErrInvalidCredential is returned on a secret mismatch.
var ErrInvalidCredential = errors.New("invalid credential")

// ErrNoSession indicates an operation that requires an active login.
var ErrNoSession = errors.New("no active session")

// Cashier is a static roster entry. The roster is looked up at login and
// never mutated by the terminal core.
type Cashier struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	SecretHash  string     `json:"-"`
	Role        authz.Role `json:"role"`
	DrawerCode  string     `json:"-"`
}

// Manager owns the login state machine: LoggedOut -> LoggedIn -> LoggedOut.
// Exactly one session is active at a time.
type Manager struct {
	mu     sync.RWMutex
	roster map[string]Cashier
	active *Cashier

	Log zerolog.Logger
	Now func() time.Time
}

// NewManager builds a session manager over the provided roster.
func NewManager(roster []Cashier) (*Manager, error) {
	m := &Manager{roster: make(map[string]Cashier, len(roster))}
	for _, c := range roster {
		if strings.TrimSpace(c.ID) == "" || c.SecretHash == "" {
			return nil, fmt.Errorf("roster entry %q incomplete", c.ID)
		}
		if _, dup := m.roster[c.ID]; dup {
			return nil, fmt.Errorf("duplicate cashier id %q", c.ID)
		}
		m.roster[c.ID] = c
	}
	return m, nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Login authenticates a cashier and activates the session. The two failure
// modes stay distinct for logging; callers that face users should collapse
// them into one message.
func (m *Manager) Login(id, secret string) (Cashier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.roster[id]
	if !ok {
		return Cashier{}, fmt.Errorf("cashier %q: %w", id, ErrUnknownCashier)
	}
	match, err := argon2id.ComparePasswordAndHash(secret, c.SecretHash)
	if err != nil {
		return Cashier{}, fmt.Errorf("verify credential: %w", err)
	}
	if !match {
		return Cashier{}, ErrInvalidCredential
	}
	m.active = &c
	m.Log.Info().Str("cashier_id", c.ID).Str("role", string(c.Role)).Time("at", m.now()).Msg("login")
	return c, nil
}

// Logout deactivates the session. Logging out while logged out is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		m.Log.Info().Str("cashier_id", m.active.ID).Time("at", m.now()).Msg("logout")
	}
	m.active = nil
}

// Active returns the logged-in cashier, if any.
func (m *Manager) Active() (Cashier, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return Cashier{}, false
	}
	return *m.active, true
}

// Require returns the active cashier or ErrNoSession.
func (m *Manager) Require() (Cashier, error) {
	c, ok := m.Active()
	if !ok {
		return Cashier{}, ErrNoSession
	}
	return c, nil
}

// MustHash hashes a plaintext secret for roster seeding.
func MustHash(secret string) string {
	hash, err := argon2id.CreateHash(secret, argon2id.DefaultParams)
	if err != nil {
		panic(err)
	}
	return hash
}

// SeedRoster returns the demo roster shipped with the terminal.
func SeedRoster() []Cashier {
	return []Cashier{
		{ID: "20106", DisplayName: "Ana Novak", SecretHash: MustHash("20106"), Role: authz.RoleCashier, DrawerCode: "4106"},
		{ID: "20107", DisplayName: "Marko Horvat", SecretHash: MustHash("20107"), Role: authz.RoleCashier, DrawerCode: "4107"},
		{ID: "90001", DisplayName: "Petra Kos", SecretHash: MustHash("90001"), Role: authz.RoleAdmin, DrawerCode: "9001"},
	}
}
