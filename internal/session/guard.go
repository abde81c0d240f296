// Package session enforces the single-active-session-per-account invariant.
// Every login rotates a session id stored on the account row; every
// authenticated request compares the id embedded in the token against the
// stored value, which makes a still-unexpired token revocable by any later
// login or logout.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/utils"
)

// DefaultTokenTTL matches the original 1h credential expiry.
const DefaultTokenTTL = time.Hour

// AccountStore is the storage collaborator the guard runs against.
type AccountStore interface {
	// AccountByUsername returns nil without error when no account exists.
	AccountByUsername(username string) (*models.UserAccount, error)
	// AccountByID returns nil without error when no account exists.
	AccountByID(id string) (*models.UserAccount, error)
	// SwapSession sets current_session_id to new only if it still equals old
	// (compare-and-set). Reports false when the stored value moved, which
	// means a concurrent login won the race.
	SwapSession(id string, old, new *string) (bool, error)
	// ClearSession unconditionally nulls current_session_id.
	ClearSession(id string) error
}

// Guard issues and validates session-bound credentials.
type Guard struct {
	store  AccountStore
	secret string
	ttl    time.Duration
}

// Claims are the token fields exposed to request handlers.
type Claims struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
}

// NewGuard creates a Guard with the default 1h token lifetime.
func NewGuard(store AccountStore, secret string) *Guard {
	return &Guard{store: store, secret: secret, ttl: DefaultTokenTTL}
}

// WithTTL overrides the token lifetime (tests use short expiries).
func (g *Guard) WithTTL(ttl time.Duration) *Guard {
	g.ttl = ttl
	return g
}

// Login verifies credentials and rotates the account's session id.
//
// With an active session and force=false it fails ErrSessionActive without
// touching the stored id, so the existing token stays valid and the caller
// can ask for force confirmation. With force=true (or no active session) a
// fresh session id is persisted, which immediately invalidates every
// previously issued token for the account.
func (g *Guard) Login(username, password string, force bool) (string, *models.UserAccount, error) {
	account, err := g.store.AccountByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil || !utils.CheckPasswordHash(password, account.Password) {
		return "", nil, ErrInvalidCredentials
	}

	if account.CurrentSessionID != nil && !force {
		return "", nil, ErrSessionActive
	}

	sessionID := uuid.NewString()
	swapped, err := g.store.SwapSession(account.ID, account.CurrentSessionID, &sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("session swap: %w", err)
	}
	if !swapped {
		// A concurrent login rotated the id between our read and write
		return "", nil, ErrSessionActive
	}
	account.CurrentSessionID = &sessionID
	account.IsSessionActive = true

	token, err := utils.GenerateSessionToken(account, sessionID, g.secret, g.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("token generation: %w", err)
	}

	return token, account, nil
}

// Authenticate validates a token cryptographically and against the stored
// session id. The three failure modes (bad/expired token, deleted account,
// superseded session) all unwrap to ErrUnauthorized.
func (g *Guard) Authenticate(tokenString string) (*Claims, error) {
	raw, err := utils.ValidateToken(tokenString, g.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID, _ := raw["id"].(string)
	sessionID, _ := raw["session_id"].(string)
	if userID == "" || sessionID == "" {
		return nil, ErrTokenInvalid
	}

	account, err := g.store.AccountByID(userID)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if account.CurrentSessionID == nil || *account.CurrentSessionID != sessionID {
		return nil, ErrSessionSuperseded
	}

	username, _ := raw["username"].(string)
	role, _ := raw["role"].(string)
	return &Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		SessionID: sessionID,
	}, nil
}

// Logout clears the account's session id. Every token issued so far for the
// account fails Authenticate from this point on.
func (g *Guard) Logout(userID string) error {
	return g.store.ClearSession(userID)
}
