package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/utils"
)

const testSecret = "test-secret-key-12345"

// memStore is an in-memory AccountStore with the same CAS semantics as the
// database-backed one.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*models.UserAccount // keyed by id
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*models.UserAccount)}
}

func (s *memStore) add(id, username, password string) *models.UserAccount {
	hash, _ := utils.HashPassword(password)
	acc := &models.UserAccount{ID: id, Username: username, Password: hash, Role: "user"}
	s.accounts[id] = acc
	return acc
}

func (s *memStore) AccountByUsername(username string) (*models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.Username == username {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) AccountByID(id string) (*models.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) SwapSession(id string, old, new *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	stored := acc.CurrentSessionID
	if (stored == nil) != (old == nil) {
		return false, nil
	}
	if stored != nil && *stored != *old {
		return false, nil
	}
	acc.CurrentSessionID = new
	acc.IsSessionActive = new != nil
	return true, nil
}

func (s *memStore) ClearSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		acc.CurrentSessionID = nil
		acc.IsSessionActive = false
	}
	return nil
}

func newTestGuard() (*Guard, *memStore) {
	store := newMemStore()
	store.add("u1", "maria", "secret123")
	return NewGuard(store, testSecret), store
}

func TestLoginAndAuthenticate(t *testing.T) {
	guard, _ := newTestGuard()

	token, user, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("Token should not be empty")
	}
	if user.CurrentSessionID == nil {
		t.Fatal("Login must persist a session id")
	}

	claims, err := guard.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "maria" || claims.Role != "user" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.SessionID != *user.CurrentSessionID {
		t.Error("Token session id should match the stored session id")
	}
}

func TestInvalidCredentials(t *testing.T) {
	guard, _ := newTestGuard()

	if _, _, err := guard.Login("maria", "wrongpass", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Wrong password should fail ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := guard.Login("nobody", "secret123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Unknown user should fail ErrInvalidCredentials, got %v", err)
	}
}

func TestForceLoginSupersedesSession(t *testing.T) {
	guard, _ := newTestGuard()

	t1, _, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("First login failed: %v", err)
	}

	t2, _, err := guard.Login("maria", "secret123", true)
	if err != nil {
		t.Fatalf("Force login failed: %v", err)
	}

	// The old token is dead even though it has not expired
	if _, err := guard.Authenticate(t1); !errors.Is(err, ErrSessionSuperseded) {
		t.Errorf("Superseded token should fail ErrSessionSuperseded, got %v", err)
	}
	if !errors.Is(ErrSessionSuperseded, ErrUnauthorized) {
		t.Error("Supersession must count as unauthorized")
	}

	// The new token works
	if _, err := guard.Authenticate(t2); err != nil {
		t.Errorf("Fresh token rejected: %v", err)
	}
}

func TestConflictWithoutForce(t *testing.T) {
	guard, _ := newTestGuard()

	t1, _, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("First login failed: %v", err)
	}

	_, _, err = guard.Login("maria", "secret123", false)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("Second login should conflict, got %v", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("Conflict must stay distinguishable from auth failure")
	}

	// The conflict must not rotate the session: original token stays valid
	if _, err := guard.Authenticate(t1); err != nil {
		t.Errorf("Original token should survive a blocked login: %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	guard, _ := newTestGuard()

	token, user, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := guard.Logout(user.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := guard.Authenticate(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Token should be dead after logout, got %v", err)
	}

	// And a plain login works again afterwards
	if _, _, err := guard.Login("maria", "secret123", false); err != nil {
		t.Errorf("Login after logout should not conflict: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	store := newMemStore()
	store.add("u1", "maria", "secret123")
	guard := NewGuard(store, testSecret).WithTTL(-time.Minute)

	token, _, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := guard.Authenticate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expired token should fail ErrTokenInvalid, got %v", err)
	}
}

func TestTamperedToken(t *testing.T) {
	guard, _ := newTestGuard()

	token, _, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	other := NewGuard(newMemStore(), "another-secret")
	if _, err := other.Authenticate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Foreign-key token should fail ErrTokenInvalid, got %v", err)
	}

	if _, err := guard.Authenticate(token + "x"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Mangled token should fail ErrTokenInvalid, got %v", err)
	}
}

func TestDeletedAccount(t *testing.T) {
	guard, store := newTestGuard()

	token, _, err := guard.Login("maria", "secret123", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	store.mu.Lock()
	delete(store.accounts, "u1")
	store.mu.Unlock()

	if _, err := guard.Authenticate(token); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Vanished account should fail ErrAccountNotFound, got %v", err)
	}
}

// lostCASStore simulates another login landing between the guard's read and
// its compare-and-set write.
type lostCASStore struct {
	*memStore
	raced bool
}

func (s *lostCASStore) SwapSession(id string, old, new *string) (bool, error) {
	if !s.raced {
		s.raced = true
		rival := "rival-session"
		s.memStore.accounts[id].CurrentSessionID = &rival
	}
	return s.memStore.SwapSession(id, old, new)
}

func TestLoginRaceLoserConflicts(t *testing.T) {
	store := &lostCASStore{memStore: newMemStore()}
	store.add("u1", "maria", "secret123")
	guard := NewGuard(store, testSecret)

	_, _, err := guard.Login("maria", "secret123", false)
	if !errors.Is(err, ErrSessionActive) {
		t.Errorf("Race loser should surface as session conflict, got %v", err)
	}
}
