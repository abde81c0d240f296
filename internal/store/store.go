// Package store is the GORM-backed storage collaborator for the session
// guard and the reconciliation endpoint.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nrlsb/Logistica-Remitos/internal/database"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/reconcile"
)

// Store wraps the database handle. It satisfies session.AccountStore.
type Store struct {
	db *database.DB
}

// NewStore creates a Store over an open database handle.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// AccountByUsername returns the account or nil when none exists.
func (s *Store) AccountByUsername(username string) (*models.UserAccount, error) {
	var account models.UserAccount
	err := s.db.Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AccountByID returns the account or nil when none exists.
func (s *Store) AccountByID(id string) (*models.UserAccount, error) {
	var account models.UserAccount
	err := s.db.Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SwapSession rotates current_session_id with compare-and-set semantics:
// the update only lands if the stored value still equals old. IS NOT
// DISTINCT FROM makes the null case (no active session) comparable.
func (s *Store) SwapSession(id string, old, new *string) (bool, error) {
	res := s.db.Model(&models.UserAccount{}).
		Where("id = ? AND current_session_id IS NOT DISTINCT FROM ?", id, old).
		Updates(map[string]interface{}{
			"current_session_id": new,
			"is_session_active":  new != nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearSession nulls current_session_id unconditionally (logout).
func (s *Store) ClearSession(id string) error {
	return s.db.Model(&models.UserAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_session_id": nil,
			"is_session_active":  false,
		}).Error
}

// ExpectedItems loads the expected item list for an order number. A nil
// slice with no error signals "order not found", which the reconciliation
// engine treats as no baseline.
func (s *Store) ExpectedItems(orderNumber string) ([]reconcile.ExpectedItem, error) {
	var pre models.PreRemito
	err := s.db.Where("order_number = ?", orderNumber).First(&pre).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items := []reconcile.ExpectedItem{}
	if len(pre.Items) > 0 {
		if err := json.Unmarshal(pre.Items, &items); err != nil {
			return nil, fmt.Errorf("decode expected items for %s: %w", orderNumber, err)
		}
	}
	return items, nil
}
