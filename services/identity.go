package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identity names the owner of a cart: a registered user or an anonymous
// session. Exactly one of the two fields is set. Every cart operation takes
// an explicit Identity instead of reading ambient session state.
type Identity struct {
	UserID     *uint
	SessionKey *string
}

// UserIdentity returns the identity of a registered user.
func UserIdentity(userID uint) Identity {
	return Identity{UserID: &userID}
}

// GuestIdentity returns the identity of an anonymous session.
func GuestIdentity(sessionKey string) Identity {
	return Identity{SessionKey: &sessionKey}
}

// IsUser reports whether this identity belongs to a registered user.
func (i Identity) IsUser() bool {
	return i.UserID != nil
}

// lockForUpdate adds a row-level FOR UPDATE lock on postgres. SQLite (used
// by the test databases) rejects the clause; its single-writer transactions
// provide the serialization there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// sizeScope appends the nullable size condition shared by every cart-item
// lookup: NULL size only ever matches NULL size.
func sizeScope(tx *gorm.DB, sizeID *uint) *gorm.DB {
	if sizeID == nil {
		return tx.Where("size_id IS NULL")
	}
	return tx.Where("size_id = ?", *sizeID)
}
