package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's store-credit balance, one per user. Every balance
// change is paired with a WalletTransaction row; the balance must always
// equal the running sum of its transactions.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	User      User            `gorm:"foreignKey:UserID" json:"-"`
	Balance   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// Wallet transaction types.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// WalletTransaction is one append-only ledger entry. BalanceAfter captures
// the balance resulting from this entry, so the ledger alone can
// reconstruct and audit the wallet.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	WalletID     uint            `gorm:"not null;index" json:"wallet_id"`
	Wallet       Wallet          `gorm:"foreignKey:WalletID" json:"-"`
	Type         string          `gorm:"size:10;not null" json:"type"` // credit or debit
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description  string          `gorm:"type:text" json:"description"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name for the WalletTransaction model
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
