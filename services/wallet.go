package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// WalletService manages user wallets and their append-only transaction
// ledger. Every balance mutation writes exactly one ledger row capturing
// the type, amount and resulting balance, so the balance can always be
// reconstructed from the log.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService creates a wallet service backed by the given database.
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreate returns the user's wallet, creating an empty one if absent.
func (s *WalletService) GetOrCreate(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// AddMoney credits the wallet and appends a ledger entry.
func (s *WalletService) AddMoney(userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidWalletAmount
	}
	var wallet models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = creditWalletTx(tx, userID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// DeductMoney debits the wallet and appends a ledger entry. Fails with
// ErrInsufficientBalance when amount exceeds the balance.
func (s *WalletService) DeductMoney(userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidWalletAmount
	}
	var wallet models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = debitWalletTx(tx, userID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Transactions returns the wallet's ledger, newest first.
func (s *WalletService) Transactions(userID uint) ([]models.WalletTransaction, error) {
	wallet, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	var transactions []models.WalletTransaction
	err = s.db.Where("wallet_id = ?", wallet.ID).
		Order("id DESC").
		Find(&transactions).Error
	return transactions, err
}

// creditWalletTx credits a wallet inside the caller's transaction, creating
// the wallet if needed. Refunds and top-ups share this path.
func creditWalletTx(tx *gorm.DB, userID uint, amount decimal.Decimal, description string) (models.Wallet, error) {
	var wallet models.Wallet
	err := lockForUpdate(tx).Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return wallet, err
	}

	wallet.Balance = wallet.Balance.Add(amount)
	if err := tx.Save(&wallet).Error; err != nil {
		return wallet, err
	}
	entry := models.WalletTransaction{
		WalletID:     wallet.ID,
		Type:         models.TransactionCredit,
		Amount:       amount,
		Description:  description,
		BalanceAfter: wallet.Balance,
	}
	return wallet, tx.Create(&entry).Error
}

// debitWalletTx debits a wallet inside the caller's transaction. Checkout's
// wallet payment shares this path.
func debitWalletTx(tx *gorm.DB, userID uint, amount decimal.Decimal, description string) (models.Wallet, error) {
	var wallet models.Wallet
	err := lockForUpdate(tx).Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return wallet, err
	}

	if wallet.Balance.LessThan(amount) {
		return wallet, ErrInsufficientBalance
	}
	wallet.Balance = wallet.Balance.Sub(amount)
	if err := tx.Save(&wallet).Error; err != nil {
		return wallet, err
	}
	entry := models.WalletTransaction{
		WalletID:     wallet.ID,
		Type:         models.TransactionDebit,
		Amount:       amount,
		Description:  description,
		BalanceAfter: wallet.Balance,
	}
	return wallet, tx.Create(&entry).Error
}
