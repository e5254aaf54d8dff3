package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending" // awaiting payment approval (UPI)
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the set of legal status transitions. Delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionTo reports whether moving to the given status is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment method tokens. UPI is recorded as a label only; no gateway is
// involved. The wallet variants are derived at checkout, never chosen
// directly by the buyer.
const (
	PaymentCOD           = "cod"
	PaymentUPI           = "upi"
	PaymentWallet        = "wallet"
	PaymentWalletPartial = "wallet_partial"
)

// Order is an immutable snapshot of a placed purchase. Address and payment
// fields are frozen at placement; later product changes never alter it.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           *uint           `gorm:"index" json:"user_id,omitempty"`
	User             *User           `gorm:"foreignKey:UserID" json:"-"`
	SessionKey       *string         `gorm:"size:64" json:"session_key,omitempty"`
	FullName         string          `gorm:"not null" json:"full_name"`
	AddressLine1     string          `gorm:"not null" json:"address_line1"`
	AddressLine2     *string         `json:"address_line2,omitempty"`
	City             string          `gorm:"not null" json:"city"`
	State            string          `gorm:"not null" json:"state"`
	PostalCode       string          `gorm:"not null" json:"postal_code"`
	Phone            string          `gorm:"not null" json:"phone"`
	PaymentMethod    string          `gorm:"size:15;not null;default:'cod'" json:"payment_method"`
	UPIProvider      *string         `gorm:"size:20" json:"upi_provider,omitempty"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	WalletAmountUsed decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"wallet_amount_used"`
	RemainingAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"remaining_amount"`
	Status           OrderStatus     `gorm:"size:15;not null;default:'processing'" json:"status"`
	TrackingNumber   *string         `json:"tracking_number,omitempty"`
	ShippedAt        *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty"`
	IsReturned       bool            `gorm:"not null;default:false" json:"is_returned"`
	ReturnReason     *string         `gorm:"type:text" json:"return_reason,omitempty"`
	ReturnedAt       *time.Time      `json:"returned_at,omitempty"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ItemsCount returns the total unit quantity across all order items.
func (o *Order) ItemsCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// CanBeReturned reports whether the buyer may request a return.
func (o *Order) CanBeReturned() bool {
	return o.Status == OrderDelivered && !o.IsReturned
}

// OrderItem freezes product name, unit price and quantity at order time so
// later catalog edits don't rewrite history. Product is kept as a nullable
// link for reference only.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   *uint           `json:"product_id,omitempty"`
	ProductName string          `gorm:"not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	SizeID      *uint           `json:"size_id,omitempty"`
	Size        *Size           `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
