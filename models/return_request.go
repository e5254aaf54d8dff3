package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus is the state of a return request.
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnCompleted ReturnStatus = "completed"
)

// returnTransitions is the set of legal status transitions. Approval and
// refund happen in one transaction, so approved is only ever observed
// in-flight; persisted rows move pending -> completed or pending -> rejected.
var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnPending:  {ReturnApproved, ReturnRejected},
	ReturnApproved: {ReturnCompleted},
}

// CanTransitionTo reports whether moving to the given status is legal.
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Return reason codes.
const (
	ReturnReasonDefective      = "defective"
	ReturnReasonWrongItem      = "wrong_item"
	ReturnReasonNotAsDescribed = "not_as_described"
	ReturnReasonSizeIssue      = "size_issue"
	ReturnReasonQualityIssue   = "quality_issue"
	ReturnReasonChangedMind    = "changed_mind"
	ReturnReasonOther          = "other"
)

// ValidReturnReason reports whether the reason code is recognized.
func ValidReturnReason(reason string) bool {
	switch reason {
	case ReturnReasonDefective, ReturnReasonWrongItem, ReturnReasonNotAsDescribed,
		ReturnReasonSizeIssue, ReturnReasonQualityIssue, ReturnReasonChangedMind,
		ReturnReasonOther:
		return true
	}
	return false
}

// ReturnRequest is a buyer's request to return a delivered order, one per
// order. Approving it marks the order returned and credits the full order
// total to the buyer's wallet.
type ReturnRequest struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	Order        Order           `gorm:"foreignKey:OrderID" json:"-"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	User         User            `gorm:"foreignKey:UserID" json:"-"`
	Reason       string          `gorm:"size:20;not null" json:"reason"`
	Description  string          `gorm:"type:text" json:"description"`
	Status       ReturnStatus    `gorm:"size:15;not null;default:'pending'" json:"status"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"refund_amount"`
	AdminNotes   string          `gorm:"type:text" json:"admin_notes"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the ReturnRequest model
func (ReturnRequest) TableName() string {
	return "return_requests"
}
