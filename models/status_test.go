package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderShipped, false},
		{OrderDelivered, OrderProcessing, false},
		{OrderCancelled, OrderProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPersonalizationStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PersonalizationStatus
		to      PersonalizationStatus
		allowed bool
	}{
		{PersonalizationPending, PersonalizationAdminApproved, true},
		{PersonalizationPending, PersonalizationRejected, true},
		{PersonalizationPending, PersonalizationOrderAccepted, false},
		{PersonalizationAdminApproved, PersonalizationOrderAccepted, true},
		{PersonalizationAdminApproved, PersonalizationRejected, true},
		{PersonalizationOrderAccepted, PersonalizationRejected, false},
		{PersonalizationOrderAccepted, PersonalizationAdminApproved, false},
		{PersonalizationRejected, PersonalizationPending, false},
		{PersonalizationRejected, PersonalizationAdminApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestReturnStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ReturnStatus
		to      ReturnStatus
		allowed bool
	}{
		{ReturnPending, ReturnApproved, true},
		{ReturnPending, ReturnRejected, true},
		{ReturnPending, ReturnCompleted, false},
		{ReturnApproved, ReturnCompleted, true},
		{ReturnApproved, ReturnRejected, false},
		{ReturnCompleted, ReturnPending, false},
		{ReturnRejected, ReturnApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestValidReturnReason(t *testing.T) {
	valid := []string{
		ReturnReasonDefective, ReturnReasonWrongItem, ReturnReasonNotAsDescribed,
		ReturnReasonSizeIssue, ReturnReasonQualityIssue, ReturnReasonChangedMind,
		ReturnReasonOther,
	}
	for _, reason := range valid {
		assert.True(t, ValidReturnReason(reason), reason)
	}

	assert.False(t, ValidReturnReason(""))
	assert.False(t, ValidReturnReason("broken"))
	assert.False(t, ValidReturnReason("DEFECTIVE"))
}
