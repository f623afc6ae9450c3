package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusDelivered, StatusReturned))

	assert.False(t, CanTransition(StatusPending, StatusShipping), "no skipping ahead")
	assert.False(t, CanTransition(StatusProcessing, StatusCancelled), "packed orders cannot be cancelled")
	assert.False(t, CanTransition(StatusCancelled, StatusPending), "terminal states stay terminal")
	assert.False(t, CanTransition(StatusReturned, StatusConfirmed))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
}

func TestAuthorizeOwnership(t *testing.T) {
	o := &Order{ID: "o1", BuyerID: "b1", SellerID: "s1", Status: StatusPending}

	assert.NoError(t, Authorize(Actor{UserID: "s1", Role: RoleSeller}, o, StatusConfirmed))
	assert.NoError(t, Authorize(Actor{UserID: "b1", Role: RoleBuyer}, o, StatusCancelled))
	assert.NoError(t, Authorize(Actor{UserID: "anyone", Role: RoleAdmin}, o, StatusConfirmed))

	assert.ErrorIs(t, Authorize(Actor{UserID: "s2", Role: RoleSeller}, o, StatusConfirmed), ErrAccessDenied)
	assert.ErrorIs(t, Authorize(Actor{UserID: "b2", Role: RoleBuyer}, o, StatusCancelled), ErrAccessDenied)
	assert.ErrorIs(t, Authorize(Actor{UserID: "b1", Role: RoleBuyer}, o, StatusConfirmed), ErrAccessDenied)

	var it *InvalidTransitionError
	assert.ErrorAs(t, Authorize(Actor{UserID: "s1", Role: RoleSeller}, o, StatusShipping), &it)
}

func TestPayStateTerminal(t *testing.T) {
	assert.False(t, PaymentPending.Terminal())
	assert.True(t, PaymentSuccess.Terminal())
	assert.True(t, PaymentFailed.Terminal())
}
