package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("kakao")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodKakao, method)

	_, err = ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}

func TestJellyEnumsRejectUnknownValues(t *testing.T) {
	assert.True(t, FlavorWatermelon.IsValid())
	assert.False(t, JellyFlavor("durian").IsValid())
	assert.False(t, JellyTexture("crunchy").IsValid())
	assert.False(t, JellyColor("#FF0000").IsValid())
}

func TestOutboxEventAggregate(t *testing.T) {
	assert.Equal(t, AggregateOrder, EventOrderCreated.Aggregate())
	assert.Equal(t, AggregateJelly, EventJellyVoted.Aggregate())
	assert.Equal(t, AggregateJelly, EventJellyDeleted.Aggregate())
}

func TestOutboxEnumsRejectUnknownValues(t *testing.T) {
	assert.False(t, OutboxEventType("order_shipped").IsValid())
	assert.Empty(t, OutboxEventType("order_shipped").Aggregate())
	assert.False(t, OutboxAggregateType("store").IsValid())
	assert.True(t, OutboxDLQReasonUnknownEvent.IsValid())
	assert.False(t, OutboxDLQErrorReason("timeout").IsValid())
}

func TestParseOrderStatusAndTexture(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	_, err = ParseJellyTexture("Chewy")
	assert.EqualError(t, err, `invalid jelly texture "Chewy"`)
}
