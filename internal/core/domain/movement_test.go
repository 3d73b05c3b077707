package domain_test

import (
	"testing"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStockMovement_Effect(t *testing.T) {
	tests := []struct {
		name     string
		movement domain.StockMovement
		want     int64
	}{
		{
			name:     "IN adds quantity",
			movement: domain.StockMovement{Direction: domain.In, Quantity: 6},
			want:     6,
		},
		{
			name:     "OUT subtracts quantity",
			movement: domain.StockMovement{Direction: domain.Out, Quantity: 4},
			want:     -4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.movement.Effect())
		})
	}
}

func TestMovementDeltas(t *testing.T) {
	key := domain.StockKey{ReceiptID: "r1", LocationID: "l1", BinID: "b1"}
	otherKey := domain.StockKey{ReceiptID: "r1", LocationID: "l2", BinID: ""}

	in6 := &domain.StockMovement{ReceiptID: "r1", LocationID: "l1", BinID: "b1", Direction: domain.In, Quantity: 6}
	in4 := &domain.StockMovement{ReceiptID: "r1", LocationID: "l1", BinID: "b1", Direction: domain.In, Quantity: 4}
	out3Moved := &domain.StockMovement{ReceiptID: "r1", LocationID: "l2", BinID: "", Direction: domain.Out, Quantity: 3}

	t.Run("create applies new effect only", func(t *testing.T) {
		deltas := domain.MovementDeltas(in6, nil)
		assert.Equal(t, map[domain.StockKey]int64{key: 6}, deltas)
	})

	t.Run("delete reverses old effect only", func(t *testing.T) {
		deltas := domain.MovementDeltas(nil, in6)
		assert.Equal(t, map[domain.StockKey]int64{key: -6}, deltas)
	})

	t.Run("same-key update collapses to net delta", func(t *testing.T) {
		deltas := domain.MovementDeltas(in4, in6)
		assert.Equal(t, map[domain.StockKey]int64{key: -2}, deltas)
	})

	t.Run("key change yields two independent deltas", func(t *testing.T) {
		deltas := domain.MovementDeltas(out3Moved, in6)
		assert.Equal(t, map[domain.StockKey]int64{key: -6, otherKey: -3}, deltas)
	})
}

func TestOrderLine_EffectiveQuantity(t *testing.T) {
	override := int64(2)
	line := domain.OrderLine{Quantity: 5}
	assert.Equal(t, int64(5), line.EffectiveQuantity())

	line.QuantityOverride = &override
	assert.Equal(t, int64(2), line.EffectiveQuantity())
}

func TestReservationDeltas(t *testing.T) {
	key := domain.StockKey{ReceiptID: "r1", LocationID: "l1"}

	open3 := &domain.OrderLine{ReceiptID: "r1", LocationID: "l1", Quantity: 3, Status: domain.LineOpen}
	booked3 := &domain.OrderLine{ReceiptID: "r1", LocationID: "l1", Quantity: 3, Status: domain.LineBookedOut}

	t.Run("new open line takes a claim", func(t *testing.T) {
		assert.Equal(t, map[domain.StockKey]int64{key: 3}, domain.ReservationDeltas(open3, nil))
	})

	t.Run("line leaving open releases its claim", func(t *testing.T) {
		assert.Equal(t, map[domain.StockKey]int64{key: -3}, domain.ReservationDeltas(booked3, open3))
	})

	t.Run("non-open lines contribute nothing", func(t *testing.T) {
		assert.Empty(t, domain.ReservationDeltas(booked3, nil))
	})
}
