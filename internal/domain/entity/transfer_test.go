package entity_test

import (
	"testing"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d3() decimal.Decimal { return decimal.NewFromInt(3) }

func TestTransfer_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from entity.TransferStatus
		to   entity.TransferStatus
		ok   bool
	}{
		{entity.TransferPending, entity.TransferCompleted, true},
		{entity.TransferPending, entity.TransferCancelled, true},
		{entity.TransferPending, entity.TransferPending, false},
		{entity.TransferCompleted, entity.TransferCancelled, false},
		{entity.TransferCompleted, entity.TransferCompleted, false},
		{entity.TransferCancelled, entity.TransferCompleted, false},
		{entity.TransferCancelled, entity.TransferCancelled, false},
	}
	for _, tc := range cases {
		tr := &entity.Transfer{Status: tc.from}
		assert.Equal(t, tc.ok, tr.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.False(t, entity.TransferPending.IsTerminal())
	assert.True(t, entity.TransferCompleted.IsTerminal())
	assert.True(t, entity.TransferCancelled.IsTerminal())
}

func TestTransfer_Claves(t *testing.T) {
	dst := "tienda-1"
	tr := &entity.Transfer{TenantID: "t1", ToLocationID: &dst}

	src := tr.SourceKey("p1")
	assert.Nil(t, src.LocationID, "origen nil = saldo central")
	assert.Equal(t, "", src.LocationString())
	assert.Equal(t, "tienda-1", tr.DestinationKey("p1").LocationString())
	assert.NotEqual(t, src.String(), tr.DestinationKey("p1").String())
}

func TestLocationScope(t *testing.T) {
	a, b := "a", "b"
	a2 := "a"

	assert.True(t, entity.AllLocations().Matches(nil))
	assert.True(t, entity.AllLocations().Matches(&a))

	central := entity.AtLocation(nil)
	assert.True(t, central.Matches(nil))
	assert.False(t, central.Matches(&a))

	enA := entity.AtLocation(&a)
	assert.True(t, enA.Matches(&a2), "compara por valor, no por puntero")
	assert.False(t, enA.Matches(&b))
	assert.False(t, enA.Matches(nil))
}

func TestMovementType_Signed(t *testing.T) {
	salidas := []entity.MovementType{entity.MovementSale, entity.MovementAdjustmentOut, entity.MovementTransferOut}
	entradas := []entity.MovementType{entity.MovementPurchase, entity.MovementAdjustmentIn, entity.MovementTransferIn, entity.MovementInitial}

	for _, mt := range salidas {
		assert.True(t, mt.Valid())
		assert.Equal(t, "-3", mt.Signed(d3()).String(), string(mt))
	}
	for _, mt := range entradas {
		assert.True(t, mt.Valid())
		assert.Equal(t, "3", mt.Signed(d3()).String(), string(mt))
	}
	assert.False(t, entity.MovementType("RETURN").Valid())
}
