package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_CollectsOptions(t *testing.T) {
	q := Build(
		WithID(7),
		WithConditionIn("id", []int64{1, 2}),
		WithOrderAsc("id"),
		WithOrderDesc("timestamp"),
		WithLimit(10),
		WithOffset(5),
	)

	conds := q.Conditions()
	assert.Len(t, conds, 2)
	assert.Equal(t, "id = 7", conds[0].String())
	assert.True(t, conds[1].In())
	assert.Equal(t, "id IN [1 2]", conds[1].String())

	orders := q.Orders()
	assert.Len(t, orders, 2)
	assert.Equal(t, "id", orders[0].Field())
	assert.True(t, orders[0].Ascending())
	assert.False(t, orders[1].Ascending())

	assert.Equal(t, 10, q.LimitValue())
	assert.Equal(t, 5, q.OffsetValue())
}

func TestBuild_Empty(t *testing.T) {
	q := Build()
	assert.Empty(t, q.Conditions())
	assert.Empty(t, q.Orders())
	assert.Zero(t, q.LimitValue())
}

func TestConditions_ReturnsCopy(t *testing.T) {
	q := Build(WithID(1))
	conds := q.Conditions()
	conds[0] = Condition{}
	assert.Equal(t, "id", q.Conditions()[0].Field())
}
