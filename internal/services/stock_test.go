package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLines(t *testing.T) {
	merged, err := mergeLines([]LineInput{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].ProductID)
	assert.Equal(t, 2, merged[0].Quantity)
	assert.Equal(t, "b", merged[1].ProductID)
	assert.Equal(t, 4, merged[1].Quantity)

	_, err = mergeLines(nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
	_, err = mergeLines([]LineInput{{ProductID: "a", Quantity: -1}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = mergeLines([]LineInput{{Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestStockErrorMessage(t *testing.T) {
	err := &StockError{ProductID: "p1", Title: "Pelota", Available: 1, Requested: 3}
	assert.Equal(t, `not enough stock for "Pelota": 1 unit(s) remaining, 3 requested`, err.Error())
	assert.True(t, IsBusinessError(err))
}
