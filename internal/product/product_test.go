package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Confirmed(t *testing.T) {
	assert.False(t, Product{Name: "Keyboard"}.Confirmed())
	assert.True(t, Product{ID: 42, Name: "Keyboard"}.Confirmed())
}

func TestProduct_WithID(t *testing.T) {
	// given
	submitted := Product{Name: "Keyboard", Quantity: 2}
	// when
	merged := submitted.WithID(42)
	// then
	assert.Equal(t, Product{ID: 42, Name: "Keyboard", Quantity: 2}, merged)
	assert.Zero(t, submitted.ID, "original value must not change")
}

func TestProduct_JSONOmitsUnconfirmedID(t *testing.T) {
	data, err := json.Marshal(Product{Name: "Keyboard", Quantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Keyboard","quantity":2}`, string(data))

	data, err = json.Marshal(Product{ID: 1, Name: "Mouse", Quantity: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Mouse","quantity":5}`, string(data))
}
