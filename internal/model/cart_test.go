package model

import (
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewCart_SeedsZeroSlots(t *testing.T) {
    c := NewCart(300)
    require.Len(t, c, 300)
    for i := 0; i < 300; i++ {
        q, ok := c[i]
        require.True(t, ok, "slot %d missing", i)
        require.Zero(t, q)
    }
    assert.Equal(t, 0, c.Total())
}

func TestNewCart_NegativeSlots(t *testing.T) {
    assert.Empty(t, NewCart(-4))
}

func TestCart_Total(t *testing.T) {
    assert.Equal(t, 5, Cart{0: 0, 3: 2, 7: 3}.Total())
    assert.Zero(t, Cart(nil).Total())
}

func TestCart_JSONUsesStringKeys(t *testing.T) {
    b, err := json.Marshal(Cart{0: 0, 5: 1})
    require.NoError(t, err)
    assert.JSONEq(t, `{"0":0,"5":1}`, string(b))
}
