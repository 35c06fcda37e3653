package model

// DefaultCartSlots is the number of zero-quantity entries a new cart is
// seeded with when no other value is configured.
const DefaultCartSlots = 300

// Cart maps a product id to the quantity held by the user.  Quantities
// are never negative.  The JSON encoding is an object keyed by the
// stringified product id, e.g. {"0":0,"5":1}.
type Cart map[int]int

// NewCart returns a cart pre-seeded with zero quantities for product ids
// 0..slots-1.  A non-positive slots value yields an empty cart.
func NewCart(slots int) Cart {
    if slots < 0 {
        slots = 0
    }
    c := make(Cart, slots)
    for i := 0; i < slots; i++ {
        c[i] = 0
    }
    return c
}

// Total returns the number of units across all items.
func (c Cart) Total() int {
    n := 0
    for _, q := range c {
        n += q
    }
    return n
}
