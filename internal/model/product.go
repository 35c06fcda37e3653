package model

import "time"

// Product is a catalog entry.  ID is the sequential business key shown to
// clients; it is distinct from whatever internal key the store uses
// (auto-increment pk in MySQL, ObjectID in MongoDB).
//
// Fields:
//  ID        – sequential business id (previous maximum + 1).
//  Name      – product name.
//  Image     – URL of the hosted product image.
//  Category  – category label (e.g. women, men, kid).
//  NewPrice  – current price.
//  OldPrice  – price before discount.
//  Date      – creation timestamp.
//  Available – whether the product can be ordered.
type Product struct {
    ID        int64     `json:"id"`
    Name      string    `json:"name"`
    Image     string    `json:"image"`
    Category  string    `json:"category"`
    NewPrice  float64   `json:"new_price"`
    OldPrice  float64   `json:"old_price"`
    Date      time.Time `json:"date"`
    Available bool      `json:"available"`
}
