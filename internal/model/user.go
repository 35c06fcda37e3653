package model

import "time"

// User represents a storefront account as stored in the `users`
// table (MySQL) or the `users` collection (MongoDB).  The password
// is only ever held as a bcrypt hash.  Handlers never serialize this
// struct directly; they build their own response shapes.
//
// Fields:
//  ID           – store-assigned identifier (auto-increment id or ObjectID hex).
//  Name         – display name given at signup.
//  Email        – unique email address, compared case-sensitively.
//  PasswordHash – bcrypt hash of the password.
//  Cart         – quantities held in the cart, keyed by product id.
//  CreatedAt    – timestamp of registration.
type User struct {
    ID           string    // users.id / users._id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash / users.password
    Cart         Cart      // cart_items rows / users.cartData
    CreatedAt    time.Time // users.created_at / users.date
}
