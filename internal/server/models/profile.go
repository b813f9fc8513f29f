package models

// Profile is a user's profile row. UpdatedAt is milliseconds since the epoch
// as set by the writing client; the server never rewrites it.
type Profile struct {
	UserID    string
	FullName  string
	Phone     string
	Location  string
	Bio       string
	UpdatedAt int64
}

// Descriptor is a user's enrolled face descriptor. Email is joined from
// users on read.
type Descriptor struct {
	UserID    string
	Email     string
	Values    []float32
	UpdatedAt int64
}
