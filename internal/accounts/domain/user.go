package domain

import "time"

// User is a registered account. Records are never updated in place; a second
// registration under the same username is rejected.
type User struct {
	Username  string
	Password  string // compared verbatim
	Phone     string // E.164, e.g. +15551234567
	CreatedAt time.Time
}
