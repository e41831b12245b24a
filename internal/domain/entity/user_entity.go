package entity

import (
	"time"
)

// User is the aggregate root for the accounts domain.
// Password holds a bcrypt hash; the plaintext never leaves the registration flow.
//
// Email is stored lowercase; normalization happens before every write and lookup.
type User struct {
	ID          string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	DateJoined  time.Time
	LastLogin   *time.Time
}
