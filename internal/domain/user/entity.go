package user

import "time"

// User represents a user record in the system.
type User struct {
	ID        int64     // ID is generated by the store and never changes
	Name      string    // Name is the display name of the user
	Email     string    // Email is the contact address, unique per table
	CreatedAt time.Time // CreatedAt is set on insert and never updated
}
