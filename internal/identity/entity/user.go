package entity

import "time"

// User is the stored account record. PasswordHash never leaves this type;
// every outward-facing representation goes through PublicProfile.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// Deleted reports whether the record has been soft-deleted. A deleted record
// is treated everywhere as if it did not exist.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// UserUpdate is a partial update to a stored record; nil fields are left
// unchanged.
type UserUpdate struct {
	PasswordHash *string
	FirstName    *string
	LastName     *string
}

// PublicProfile is the caller-facing projection of a User. It has no field
// for the password hash, so the type system enforces that the hash cannot be
// serialized by accident.
type PublicProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile projects the stored record into its public view.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
