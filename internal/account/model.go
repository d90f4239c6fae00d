package account

import (
	"time"

	"github.com/gofrs/uuid"
)

// Role is the fixed set of account roles.
type Role string

const (
	RoleClient    Role = "client"
	RoleProducer  Role = "producer"
	RoleDeliverer Role = "deliverer"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleProducer, RoleDeliverer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether r may manage users and validate orders.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	Approved     bool      `json:"is_approved" db:"is_approved"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
