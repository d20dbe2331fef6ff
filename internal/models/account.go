package models

import "time"

// Account roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is an identity record for a dashboard login. Accounts are only
// created by admin approval of a PendingRegistration.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string // "admin" or "user"
	Approved     bool
	Blocked      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Pending registration statuses. A registration is terminal once it leaves
// "pending" and is never revisited.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// PendingRegistration is a self-registration request awaiting an admin
// decision.
type PendingRegistration struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IPAddress    *string
	UserAgent    *string
	RequestedAt  time.Time
	Status       string
}
