package domain

// Role represents the privilege level of a principal.
type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleCustomer Role = "CUSTOMER"
)

// Customer represents an account known to the external identity provider.
// This service only reads customer records; it never creates or updates them.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Role           Role
	TelegramChatID int64
}

// Principal is the authenticated caller of an operation. It is passed
// explicitly into every operation that performs an access check.
type Principal struct {
	CustomerID string
	Role       Role
}

// IsManager reports whether the principal has elevated privileges.
func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}
