package domain

// Principal is the authenticated caller. It is trusted as-is once the
// transport layer has verified the credentials it came from.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanReadAccount allows the owner and admins.
func (p Principal) CanReadAccount(a *Account) bool {
	return p.IsAdmin() || a.OwnerID == p.UserID
}

// CanMutateAccount allows only the owner. Admins read everything but never
// move money on behalf of someone else.
func (p Principal) CanMutateAccount(a *Account) bool {
	return a.OwnerID == p.UserID
}

// CanCreateAccountFor allows users to open their own account and admins to open any.
func (p Principal) CanCreateAccountFor(ownerID string) bool {
	return p.IsAdmin() || ownerID == p.UserID
}

// CanReadUser allows users to read themselves and admins to read anyone.
func (p Principal) CanReadUser(userID string) bool {
	return p.IsAdmin() || userID == p.UserID
}

// CanReadAll gates the global listings of users, accounts and transactions.
func (p Principal) CanReadAll() bool {
	return p.Role.CanViewAll()
}
