package userservice

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasRole reports whether the user holds role or a higher one. Admin > editor > user.
func (u *User) HasRole(role Role) bool {
	if u.IsAnonymous() {
		return false
	}

	return roleRank(u.Role) >= roleRank(role)
}

func roleRank(r Role) int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}
