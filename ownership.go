package hireauth

// RequireOwnership is the second authorization step for user-scoped resources:
// Verify proves who the caller is, RequireOwnership proves the resource is
// theirs. It returns ErrForbidden for a zero identity or a different owner.
func RequireOwnership(identity VerifiedIdentity, ownerUserID string) error {
	if identity.IsZero() || ownerUserID == "" || identity.userID != ownerUserID {
		return ErrForbidden
	}
	return nil
}

// RequireRole returns ErrForbidden unless identity holds one of roles.
func RequireRole(identity VerifiedIdentity, roles ...Role) error {
	if identity.IsZero() {
		return ErrForbidden
	}
	for _, r := range roles {
		if identity.role == r {
			return nil
		}
	}
	return ErrForbidden
}
