package models

// Team roles, ordered by management rights.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

// RoleRank orders roles so that a higher rank means more rights.
// Unknown roles rank below member.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// CanManage reports whether actor may change target's role or remove them.
// Only the owner manages other members; admins have no role-management rights.
func CanManage(actorRole, targetRole string) bool {
	return actorRole == RoleOwner
}

// CanInviteDirectly reports whether actor may send an invite without owner
// approval under the team's approval policy.
func CanInviteDirectly(actorRole string, approvalRequired bool) bool {
	if actorRole == RoleOwner {
		return true
	}
	return actorRole == RoleAdmin && !approvalRequired
}

// RequiresApproval reports whether actor's invite must be routed to the owner.
func RequiresApproval(actorRole string, approvalRequired bool) bool {
	return actorRole == RoleAdmin && approvalRequired
}
