package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// RoleKiosk is a restricted terminal identity: it may only drive the
	// check-in/check-out workflow, never administrative surfaces.
	RoleKiosk = "kiosk"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKiosk(role string) bool { return role == RoleKiosk }
