package session

import "slices"

// Storage keys. Both spellings of each entry are still written by older
// clients, so readers accept either and cleanup removes all four.
const (
	KeyAuthToken = "authToken"
	KeyToken     = "token"
	KeyUserData  = "userData"
	KeyUser      = "user"
)

const (
	RoleHealthWorker = "barangay_health_worker"
	RoleCouncilor    = "barangay_councilor"
	RoleSecretary    = "barangay_secretary"
	RoleCaptain      = "barangay_captain"
	RoleAdmin        = "admin"
	RoleResident     = "resident"
	RoleNonResident  = "non_resident"
)

var (
	credentialKeys = []string{KeyAuthToken, KeyToken}
	userKeys       = []string{KeyUserData, KeyUser}
	roles          = []string{
		RoleHealthWorker,
		RoleCouncilor,
		RoleSecretary,
		RoleCaptain,
		RoleAdmin,
		RoleResident,
		RoleNonResident,
	}
)

// Keys returns every storage key that holds session state.
func Keys() []string {
	return []string{KeyAuthToken, KeyToken, KeyUserData, KeyUser}
}

func IsSessionKey(key string) bool {
	return slices.Contains(credentialKeys, key) || slices.Contains(userKeys, key)
}

func Roles() []string {
	return slices.Clone(roles)
}

func ValidRole(role string) bool {
	return slices.Contains(roles, role)
}
