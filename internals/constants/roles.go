package constants

import "fmt"

// Role user di sistem bimbel
const (
	RoleTutor   = "tutor"
	RoleStudent = "student"
)

// Template pesan error role
const (
	ErrOnlyTutorsCanAccess   = "❌ Hanya tutor yang boleh mengakses fitur %s."
	ErrOnlyStudentsCanAccess = "❌ Hanya student yang boleh mengakses fitur %s."
)

func RoleErrorTutor(feature string) string {
	return fmt.Sprintf(ErrOnlyTutorsCanAccess, feature)
}

func RoleErrorStudent(feature string) string {
	return fmt.Sprintf(ErrOnlyStudentsCanAccess, feature)
}

// ValidRoles dipakai validasi register
var ValidRoles = []string{RoleTutor, RoleStudent}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
