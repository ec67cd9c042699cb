package constants

import "fmt"

const (
	RoleAdmin   = "admin"
	RoleTrainer = "formateur"
	RoleTrainee = "stagiaire"
)

// Role error templates
const (
	ErrOnlyAdminsCanAccess   = "❌ Seul un administrateur peut accéder à %s."
	ErrOnlyTrainersCanAccess = "❌ Seul un formateur peut accéder à %s."
	ErrOnlyTraineesCanAccess = "❌ Seul un stagiaire peut accéder à %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorTrainer(feature string) string {
	return fmt.Sprintf(ErrOnlyTrainersCanAccess, feature)
}

func RoleErrorTrainee(feature string) string {
	return fmt.Sprintf(ErrOnlyTraineesCanAccess, feature)
}

var AllRoles = []string{RoleAdmin, RoleTrainer, RoleTrainee}

// Roles that go through the first-login password setup.
var FirstLoginRoles = []string{RoleTrainer, RoleTrainee}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
