package auth

import "gorm.io/gorm"

const (
	RoleSuperUser = "SuperUser"
	RoleAdmin     = "Admin"
	RoleAttendant = "Attendant"
	RoleCustomer  = "Customer"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:150"`
	Email        string `gorm:"size:255"`
	PasswordHash string
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	Role         string `gorm:"size:20;default:Customer"`
	ShopID       *uint
	Contact      string `gorm:"size:20"`
	FirstLogin   bool   `gorm:"default:false"`
}

// Actor is the authenticated caller extracted from a bearer token. It is
// what every operation boundary checks capabilities against.
type Actor struct {
	ID       uint
	Username string
	Role     string
	ShopID   *uint
}

func ValidRole(role string) bool {
	switch role {
	case RoleSuperUser, RoleAdmin, RoleAttendant, RoleCustomer:
		return true
	}
	return false
}
