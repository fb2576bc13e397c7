package models

// User is a credential record. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:75" json:"name"`
	Username string `gorm:"column:user_name;uniqueIndex;size:75;not null" json:"userName"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Active   bool   `gorm:"not null;default:true" json:"active"`
	Roles    []Role `gorm:"many2many:user_roles;" json:"roles"`
	Audit    `gorm:"embedded"`
}

// Role is a named authority such as ROLE_STAFF.
type Role struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	RoleName string `gorm:"column:role_name;uniqueIndex;size:60;not null" json:"roleName" validate:"required"`
	Audit    `gorm:"embedded"`
}

// Well-known role names seeded on migration.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleStaff = "ROLE_STAFF"
)

// RoleNames returns the names of the user's roles in stored order, duplicates kept.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.RoleName)
	}
	return names
}
