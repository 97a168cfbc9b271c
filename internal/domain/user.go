package domain

// UserRole represents the role of a user account
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User represents an account that owns forms
type User struct {
	BaseModel
	Name         string   `gorm:"type:varchar(100);not null" json:"name"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Forms        []Form   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"forms,omitempty"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
