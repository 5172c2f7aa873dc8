package domain

import "time"

// Account is the login identity. IsStaff and IsSuperuser mirror Profile.Role.
type Account struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:AccountID"`
}

func (Account) TableName() string { return "accounts" }

// Profile carries the role assignment. Exactly one per Account.
type Profile struct {
	ID           int64     `json:"-" gorm:"primaryKey"`
	AccountID    int64     `json:"-" gorm:"uniqueIndex;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(32);not null;default:'user'"`
	PhoneNumber  string    `json:"phone_number"`
	JobTitle     string    `json:"job_title"`
	Organisation string    `json:"organisation"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Role returns the account's role, or "" when no profile is loaded.
func (a *Account) Role() Role {
	if a == nil || a.Profile == nil {
		return ""
	}
	return a.Profile.Role
}
