package domain

import "time"

// RefreshToken stores only the peppered hash of an admin session token.
type RefreshToken struct {
	ID              int64      `gorm:"primaryKey"`
	AccountID       int64      `gorm:"index;not null"`
	TokenHash       string     `gorm:"uniqueIndex;not null"`
	JTI             string     `gorm:"not null"`
	FamilyID        string     `gorm:"index;not null"`
	RotatedFrom     *int64
	UserAgent       *string
	IP              *string
	ExpiresAt       time.Time  `gorm:"not null"`
	UsedAt          *time.Time
	RevokedAt       *time.Time
	ReuseDetectedAt *time.Time
	CreatedAt       time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&Account{},
		&Profile{},
		&ProviderProfile{},
		&ServiceCategory{},
		&Service{},
		&RefreshToken{},
	}
}
