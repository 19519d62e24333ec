package domain

import "time"

// User is the profile record of an authenticated principal. The ID is the
// subject issued by the identity provider.
type User struct {
	ID        string    `gorm:"primaryKey;size:128" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "pos_user"
}

// Credential backs the built-in identity provider.
type Credential struct {
	UserID       string    `gorm:"primaryKey;size:128" json:"user_id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName Specify table name
func (Credential) TableName() string {
	return "pos_credential"
}
