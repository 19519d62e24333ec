package domain

import "time"

// Product is a catalog entry owned by exactly one user.
// Price is expressed in the smallest currency unit.
type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserID    string    `gorm:"index;size:128" json:"user_id"`
	Name      string    `gorm:"size:200" json:"name"`
	Price     int64     `json:"price"`
	Embedding []float64 `gorm:"serializer:json" json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "pos_product"
}
