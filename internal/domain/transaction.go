package domain

import "time"

// Transaction is a sale recorded by a user. TotalPrice is always derived
// from Items, see Recalculate.
type Transaction struct {
	ID         int64             `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	UserID     string            `gorm:"index;size:128" json:"user_id"`
	Timestamp  time.Time         `gorm:"index" json:"timestamp"`
	TotalPrice int64             `json:"total_price"`
	Items      []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// TableName Specify table name
func (Transaction) TableName() string {
	return "pos_transaction"
}

// TransactionItem is a line of a transaction. Name and unit price are
// copies of the product at the time the line was priced.
type TransactionItem struct {
	ID            int64  `gorm:"primaryKey" json:"-"`
	TransactionID int64  `gorm:"index" json:"-"`
	Position      int    `json:"-"`
	ProductID     int64  `gorm:"index" json:"product_id,string"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	PricePerUnit  int64  `json:"price_per_unit"`
	TotalPrice    int64  `json:"total_price"`
}

// TableName Specify table name
func (TransactionItem) TableName() string {
	return "pos_transaction_item"
}

// Recalculate refreshes line totals, positions and the transaction total.
func (t *Transaction) Recalculate() {
	var total int64
	for i := range t.Items {
		item := &t.Items[i]
		item.Position = i
		item.TransactionID = t.ID
		item.TotalPrice = int64(item.Quantity) * item.PricePerUnit
		total += item.TotalPrice
	}
	t.TotalPrice = total
}
