package domain

var Tables = []interface{}{
	&User{},
	&Credential{},
	&Product{},
	&Transaction{},
	&TransactionItem{},
	&AuditLog{},
}
