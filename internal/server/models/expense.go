package models

// Expense references its budget by encrypted name, not id; budgets are
// looked up or created lazily on the client.
type Expense struct {
	ID          string
	UserID      string
	Description string // ciphertext
	Cost        string // ciphertext
	Budget      string // ciphertext name reference
	Date        string // "YYYY-MM-DD", plaintext
	IsRecurring bool
	Extra       string
}
