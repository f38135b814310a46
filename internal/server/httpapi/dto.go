// Package httpapi exposes the JSON-over-HTTP wire contract. Every
// encrypted-field value crossing this boundary is already ciphertext; the
// handlers move opaque strings between JSON and the record services.
package httpapi

import (
	"time"

	"github.com/mpetrovs/spendvault/internal/server/models"
)

type userDTO struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	EncryptedKeyPair string    `json:"encrypted_key_pair"`
	Status           string    `json:"status"`
	Currency         string    `json:"currency"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:               u.ID,
		Email:            u.Email,
		EncryptedKeyPair: u.EncryptedKeyPair,
		Status:           u.Status,
		Currency:         u.Currency,
		CreatedAt:        u.CreatedAt,
	}
}

type budgetDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Month string `json:"month"`
	Value string `json:"value"`
	Extra string `json:"extra,omitempty"`
}

func toBudgetDTO(b *models.Budget) budgetDTO {
	return budgetDTO{ID: b.ID, Name: b.Name, Month: b.Month, Value: b.Value, Extra: b.Extra}
}

func (d budgetDTO) toModel(userID string) *models.Budget {
	return &models.Budget{ID: d.ID, UserID: userID, Name: d.Name, Month: d.Month, Value: d.Value, Extra: d.Extra}
}

type expenseDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Budget      string `json:"budget"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"is_recurring"`
	Extra       string `json:"extra,omitempty"`
}

func toExpenseDTO(e *models.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Description: e.Description,
		Cost:        e.Cost,
		Budget:      e.Budget,
		Date:        e.Date,
		IsRecurring: e.IsRecurring,
		Extra:       e.Extra,
	}
}

func (d expenseDTO) toModel(userID string) *models.Expense {
	return &models.Expense{
		ID:          d.ID,
		UserID:      userID,
		Description: d.Description,
		Cost:        d.Cost,
		Budget:      d.Budget,
		Date:        d.Date,
		IsRecurring: d.IsRecurring,
		Extra:       d.Extra,
	}
}

type authedRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}
