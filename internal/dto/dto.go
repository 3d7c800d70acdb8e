package dto

import (
	"time"
)

// SearchEmployeeRequest - запрос поиска сотрудника по штрих-коду/карте
type SearchEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,min=1,max=50"`
}

// ProcessTransactionRequest - запрос на выдачу галлонов
type ProcessTransactionRequest struct {
	EmployeeID   int64 `json:"employee_id" validate:"required,min=1"`
	GallonsTaken int   `json:"gallons_taken" validate:"required,min=1,max=10"`
}

// CreateEmployeeRequest - запрос на создание сотрудника
type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,min=1,max=50"`
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Department string `json:"department" validate:"required,min=1,max=255"`
}

// UpdateEmployeeRequest - запрос на обновление сотрудника.
// used_quota может превышать current_quota: это ручная корректировка
// администратора, ограничение действует только при выдаче.
type UpdateEmployeeRequest struct {
	EmployeeID   *string `json:"employee_id" validate:"omitempty,min=1,max=50"`
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Department   *string `json:"department" validate:"omitempty,min=1,max=255"`
	CurrentQuota *int    `json:"current_quota" validate:"omitempty,min=0,max=50"`
	UsedQuota    *int    `json:"used_quota" validate:"omitempty,min=0"`
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID             int64                 `json:"id"`
	EmployeeID     string                `json:"employee_id"`
	Name           string                `json:"name"`
	Department     string                `json:"department"`
	CurrentQuota   int                   `json:"current_quota"`
	UsedQuota      int                   `json:"used_quota"`
	RemainingQuota int                   `json:"remaining_quota"`
	QuotaResetDate string                `json:"quota_reset_date"`
	CreatedAt      time.Time             `json:"created_at"`
	Transactions   []TransactionResponse `json:"transactions,omitempty"`
}

// TransactionResponse - ответ с данными транзакции
type TransactionResponse struct {
	ID              int64     `json:"id"`
	EmployeeID      int64     `json:"employee_id"`
	GallonsTaken    int       `json:"gallons_taken"`
	RemainingQuota  int       `json:"remaining_quota"`
	TransactionDate time.Time `json:"transaction_date"`

	EmployeeName       string `json:"employee_name,omitempty"`
	EmployeeExternalID string `json:"employee_external_id,omitempty"`
	Department         string `json:"department,omitempty"`
}

// ScanResponse - результат поиска по штрих-коду
type ScanResponse struct {
	Employee *EmployeeResponse `json:"employee"`
	Message  string            `json:"message,omitempty"`
}

// TransactionResult - результат выдачи галлонов
type TransactionResult struct {
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Employee    *EmployeeResponse    `json:"employee,omitempty"`
	Message     string               `json:"message"`
}

// ListEmployeesResponse - постраничный список сотрудников
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
	Total     int64              `json:"total"`
}

// ListTransactionsResponse - постраничный список транзакций
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"per_page"`
	Total        int64                 `json:"total"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
