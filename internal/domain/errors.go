package domain

import (
	"errors"
	"fmt"
)

// Определение бизнес-ошибок
var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateEmployeeID = errors.New("employee with this employee_id already exists")
	ErrInvalidGallonAmount = errors.New("gallon amount must be at least 1")
)

// QuotaExceededError возвращается, когда запрошено больше галлонов,
// чем осталось в квоте. Несёт актуальный остаток для сообщения пользователю.
type QuotaExceededError struct {
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("insufficient quota: %d gallons remaining", e.Remaining)
}
