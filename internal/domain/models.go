package domain

import (
	"time"
)

// StandardMonthlyQuota - стандартная месячная норма галлонов
const StandardMonthlyQuota = 10

// Employee представляет сотрудника с месячной квотой на воду
type Employee struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID     string    `json:"employee_id" gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Department     string    `json:"department" gorm:"type:varchar(255);not null;index"`
	CurrentQuota   int       `json:"current_quota" gorm:"not null;default:10"`
	UsedQuota      int       `json:"used_quota" gorm:"not null;default:0"`
	QuotaResetDate time.Time `json:"quota_reset_date" gorm:"type:date;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Transactions []GallonTransaction `json:"transactions,omitempty" gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// RemainingQuota возвращает остаток квоты на текущий месяц.
// Может быть отрицательным после ручной правки used_quota администратором.
func (e *Employee) RemainingQuota() int {
	return e.CurrentQuota - e.UsedQuota
}

// NeedsQuotaReset проверяет, началось ли окно нового календарного месяца.
// Сравнение идёт строго по паре (год, месяц), а не по прошедшей длительности.
func (e *Employee) NeedsQuotaReset(now time.Time) bool {
	return e.QuotaResetDate.Year() != now.Year() || e.QuotaResetDate.Month() != now.Month()
}

// GallonTransaction представляет единичное списание галлонов.
// Запись не изменяется после создания; remaining_quota - снимок остатка
// на момент проведения транзакции.
type GallonTransaction struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID      int64     `json:"employee_id" gorm:"not null;index"`
	GallonsTaken    int       `json:"gallons_taken" gorm:"not null"`
	RemainingQuota  int       `json:"remaining_quota" gorm:"not null"`
	TransactionDate time.Time `json:"transaction_date" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`

	Employee *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

// TableName задаёт имя таблицы для GORM
func (GallonTransaction) TableName() string {
	return "gallon_transactions"
}

// StartOfMonth обрезает дату до первого числа месяца
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
