package repository

import (
	"context"
	"time"

	"github.com/gallon-quota-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByIDWithTransactions(ctx context.Context, id int64) (*domain.Employee, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context, offset, limit int) ([]domain.Employee, int64, error)
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmployeeID(ctx context.Context, employeeID string, excludeID *int64) (bool, error)
	ResetQuota(ctx context.Context, id int64, quota int, resetDate time.Time) error
	ConsumeQuota(ctx context.Context, id int64, gallons int) (bool, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).First(&emp, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) GetByIDWithTransactions(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transaction_date DESC")
		}).
		First(&emp, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) List(ctx context.Context, offset, limit int) ([]domain.Employee, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Employee{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []domain.Employee
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Employee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) ExistsByEmployeeID(ctx context.Context, employeeID string, excludeID *int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("employee_id = ?", employeeID)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	err := query.Count(&count).Error
	return count > 0, err
}

func (r *employeeRepository) ResetQuota(ctx context.Context, id int64, quota int, resetDate time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"used_quota":       0,
			"current_quota":    quota,
			"quota_reset_date": resetDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// ConsumeQuota атомарно списывает галлоны условным UPDATE:
// строка меняется только если остатка хватает, поэтому два конкурентных
// списания не могут вдвоём пройти проверку на одном и том же остатке.
// Возвращает false, если квоты не хватило (ни одна строка не изменена).
func (r *employeeRepository) ConsumeQuota(ctx context.Context, id int64, gallons int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ? AND used_quota + ? <= current_quota", id, gallons).
		Update("used_quota", gorm.Expr("used_quota + ?", gallons))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
