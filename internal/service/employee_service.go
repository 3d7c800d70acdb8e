package service

import (
	"context"
	"strings"

	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/dto"
	"github.com/gallon-quota-api/internal/repository"
)

// EmployeeService определяет интерфейс администрирования сотрудников
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, offset, limit int) ([]domain.Employee, int64, error)
	Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

type employeeService struct {
	empRepo repository.EmployeeRepository
	clock   Clock
}

// NewEmployeeService создаёт новый экземпляр сервиса
func NewEmployeeService(empRepo repository.EmployeeRepository, clock Clock) EmployeeService {
	return &employeeService{
		empRepo: empRepo,
		clock:   clock,
	}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error) {
	externalID := strings.TrimSpace(req.EmployeeID)

	// Проверяем уникальность номера карты/штрих-кода
	exists, err := s.empRepo.ExistsByEmployeeID(ctx, externalID, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmployeeID
	}

	emp := &domain.Employee{
		EmployeeID:     externalID,
		Name:           strings.TrimSpace(req.Name),
		Department:     strings.TrimSpace(req.Department),
		CurrentQuota:   domain.StandardMonthlyQuota,
		UsedQuota:      0,
		QuotaResetDate: domain.StartOfMonth(s.clock.Now()),
	}

	if err := s.empRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

func (s *employeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.empRepo.GetByIDWithTransactions(ctx, id)
}

func (s *employeeService) List(ctx context.Context, offset, limit int) ([]domain.Employee, int64, error) {
	return s.empRepo.List(ctx, offset, limit)
}

func (s *employeeService) Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error) {
	emp, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Обновляем номер карты, если передан: уникальность проверяется
	// с исключением собственной записи
	if req.EmployeeID != nil {
		externalID := strings.TrimSpace(*req.EmployeeID)

		exists, err := s.empRepo.ExistsByEmployeeID(ctx, externalID, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEmployeeID
		}

		emp.EmployeeID = externalID
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}

	if req.Department != nil {
		emp.Department = strings.TrimSpace(*req.Department)
	}

	if req.CurrentQuota != nil {
		emp.CurrentQuota = *req.CurrentQuota
	}

	// used_quota правится напрямую как ручная корректировка и может
	// временно превышать current_quota
	if req.UsedQuota != nil {
		emp.UsedQuota = *req.UsedQuota
	}

	if err := s.empRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

func (s *employeeService) Delete(ctx context.Context, id int64) error {
	// Транзакции сотрудника удаляются каскадно по внешнему ключу
	return s.empRepo.Delete(ctx, id)
}
