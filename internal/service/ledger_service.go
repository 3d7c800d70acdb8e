package service

import (
	"context"

	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/repository"
)

// LedgerService определяет интерфейс учёта квот: поиск сотрудника
// со сверкой месячного окна и проведение выдачи галлонов
type LedgerService interface {
	LookupEmployee(ctx context.Context, employeeID string) (*domain.Employee, error)
	RecordConsumption(ctx context.Context, employeeID int64, gallons int) (*domain.GallonTransaction, *domain.Employee, error)
}

type ledgerService struct {
	empRepo repository.EmployeeRepository
	txnRepo repository.TransactionRepository
	clock   Clock
}

// NewLedgerService создаёт новый экземпляр сервиса
func NewLedgerService(empRepo repository.EmployeeRepository, txnRepo repository.TransactionRepository, clock Clock) LedgerService {
	return &ledgerService{
		empRepo: empRepo,
		txnRepo: txnRepo,
		clock:   clock,
	}
}

// reconcileQuotaWindow сбрасывает квоту, если окно сотрудника осталось
// в прошлом календарном месяце. Сравнение идёт по паре (год, месяц):
// окно, открытое 31-го числа, устаревает уже 1-го числа следующего месяца.
// Повторный вызов в том же месяце ничего не меняет.
func (s *ledgerService) reconcileQuotaWindow(ctx context.Context, emp *domain.Employee) (*domain.Employee, error) {
	now := s.clock.Now()
	if !emp.NeedsQuotaReset(now) {
		return emp, nil
	}

	// Сброс возвращает месячную норму к стандартной, затирая ручную
	// правку администратора за прошлый месяц - поведение исходной системы
	if err := s.empRepo.ResetQuota(ctx, emp.ID, domain.StandardMonthlyQuota, domain.StartOfMonth(now)); err != nil {
		return nil, err
	}

	return s.empRepo.GetByID(ctx, emp.ID)
}

func (s *ledgerService) LookupEmployee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	emp, err := s.empRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconcileQuotaWindow(ctx, emp); err != nil {
		return nil, err
	}

	return s.empRepo.GetByIDWithTransactions(ctx, emp.ID)
}

func (s *ledgerService) RecordConsumption(ctx context.Context, employeeID int64, gallons int) (*domain.GallonTransaction, *domain.Employee, error) {
	// Валидация формы запроса лежит на обработчике, но нижняя граница
	// перепроверяется здесь: нулевое или отрицательное списание сломало бы учёт
	if gallons < 1 {
		return nil, nil, domain.ErrInvalidGallonAmount
	}

	emp, err := s.empRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}

	// Сверка окна обязана идти до проверки остатка: запрос сразу после
	// границы месяца оценивается по свежему окну, а не по устаревшему
	emp, err = s.reconcileQuotaWindow(ctx, emp)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.empRepo.ConsumeQuota(ctx, emp.ID, gallons)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		// Проигравший конкурентный писатель перечитывает строку и отдаёт
		// актуальный остаток; повторных попыток нет - отказ терминален
		fresh, err := s.empRepo.GetByID(ctx, emp.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, &domain.QuotaExceededError{Remaining: fresh.RemainingQuota()}
	}

	fresh, err := s.empRepo.GetByID(ctx, emp.ID)
	if err != nil {
		return nil, nil, err
	}

	txn := &domain.GallonTransaction{
		EmployeeID:      fresh.ID,
		GallonsTaken:    gallons,
		RemainingQuota:  fresh.RemainingQuota(),
		TransactionDate: s.clock.Now(),
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, nil, err
	}

	withTxns, err := s.empRepo.GetByIDWithTransactions(ctx, fresh.ID)
	if err != nil {
		return nil, nil, err
	}

	return txn, withTxns, nil
}
