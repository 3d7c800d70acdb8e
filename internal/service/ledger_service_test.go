package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/service"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type mockEmployeeRepo struct {
	mu         sync.Mutex
	employees  map[int64]*domain.Employee
	nextID     int64
	resetCalls int
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{
		employees: make(map[int64]*domain.Employee),
		nextID:    1,
	}
}

func (m *mockEmployeeRepo) Create(ctx context.Context, emp *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp.ID = m.nextID
	emp.CreatedAt = time.Now()
	m.nextID++
	stored := *emp
	m.employees[emp.ID] = &stored
	return nil
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if emp, ok := m.employees[id]; ok {
		copied := *emp
		return &copied, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func (m *mockEmployeeRepo) GetByIDWithTransactions(ctx context.Context, id int64) (*domain.Employee, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEmployeeRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range m.employees {
		if emp.EmployeeID == employeeID {
			copied := *emp
			return &copied, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (m *mockEmployeeRepo) List(ctx context.Context, offset, limit int) ([]domain.Employee, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Employee
	for _, emp := range m.employees {
		result = append(result, *emp)
	}
	return result, int64(len(result)), nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, emp *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *emp
	m.employees[emp.ID] = &stored
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepo) ExistsByEmployeeID(ctx context.Context, employeeID string, excludeID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range m.employees {
		if emp.EmployeeID == employeeID {
			if excludeID == nil || emp.ID != *excludeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockEmployeeRepo) ResetQuota(ctx context.Context, id int64, quota int, resetDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[id]
	if !ok {
		return domain.ErrEmployeeNotFound
	}
	emp.UsedQuota = 0
	emp.CurrentQuota = quota
	emp.QuotaResetDate = resetDate
	m.resetCalls++
	return nil
}

// ConsumeQuota повторяет условный UPDATE: проверка и запись под одним замком
func (m *mockEmployeeRepo) ConsumeQuota(ctx context.Context, id int64, gallons int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[id]
	if !ok {
		return false, nil
	}
	if emp.UsedQuota+gallons > emp.CurrentQuota {
		return false, nil
	}
	emp.UsedQuota += gallons
	return true, nil
}

type mockTransactionRepo struct {
	mu           sync.Mutex
	transactions map[int64]*domain.GallonTransaction
	nextID       int64
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{
		transactions: make(map[int64]*domain.GallonTransaction),
		nextID:       1,
	}
}

func (m *mockTransactionRepo) Create(ctx context.Context, txn *domain.GallonTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.ID = m.nextID
	txn.CreatedAt = time.Now()
	m.nextID++
	stored := *txn
	m.transactions[txn.ID] = &stored
	return nil
}

func (m *mockTransactionRepo) ListWithEmployee(ctx context.Context, offset, limit int) ([]domain.GallonTransaction, int64, error) {
	all, err := m.AllWithEmployee(ctx)
	return all, int64(len(all)), err
}

func (m *mockTransactionRepo) AllWithEmployee(ctx context.Context) ([]domain.GallonTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.GallonTransaction
	for _, txn := range m.transactions {
		result = append(result, *txn)
	}
	return result, nil
}

func (m *mockTransactionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

func seedEmployee(t *testing.T, repo *mockEmployeeRepo, current, used int, resetDate time.Time) *domain.Employee {
	t.Helper()
	emp := &domain.Employee{
		EmployeeID:     "EMP001",
		Name:           "John Doe",
		Department:     "IT",
		CurrentQuota:   current,
		UsedQuota:      used,
		QuotaResetDate: resetDate,
	}
	if err := repo.Create(context.Background(), emp); err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
	return emp
}

func TestLookupEmployee_NotFound(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	_, err := svc.LookupEmployee(context.Background(), "MISSING")
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestLookupEmployee_FreshWindowUnchanged(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	seedEmployee(t, empRepo, 10, 3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	emp, err := svc.LookupEmployee(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if emp.UsedQuota != 3 || emp.CurrentQuota != 10 {
		t.Errorf("expected quota untouched (10/3), got %d/%d", emp.CurrentQuota, emp.UsedQuota)
	}
	if empRepo.resetCalls != 0 {
		t.Errorf("expected no reset, got %d reset calls", empRepo.resetCalls)
	}
}

// Окно из прошлого месяца сбрасывается при поиске, повторный
// поиск в том же месяце ничего не меняет
func TestLookupEmployee_StaleWindowReset(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	seedEmployee(t, empRepo, 25, 10, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	emp, err := svc.LookupEmployee(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if emp.UsedQuota != 0 {
		t.Errorf("expected used_quota 0 after reset, got %d", emp.UsedQuota)
	}
	if emp.CurrentQuota != domain.StandardMonthlyQuota {
		t.Errorf("expected current_quota reset to %d, got %d", domain.StandardMonthlyQuota, emp.CurrentQuota)
	}
	wantDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !emp.QuotaResetDate.Equal(wantDate) {
		t.Errorf("expected quota_reset_date %v, got %v", wantDate, emp.QuotaResetDate)
	}

	again, err := svc.LookupEmployee(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if empRepo.resetCalls != 1 {
		t.Errorf("expected exactly one reset, got %d", empRepo.resetCalls)
	}
	if again.UsedQuota != 0 || again.CurrentQuota != domain.StandardMonthlyQuota || !again.QuotaResetDate.Equal(wantDate) {
		t.Errorf("second lookup changed state: %+v", again)
	}
}

// Окно, открытое 31-го числа, устаревает уже 1-го числа следующего
// месяца: сравнение идёт по (год, месяц), а не по 30-дневному таймеру
func TestLookupEmployee_MonthBoundaryNotDuration(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	seedEmployee(t, empRepo, 10, 7, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	emp, err := svc.LookupEmployee(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if emp.UsedQuota != 0 {
		t.Errorf("expected reset right after month boundary, used_quota = %d", emp.UsedQuota)
	}
}

func TestRecordConsumption_Success(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txn, updated, err := svc.RecordConsumption(context.Background(), emp.ID, 2)
	if err != nil {
		t.Fatalf("consumption failed: %v", err)
	}

	if txn.GallonsTaken != 2 {
		t.Errorf("expected gallons_taken 2, got %d", txn.GallonsTaken)
	}
	if txn.RemainingQuota != 5 {
		t.Errorf("expected remaining_quota snapshot 5, got %d", txn.RemainingQuota)
	}
	if !txn.TransactionDate.Equal(clock.now) {
		t.Errorf("expected transaction_date %v, got %v", clock.now, txn.TransactionDate)
	}
	if updated.UsedQuota != 5 {
		t.Errorf("expected used_quota 5, got %d", updated.UsedQuota)
	}
}

func TestRecordConsumption_QuotaExceeded(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 9, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	_, _, err := svc.RecordConsumption(context.Background(), emp.ID, 2)

	var quotaErr *domain.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quotaErr.Remaining != 1 {
		t.Errorf("expected remaining 1, got %d", quotaErr.Remaining)
	}

	// Отказ не оставляет следов: ни списания, ни транзакции
	stored, _ := empRepo.GetByID(context.Background(), emp.ID)
	if stored.UsedQuota != 9 {
		t.Errorf("expected used_quota unchanged at 9, got %d", stored.UsedQuota)
	}
	if txnRepo.count() != 0 {
		t.Errorf("expected no transactions, got %d", txnRepo.count())
	}
}

func TestRecordConsumption_ExactRemaining(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txn, updated, err := svc.RecordConsumption(context.Background(), emp.ID, 3)
	if err != nil {
		t.Fatalf("consuming exact remainder failed: %v", err)
	}
	if txn.RemainingQuota != 0 {
		t.Errorf("expected remaining_quota 0, got %d", txn.RemainingQuota)
	}
	if updated.UsedQuota != 10 {
		t.Errorf("expected used_quota 10, got %d", updated.UsedQuota)
	}
}

// Запрос сразу после границы месяца оценивается по свежему окну
func TestRecordConsumption_ResetBeforeQuotaCheck(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 10, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txn, updated, err := svc.RecordConsumption(context.Background(), emp.ID, 4)
	if err != nil {
		t.Fatalf("expected consumption against fresh window to succeed: %v", err)
	}
	if updated.UsedQuota != 4 {
		t.Errorf("expected used_quota 4 in new window, got %d", updated.UsedQuota)
	}
	if txn.RemainingQuota != 6 {
		t.Errorf("expected remaining_quota 6, got %d", txn.RemainingQuota)
	}
}

func TestRecordConsumption_InvalidAmount(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	for _, gallons := range []int{0, -3} {
		_, _, err := svc.RecordConsumption(context.Background(), emp.ID, gallons)
		if !errors.Is(err, domain.ErrInvalidGallonAmount) {
			t.Errorf("gallons=%d: expected ErrInvalidGallonAmount, got %v", gallons, err)
		}
	}
}

func TestRecordConsumption_EmployeeNotFound(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	_, _, err := svc.RecordConsumption(context.Background(), 999, 2)
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

// Ручная правка used_quota выше нормы даёт отрицательный остаток;
// выдача в таком состоянии отклоняется и остаток не уходит глубже
func TestRecordConsumption_AdminOverride(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 15, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	_, _, err := svc.RecordConsumption(context.Background(), emp.ID, 1)

	var quotaErr *domain.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quotaErr.Remaining != -5 {
		t.Errorf("expected remaining -5, got %d", quotaErr.Remaining)
	}

	stored, _ := empRepo.GetByID(context.Background(), emp.ID)
	if stored.UsedQuota != 15 {
		t.Errorf("expected used_quota unchanged at 15, got %d", stored.UsedQuota)
	}
}

// Снимок remaining_quota в транзакции не пересчитывается после
// последующих правок сотрудника
func TestRecordConsumption_SnapshotImmutable(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 3, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	txn, _, err := svc.RecordConsumption(context.Background(), emp.ID, 2)
	if err != nil {
		t.Fatalf("consumption failed: %v", err)
	}

	edited, _ := empRepo.GetByID(context.Background(), emp.ID)
	edited.CurrentQuota = 50
	edited.UsedQuota = 0
	if err := empRepo.Update(context.Background(), edited); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, err := txnRepo.AllWithEmployee(context.Background())
	if err != nil {
		t.Fatalf("listing transactions failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(stored))
	}
	if stored[0].RemainingQuota != txn.RemainingQuota || stored[0].RemainingQuota != 5 {
		t.Errorf("expected snapshot to stay 5, got %d", stored[0].RemainingQuota)
	}
}

// Два одновременных списания по 6 из квоты 10: проходит ровно одно,
// второе получает отказ с остатком 4
func TestRecordConsumption_ConcurrentRequests(t *testing.T) {
	empRepo := newMockEmployeeRepo()
	txnRepo := newMockTransactionRepo()
	clock := &fixedClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	svc := service.NewLedgerService(empRepo, txnRepo, clock)

	emp := seedEmployee(t, empRepo, 10, 0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RecordConsumption(context.Background(), emp.ID, 6)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, rejections int
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var quotaErr *domain.QuotaExceededError
		if !errors.As(err, &quotaErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if quotaErr.Remaining != 4 {
			t.Errorf("expected loser to see remaining 4, got %d", quotaErr.Remaining)
		}
		rejections++
	}

	if successes != 1 || rejections != 1 {
		t.Errorf("expected exactly one success and one rejection, got %d/%d", successes, rejections)
	}

	stored, _ := empRepo.GetByID(context.Background(), emp.ID)
	if stored.UsedQuota != 6 {
		t.Errorf("expected final used_quota 6, got %d", stored.UsedQuota)
	}
	if txnRepo.count() != 1 {
		t.Errorf("expected exactly one transaction, got %d", txnRepo.count())
	}
}
