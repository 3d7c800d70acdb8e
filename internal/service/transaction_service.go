package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/repository"
)

// TransactionService определяет интерфейс административного отчёта
// по транзакциям и его выгрузки в CSV
type TransactionService interface {
	List(ctx context.Context, offset, limit int) ([]domain.GallonTransaction, int64, error)
	ExportCSV(ctx context.Context) (data []byte, filename string, err error)
}

type transactionService struct {
	txnRepo repository.TransactionRepository
	clock   Clock
}

// NewTransactionService создаёт новый экземпляр сервиса
func NewTransactionService(txnRepo repository.TransactionRepository, clock Clock) TransactionService {
	return &transactionService{
		txnRepo: txnRepo,
		clock:   clock,
	}
}

func (s *transactionService) List(ctx context.Context, offset, limit int) ([]domain.GallonTransaction, int64, error) {
	return s.txnRepo.ListWithEmployee(ctx, offset, limit)
}

// ExportCSV собирает отчёт по всем транзакциям, новые сверху.
// Имя и отдел всегда берутся в двойные кавычки, внутренние кавычки удваиваются.
func (s *transactionService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	transactions, err := s.txnRepo.AllWithEmployee(ctx)
	if err != nil {
		return nil, "", err
	}

	var b strings.Builder
	b.WriteString("Transaction Date,Employee ID,Employee Name,Department,Gallons Taken,Remaining Quota\n")

	for _, txn := range transactions {
		var externalID, name, department string
		if txn.Employee != nil {
			externalID = txn.Employee.EmployeeID
			name = txn.Employee.Name
			department = txn.Employee.Department
		}

		fmt.Fprintf(&b, "%s,%s,%s,%s,%d,%d\n",
			txn.TransactionDate.Format("2006-01-02 15:04:05"),
			externalID,
			quoteCSVField(name),
			quoteCSVField(department),
			txn.GallonsTaken,
			txn.RemainingQuota,
		)
	}

	filename := fmt.Sprintf("gallon-transactions-%s.csv", s.clock.Now().Format("2006-01-02"))
	return []byte(b.String()), filename, nil
}

func quoteCSVField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
