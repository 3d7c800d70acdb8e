package repository

import (
	"context"

	"github.com/gallon-quota-api/internal/domain"
	"gorm.io/gorm"
)

// TransactionRepository определяет интерфейс для работы с транзакциями
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.GallonTransaction) error
	ListWithEmployee(ctx context.Context, offset, limit int) ([]domain.GallonTransaction, int64, error)
	AllWithEmployee(ctx context.Context) ([]domain.GallonTransaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository создаёт новый экземпляр репозитория
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.GallonTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) ListWithEmployee(ctx context.Context, offset, limit int) ([]domain.GallonTransaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.GallonTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []domain.GallonTransaction
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("transaction_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepository) AllWithEmployee(ctx context.Context) ([]domain.GallonTransaction, error) {
	var transactions []domain.GallonTransaction
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("transaction_date DESC").
		Find(&transactions).Error
	return transactions, err
}
