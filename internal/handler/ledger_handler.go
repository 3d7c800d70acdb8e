package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/dto"
	"github.com/gallon-quota-api/internal/service"
	"github.com/go-playground/validator/v10"
)

// Размеры страниц отчётов, унаследованные от исходной системы
const (
	employeesPerPage    = 15
	transactionsPerPage = 20
)

// LedgerHandler обслуживает сканирование штрих-кода, выдачу галлонов
// и административный отчёт по транзакциям
type LedgerHandler struct {
	ledgerService service.LedgerService
	txnService    service.TransactionService
	validator     *validator.Validate
	logger        *slog.Logger
}

func NewLedgerHandler(
	ledgerService service.LedgerService,
	txnService service.TransactionService,
	logger *slog.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		txnService:    txnService,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Scan ищет сотрудника по номеру карты и сверяет месячное окно квоты
func (h *LedgerHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	emp, err := h.ledgerService.LookupEmployee(r.Context(), req.EmployeeID)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			h.respondError(w, http.StatusNotFound, "employee not found",
				"Employee not found. Please check the ID and try again.")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	resp := toEmployeeResponse(emp, true)
	h.respondJSON(w, http.StatusOK, dto.ScanResponse{Employee: &resp})
}

// ProcessTransaction проводит выдачу галлонов сотруднику
func (h *LedgerHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	txn, emp, err := h.ledgerService.RecordConsumption(r.Context(), req.EmployeeID, req.GallonsTaken)
	if err != nil {
		var quotaErr *domain.QuotaExceededError
		if errors.As(err, &quotaErr) {
			h.respondError(w, http.StatusUnprocessableEntity, "quota exceeded",
				fmt.Sprintf("Insufficient quota. You only have %d gallons remaining.", quotaErr.Remaining))
			return
		}
		h.handleServiceError(w, err)
		return
	}

	txnResp := toTransactionResponse(txn)
	empResp := toEmployeeResponse(emp, true)
	h.respondJSON(w, http.StatusCreated, dto.TransactionResult{
		Transaction: &txnResp,
		Employee:    &empResp,
		Message: fmt.Sprintf("Transaction successful! You took %d gallons. Remaining quota: %d gallons.",
			txn.GallonsTaken, txn.RemainingQuota),
	})
}

// ListTransactions отдаёт постраничный отчёт по транзакциям, новые сверху
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	transactions, total, err := h.txnService.List(r.Context(), (page-1)*transactionsPerPage, transactionsPerPage)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(transactions)),
		Page:         page,
		PerPage:      transactionsPerPage,
		Total:        total,
	}
	for i := range transactions {
		resp.Transactions[i] = toTransactionResponseWithEmployee(&transactions[i])
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ExportTransactions отдаёт отчёт по транзакциям файлом CSV
func (h *LedgerHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.txnService.ExportCSV(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write csv export", slog.Any("error", err))
	}
}

func (h *LedgerHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmployeeNotFound):
		h.respondError(w, http.StatusNotFound, "employee not found", "")
	case errors.Is(err, domain.ErrInvalidGallonAmount):
		h.respondError(w, http.StatusBadRequest, "gallon amount must be at least 1", "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *LedgerHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *LedgerHandler) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

func parsePage(r *http.Request) int {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	return page
}
