package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gallon-quota-api/internal/middleware"
)

// Router настраивает маршруты API
type Router struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	ledgerHandler *LedgerHandler
	empHandler    *EmployeeHandler
}

// NewRouter создаёт новый роутер
func NewRouter(ledgerHandler *LedgerHandler, empHandler *EmployeeHandler, logger *slog.Logger) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		logger:        logger,
		ledgerHandler: ledgerHandler,
		empHandler:    empHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	// Киоск: сканирование карты и выдача галлонов
	r.mux.HandleFunc("/scan", r.scanRouter)
	r.mux.HandleFunc("/transactions", r.transactionsRouter)

	// Администрирование
	r.mux.HandleFunc("/employees/", r.employeesRouter)
	r.mux.HandleFunc("/admin/transactions", r.adminTransactionsRouter)
	r.mux.HandleFunc("/admin/transactions/export", r.adminExportRouter)

	// Health check
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return handler
}

func (r *Router) scanRouter(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.ledgerHandler.Scan(w, req)
}

func (r *Router) transactionsRouter(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.ledgerHandler.ProcessTransaction(w, req)
}

// employeesRouter обрабатывает все запросы к /employees/
func (r *Router) employeesRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/employees")
	path = strings.Trim(path, "/")

	// /employees/ без идентификатора - создание и список
	if path == "" {
		switch req.Method {
		case http.MethodPost:
			r.empHandler.Create(w, req)
		case http.MethodGet:
			r.empHandler.List(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	// /employees/{id}
	if !strings.Contains(path, "/") {
		switch req.Method {
		case http.MethodGet:
			r.empHandler.GetByID(w, req)
		case http.MethodPatch:
			r.empHandler.Update(w, req)
		case http.MethodDelete:
			r.empHandler.Delete(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}

func (r *Router) adminTransactionsRouter(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.ledgerHandler.ListTransactions(w, req)
}

func (r *Router) adminExportRouter(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	r.ledgerHandler.ExportTransactions(w, req)
}
