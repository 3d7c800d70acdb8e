package handler

import (
	"github.com/gallon-quota-api/internal/domain"
	"github.com/gallon-quota-api/internal/dto"
)

func toEmployeeResponse(emp *domain.Employee, includeTransactions bool) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:             emp.ID,
		EmployeeID:     emp.EmployeeID,
		Name:           emp.Name,
		Department:     emp.Department,
		CurrentQuota:   emp.CurrentQuota,
		UsedQuota:      emp.UsedQuota,
		RemainingQuota: emp.RemainingQuota(),
		QuotaResetDate: emp.QuotaResetDate.Format("2006-01-02"),
		CreatedAt:      emp.CreatedAt,
	}

	if includeTransactions && len(emp.Transactions) > 0 {
		resp.Transactions = make([]dto.TransactionResponse, len(emp.Transactions))
		for i := range emp.Transactions {
			resp.Transactions[i] = toTransactionResponse(&emp.Transactions[i])
		}
	}

	return resp
}

func toTransactionResponse(txn *domain.GallonTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              txn.ID,
		EmployeeID:      txn.EmployeeID,
		GallonsTaken:    txn.GallonsTaken,
		RemainingQuota:  txn.RemainingQuota,
		TransactionDate: txn.TransactionDate,
	}
}

func toTransactionResponseWithEmployee(txn *domain.GallonTransaction) dto.TransactionResponse {
	resp := toTransactionResponse(txn)
	if txn.Employee != nil {
		resp.EmployeeName = txn.Employee.Name
		resp.EmployeeExternalID = txn.Employee.EmployeeID
		resp.Department = txn.Employee.Department
	}
	return resp
}
