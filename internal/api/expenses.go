package api

import (
	"net/http"

	"github.com/mmynk/splitledger/internal/service"
)

// ListExpenses handles GET /api/groups/{ref}/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.ListExpenses(r.Context(), urlParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": toExpensesJSON(expenses)})
}

// AddExpense handles POST /api/groups/{ref}/expenses.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var in service.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := h.expenses.AddExpense(r.Context(), urlParam(r, "ref"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

// GetExpense handles GET /api/groups/{ref}/expenses/{expenseID}.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.expenses.GetExpense(r.Context(), urlParam(r, "ref"), urlParam(r, "expenseID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

// UpdateExpense handles PUT /api/groups/{ref}/expenses/{expenseID}.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var in service.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := h.expenses.UpdateExpense(r.Context(), urlParam(r, "ref"), urlParam(r, "expenseID"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

// DeleteExpense handles DELETE /api/groups/{ref}/expenses/{expenseID}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.expenses.DeleteExpense(r.Context(), urlParam(r, "ref"), urlParam(r, "expenseID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPayments handles GET /api/groups/{ref}/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.expenses.ListPayments(r.Context(), urlParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]paymentJSON, len(payments))
	for i, p := range payments {
		out[i] = toPaymentJSON(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

// RecordPayment handles POST /api/groups/{ref}/payments.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := h.expenses.RecordPayment(r.Context(), urlParam(r, "ref"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentJSON(payment))
}

// DeletePayment handles DELETE /api/groups/{ref}/payments/{paymentID}.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.expenses.DeletePayment(r.Context(), urlParam(r, "ref"), urlParam(r, "paymentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
