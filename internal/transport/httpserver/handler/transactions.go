package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	transactiondomain "somiti-server/internal/domain/transaction"
)

type transactionResponse struct {
	ID              string    `json:"_id"`
	MemberID        string    `json:"memberId,omitempty"`
	MemberEmail     string    `json:"memberEmail,omitempty"`
	MemberName      string    `json:"memberName,omitempty"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
	Date            string    `json:"date"`
	ApprovedBy      string    `json:"approvedBy,omitempty"`
	ApprovedByEmail string    `json:"approvedByEmail,omitempty"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type createTransactionRequest struct {
	MemberID        string  `json:"memberId"`
	MemberEmail     string  `json:"memberEmail"`
	MemberName      string  `json:"memberName"`
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"paymentMethod"`
	Date            string  `json:"date"`
	ApprovedBy      string  `json:"approvedBy"`
	ApprovedByEmail string  `json:"approvedByEmail"`
	Note            string  `json:"note"`
}

func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Transactions.Create(r.Context(), transactiondomain.CreateInput{
		MemberID:        req.MemberID,
		MemberEmail:     req.MemberEmail,
		MemberName:      req.MemberName,
		Type:            transactiondomain.Type(strings.TrimSpace(req.Type)),
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		Date:            req.Date,
		ApprovedBy:      req.ApprovedBy,
		ApprovedByEmail: req.ApprovedByEmail,
		Note:            req.Note,
	})
	if err != nil {
		h.writeTransactionError(w, "transactions.create", err, "member_email", req.MemberEmail, "type", req.Type)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(*result))
}

func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	dateRange, err := transactiondomain.ParseDateRange(values.Get("startDate"), values.Get("endDate"))
	if err != nil {
		h.log.BusinessError("transactions.list: invalid date range", err, "query", r.URL.RawQuery)
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	email := strings.TrimSpace(values.Get("memberEmail"))
	if email == "" {
		email = strings.TrimSpace(values.Get("email"))
	}

	items, err := h.Transactions.List(r.Context(), transactiondomain.ListFilter{
		MemberID:    strings.TrimSpace(values.Get("memberId")),
		MemberEmail: email,
		Type:        transactiondomain.Type(strings.TrimSpace(values.Get("type"))),
		Range:       dateRange,
	})
	if err != nil {
		h.writeTransactionError(w, "transactions.list", err)
		return
	}

	response := make([]transactionResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toTransactionResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Transactions.Delete(r.Context(), id); err != nil {
		h.writeTransactionError(w, "transactions.delete", err, "transaction_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeTransactionError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, transactiondomain.ErrTransactionNotFound):
		h.log.BusinessError(op+": transaction not found", err, args...)
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
	case errors.Is(err, transactiondomain.ErrInvalidID),
		errors.Is(err, transactiondomain.ErrInvalidType),
		errors.Is(err, transactiondomain.ErrInvalidAmount),
		errors.Is(err, transactiondomain.ErrInvalidDate),
		errors.Is(err, transactiondomain.ErrMemberRequired):
		h.log.BusinessError(op+": invalid request", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeInternalError(w)
	}
}

func toTransactionResponse(tx transactiondomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		MemberID:        tx.MemberID,
		MemberEmail:     tx.MemberEmail,
		MemberName:      tx.MemberName,
		Type:            string(tx.Type),
		Amount:          tx.Amount,
		PaymentMethod:   tx.PaymentMethod,
		Date:            tx.Date,
		ApprovedBy:      tx.ApprovedBy,
		ApprovedByEmail: tx.ApprovedByEmail,
		Note:            tx.Note,
		CreatedAt:       tx.CreatedAt,
	}
}
