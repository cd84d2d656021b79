package handler

import (
	"net/http"

	transactiondomain "somiti-server/internal/domain/transaction"
)

type leaderboardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Statistics(r.Context())
	if err != nil {
		h.log.InternalError("reports.statistics: build failed", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) AdminReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.AdminReport(r.Context())
	if err != nil {
		h.log.InternalError("reports.admin_report: build failed", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Reports.Leaderboard(r.Context())
	if err != nil {
		h.log.InternalError("reports.leaderboard: build failed", err)
		writeJSON(w, http.StatusInternalServerError, leaderboardResponse{
			Success: false,
			Message: "server error while fetching leaderboard",
		})
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Success: true, Data: entries})
}

func (h *Handlers) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	dateRange, err := transactiondomain.ParseDateRange(values.Get("startDate"), values.Get("endDate"))
	if err != nil {
		h.log.BusinessError("reports.summary: invalid date range", err, "query", r.URL.RawQuery)
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	summary, err := h.Reports.Summary(r.Context(), dateRange)
	if err != nil {
		h.log.InternalError("reports.summary: build failed", err, "start", dateRange.Start, "end", dateRange.End)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
