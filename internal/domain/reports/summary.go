package reports

import (
	"sort"
	"time"

	"somiti-server/internal/domain/transaction"
)

const unspecifiedCategory = "Unspecified"

// fillMonths are always present in the monthly series, with zero totals when
// no transaction falls in them.
// TODO: derive the window from the requested range once the dashboard stops
// assuming January to May.
var fillMonths = []string{"January", "February", "March", "April", "May"}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type MonthTotal struct {
	Month    string  `json:"month"`
	Deposit  float64 `json:"deposit"`
	Withdraw float64 `json:"withdraw"`
}

type PeriodTotals struct {
	TotalDeposits    float64 `json:"totalDeposits"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalPenalties   float64 `json:"totalPenalties"`
}

type PeriodSummary struct {
	StartDate   string          `json:"startDate,omitempty"`
	EndDate     string          `json:"endDate,omitempty"`
	Deposits    []CategoryTotal `json:"deposits"`
	Withdrawals []CategoryTotal `json:"withdrawals"`
	Totals      PeriodTotals    `json:"totals"`
	Monthly     []MonthTotal    `json:"monthly"`
}

// SummarizePeriod totals the transactions whose date falls inside r. The
// range check is a string comparison, so dates must be zero-padded
// YYYY-MM-DD to filter correctly.
//
// The monthly series is keyed by English month name and sorted by that name
// alphabetically, not by calendar order. Months from different years share a
// bucket.
func SummarizePeriod(transactions []transaction.Transaction, r transaction.DateRange) PeriodSummary {
	summary := PeriodSummary{StartDate: r.Start, EndDate: r.End}
	deposits := make(map[string]float64)
	withdrawals := make(map[string]float64)
	months := make(map[string]*MonthTotal)

	for _, tx := range transactions {
		if !r.Contains(tx.Date) {
			continue
		}

		category := tx.PaymentMethod
		if category == "" {
			category = unspecifiedCategory
		}

		switch {
		case tx.Type == transaction.TypeDeposit:
			deposits[category] += tx.Amount
			summary.Totals.TotalDeposits += tx.Amount
		case tx.Type.IsWithdraw():
			withdrawals[category] += tx.Amount
			summary.Totals.TotalWithdrawals += tx.Amount
		case tx.Type == transaction.TypePenalty:
			summary.Totals.TotalPenalties += tx.Amount
		}

		name, ok := monthName(tx.Date)
		if !ok {
			continue
		}
		bucket, ok := months[name]
		if !ok {
			bucket = &MonthTotal{Month: name}
			months[name] = bucket
		}
		switch {
		case tx.Type == transaction.TypeDeposit:
			bucket.Deposit += tx.Amount
		case tx.Type.IsWithdraw():
			bucket.Withdraw += tx.Amount
		}
	}

	for _, name := range fillMonths {
		if _, ok := months[name]; !ok {
			months[name] = &MonthTotal{Month: name}
		}
	}

	summary.Deposits = categoryTotals(deposits)
	summary.Withdrawals = categoryTotals(withdrawals)
	summary.Monthly = make([]MonthTotal, 0, len(months))
	for _, bucket := range months {
		summary.Monthly = append(summary.Monthly, *bucket)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].Month < summary.Monthly[j].Month
	})
	return summary
}

// monthName reads the YYYY-MM prefix of a date.
func monthName(date string) (string, bool) {
	if len(date) < 7 {
		return "", false
	}
	t, err := time.Parse("2006-01", date[:7])
	if err != nil {
		return "", false
	}
	return t.Month().String(), true
}

func categoryTotals(totals map[string]float64) []CategoryTotal {
	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}
