package reports

import (
	"sort"

	"somiti-server/internal/domain/member"
	"somiti-server/internal/domain/transaction"
)

// ApproverTotals is one row of the admin report. AdminName and AdminEmail are
// nil for transactions that carry no approver.
type ApproverTotals struct {
	AdminName        *string `json:"adminName"`
	AdminEmail       *string `json:"adminEmail"`
	AdminImage       *string `json:"adminImage,omitempty"`
	TotalDeposits    float64 `json:"totalDeposits"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalPenalties   float64 `json:"totalPenalties"`
}

type AdminReport struct {
	TotalDepositsApproved    float64          `json:"totalDepositsApproved"`
	TotalWithdrawalsApproved float64          `json:"totalWithdrawalsApproved"`
	TotalPenaltiesApproved   float64          `json:"totalPenaltiesApproved"`
	Admins                   []ApproverTotals `json:"admins"`
}

type approverKey struct {
	name  string
	email string
}

// BuildAdminReport groups transactions by approver name and email. Rows are
// ordered by name with the unnamed bucket first; the image is the photo of
// the first member whose email equals the approver email.
func BuildAdminReport(transactions []transaction.Transaction, members []member.Member) AdminReport {
	photos := make(map[string]string)
	for _, m := range members {
		if _, seen := photos[m.Email]; seen {
			continue
		}
		photos[m.Email] = m.Photo
	}

	var report AdminReport
	groups := make(map[approverKey]*ApproverTotals)
	order := make([]approverKey, 0)

	for _, tx := range transactions {
		key := approverKey{name: tx.ApprovedBy, email: tx.ApprovedByEmail}
		row, ok := groups[key]
		if !ok {
			row = newApproverTotals(key, photos)
			groups[key] = row
			order = append(order, key)
		}

		switch {
		case tx.Type == transaction.TypeDeposit:
			row.TotalDeposits += tx.Amount
			report.TotalDepositsApproved += tx.Amount
		case tx.Type.IsWithdraw():
			row.TotalWithdrawals += tx.Amount
			report.TotalWithdrawalsApproved += tx.Amount
		case tx.Type == transaction.TypePenalty:
			row.TotalPenalties += tx.Amount
			report.TotalPenaltiesApproved += tx.Amount
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].name < order[j].name
	})

	report.Admins = make([]ApproverTotals, 0, len(order))
	for _, key := range order {
		report.Admins = append(report.Admins, *groups[key])
	}
	return report
}

func newApproverTotals(key approverKey, photos map[string]string) *ApproverTotals {
	row := &ApproverTotals{}
	if key.name != "" {
		name := key.name
		row.AdminName = &name
	}
	if key.email != "" {
		email := key.email
		row.AdminEmail = &email
		if photo, ok := photos[email]; ok && photo != "" {
			row.AdminImage = &photo
		}
	}
	return row
}
