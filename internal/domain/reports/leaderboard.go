package reports

import (
	"sort"
	"time"

	"somiti-server/internal/domain/member"
	"somiti-server/internal/domain/transaction"
)

type LeaderboardEntry struct {
	Rank              int       `json:"rank"`
	MemberID          string    `json:"uid"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Photo             string    `json:"photo,omitempty"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	JoinDate          time.Time `json:"joinDate"`
	TotalDeposit      float64   `json:"totalDeposit"`
	TotalWithdraw     float64   `json:"totalWithdraw"`
	TotalPenalty      float64   `json:"totalPenalties"`
	TotalContribution float64   `json:"totalContribution"`
}

// BuildLeaderboard ranks every member by net contribution, highest first.
// Equal contributions share a rank and the next distinct value gets the next
// rank (dense ranking). Ties keep the members' input order.
func BuildLeaderboard(members []member.Member, transactions []transaction.Transaction) []LeaderboardEntry {
	byEmail := transaction.GroupByEmail(transactions)

	entries := make([]LeaderboardEntry, 0, len(members))
	for _, m := range members {
		c := transaction.ComputeContribution(byEmail[m.Email])
		entries = append(entries, LeaderboardEntry{
			MemberID:          m.ID,
			Name:              m.Name,
			Email:             m.Email,
			Photo:             m.Photo,
			PhoneNumber:       m.PhoneNumber,
			JoinDate:          m.CreatedAt,
			TotalDeposit:      c.TotalDeposit,
			TotalWithdraw:     c.TotalWithdraw,
			TotalPenalty:      c.TotalPenalty,
			TotalContribution: c.TotalContribution,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalContribution > entries[j].TotalContribution
	})

	rank := 0
	for i := range entries {
		if i == 0 || entries[i].TotalContribution != entries[i-1].TotalContribution {
			rank++
		}
		entries[i].Rank = rank
	}
	return entries
}
