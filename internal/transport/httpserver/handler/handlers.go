package handler

import (
	memberdomain "somiti-server/internal/domain/member"
	reportsdomain "somiti-server/internal/domain/reports"
	transactiondomain "somiti-server/internal/domain/transaction"
	"somiti-server/pkg/logger"
)

type Handlers struct {
	Members      *memberdomain.Service
	Transactions *transactiondomain.Service
	Reports      *reportsdomain.Service
	log          logger.Logger
}

func New(members *memberdomain.Service, transactions *transactiondomain.Service, reports *reportsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Members:      members,
		Transactions: transactions,
		Reports:      reports,
		log:          log,
	}
}
