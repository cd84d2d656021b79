package amqp

import (
	"encoding/json"
	"time"

	"somiti-server/internal/domain/transaction"
)

// TransactionMessage is the body published for ledger changes.
type TransactionMessage struct {
	Kind        transaction.EventKind `json:"kind"`
	OccurredAt  time.Time             `json:"occurredAt"`
	Transaction TransactionPayload    `json:"transaction"`
}

type TransactionPayload struct {
	ID              string  `json:"id"`
	MemberID        string  `json:"memberId,omitempty"`
	MemberEmail     string  `json:"memberEmail,omitempty"`
	MemberName      string  `json:"memberName,omitempty"`
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"paymentMethod,omitempty"`
	Date            string  `json:"date"`
	ApprovedBy      string  `json:"approvedBy,omitempty"`
	ApprovedByEmail string  `json:"approvedByEmail,omitempty"`
}

func NewTransactionMessage(event transaction.Event, at time.Time) *TransactionMessage {
	tx := event.Transaction
	return &TransactionMessage{
		Kind:       event.Kind,
		OccurredAt: at.UTC(),
		Transaction: TransactionPayload{
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
		},
	}
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
