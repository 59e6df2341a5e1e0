package model

import (
	"time"

	"cosmossdk.io/math"
)

const PendingWithdrawalCollection = "pending_withdrawals"

// PendingWithdrawalDocument is the durable intent record of an in-flight
// withdrawal: everything needed to undo the optimistic removal of the stake
// record if settlement fails. Its existence is also the at-most-once guard
// for the settlement callback; finalization deletes it, and a second
// delivery of the same outcome finds nothing to act on.
type PendingWithdrawalDocument struct {
	Account     string    `bson:"_id"`
	RequestID   string    `bson:"request_id"`
	Amount      string    `bson:"amount"`
	StartTime   int64     `bson:"start_time"`
	RequestedAt time.Time `bson:"requested_at"`
}

func NewPendingWithdrawalDocument(
	account, requestID string, amount math.Uint, startTime int64, requestedAt time.Time,
) *PendingWithdrawalDocument {
	return &PendingWithdrawalDocument{
		Account:     account,
		RequestID:   requestID,
		Amount:      amount.String(),
		StartTime:   startTime,
		RequestedAt: requestedAt,
	}
}

func (d *PendingWithdrawalDocument) AmountUint() math.Uint {
	return math.NewUintFromString(d.Amount)
}
