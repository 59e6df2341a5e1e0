package model

import "cosmossdk.io/math"

const StakeRecordCollection = "stake_records"

// StakeRecordDocument is the principal ledger entry for one account.
// Amount is stored as a base-10 unsigned integer string so the full 128-bit
// range round-trips exactly.
type StakeRecordDocument struct {
	Account   string `bson:"_id"`
	Amount    string `bson:"amount"`
	StartTime int64  `bson:"start_time"`
}

func NewStakeRecordDocument(account string, amount math.Uint, startTime int64) *StakeRecordDocument {
	return &StakeRecordDocument{
		Account:   account,
		Amount:    amount.String(),
		StartTime: startTime,
	}
}

// AmountUint parses the stored amount. Documents are only ever written from
// a math.Uint, so parsing cannot fail on well-formed data.
func (d *StakeRecordDocument) AmountUint() math.Uint {
	return math.NewUintFromString(d.Amount)
}
