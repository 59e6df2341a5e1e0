package types

// SettlementEvent is the asynchronous outcome of an outbound token transfer,
// delivered on the settlement queue. The withdrawn amount and original
// start_time are intentionally not part of the message; the durable
// pending-withdrawal record is the authoritative copy of that closure state.
type SettlementEvent struct {
	RequestID string `json:"request_id"`
	Account   string `json:"account"`
	Success   bool   `json:"success"`
}
