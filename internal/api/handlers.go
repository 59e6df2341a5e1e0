package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"cosmossdk.io/math"

	"github.com/PublicAI01/publicai-staking/internal/services"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

const (
	accountHeader         = "X-Account-ID"
	attachedDepositHeader = "X-Attached-Deposit"
)

// caller extracts the authenticated account identity. The gateway in front
// of this service is responsible for populating the header.
func caller(r *http.Request) (string, *types.Error) {
	account := r.Header.Get(accountHeader)
	if account == "" {
		return "", types.NewValidationFailedError(
			fmt.Errorf("missing %s header", accountHeader),
		)
	}
	return account, nil
}

// attachedDeposit parses the confirmation deposit attached to the call.
// Absent means zero, which state-mutating endpoints reject.
func attachedDeposit(r *http.Request) (math.Uint, *types.Error) {
	raw := r.Header.Get(attachedDepositHeader)
	if raw == "" {
		return math.ZeroUint(), nil
	}
	deposit, err := math.ParseUint(raw)
	if err != nil {
		return math.ZeroUint(), types.NewValidationFailedError(
			fmt.Errorf("invalid %s header: %w", attachedDepositHeader, err),
		)
	}
	return deposit, nil
}

func decodeBody(r *http.Request, dst any) *types.Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationFailedError(
			fmt.Errorf("invalid request body: %w", err),
		)
	}
	return nil
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type onTransferRequest struct {
	Contract string `json:"contract"`
	Sender   string `json:"sender"`
	Amount   string `json:"amount"`
	Memo     string `json:"memo"`
}

type onTransferResponse struct {
	UnusedAmount string `json:"unused_amount"`
}

// handleOnTransfer receives the token ledger's transfer notification. A
// rejected deposit is not an HTTP error: the full amount is echoed back as
// unused so the ledger returns it to the sender.
func (s *Server) handleOnTransfer(w http.ResponseWriter, r *http.Request) {
	var req onTransferRequest
	if terr := decodeBody(r, &req); terr != nil {
		writeError(w, terr)
		return
	}
	amount, err := math.ParseUint(req.Amount)
	if err != nil {
		writeError(w, types.NewValidationFailedError(
			fmt.Errorf("invalid amount: %w", err),
		))
		return
	}

	unused, terr := s.svc.HandleDeposit(r.Context(), &services.TransferNotification{
		Contract: req.Contract,
		Sender:   req.Sender,
		Amount:   amount,
		Memo:     req.Memo,
	})
	if terr != nil && terr.ErrorCode == types.InternalServiceError {
		writeError(w, terr)
		return
	}

	writeJSON(w, http.StatusOK, onTransferResponse{UnusedAmount: unused.String()})
}

type unstakeResponse struct {
	Amount string `json:"amount"`
}

func (s *Server) handleUnstake(w http.ResponseWriter, r *http.Request) {
	account, terr := caller(r)
	if terr != nil {
		writeError(w, terr)
		return
	}
	deposit, terr := attachedDeposit(r)
	if terr != nil {
		writeError(w, terr)
		return
	}

	amount, terr := s.svc.InitiateWithdrawal(r.Context(), account, deposit)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, unstakeResponse{Amount: amount.String()})
}

type stakeInfoResponse struct {
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	StartTime int64  `json:"start_time"`
}

func (s *Server) handleGetStakeInfo(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeError(w, types.NewValidationFailedError(
			fmt.Errorf("missing account query parameter"),
		))
		return
	}

	record, terr := s.svc.GetStakeInfo(r.Context(), account)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, stakeInfoResponse{
		Account:   record.Account,
		Amount:    record.Amount,
		StartTime: record.StartTime,
	})
}

func (s *Server) handleUserStaked(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeError(w, types.NewValidationFailedError(
			fmt.Errorf("missing account query parameter"),
		))
		return
	}

	info, terr := s.svc.UserStaked(r.Context(), account)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type stakeInfosResponse struct {
	Records []stakeInfoResponse `json:"records"`
	Offset  int64               `json:"offset"`
	Limit   int64               `json:"limit"`
}

func (s *Server) handleSearchStakeInfos(w http.ResponseWriter, r *http.Request) {
	offset, terr := queryInt64(r, "offset", 0)
	if terr != nil {
		writeError(w, terr)
		return
	}
	limit, terr := queryInt64(r, "limit", services.DefaultSearchLimit)
	if terr != nil {
		writeError(w, terr)
		return
	}

	records, terr := s.svc.SearchStakeInfos(r.Context(), offset, limit)
	if terr != nil {
		writeError(w, terr)
		return
	}

	resp := stakeInfosResponse{
		Records: make([]stakeInfoResponse, 0, len(records)),
		Offset:  offset,
		Limit:   limit,
	}
	for _, record := range records {
		resp.Records = append(resp.Records, stakeInfoResponse{
			Account:   record.Account,
			Amount:    record.Amount,
			StartTime: record.StartTime,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	TotalStaked   string `json:"total_staked"`
	TotalAccounts int64  `json:"total_accounts"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, terr := s.svc.GetOverallStats(r.Context())
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalStaked:   stats.TotalStaked.String(),
		TotalAccounts: stats.TotalAccounts,
	})
}

type paramsResponse struct {
	Owner               string `json:"owner"`
	RequiredStakeAmount string `json:"required_stake_amount"`
	LockDurationSecs    int64  `json:"lock_duration_secs"`
	StakePaused         bool   `json:"stake_paused"`
}

func (s *Server) handleGetParams(w http.ResponseWriter, r *http.Request) {
	params, terr := s.svc.GetGlobalParams(r.Context())
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, paramsResponse{
		Owner:               params.Owner,
		RequiredStakeAmount: params.RequiredStakeAmount,
		LockDurationSecs:    params.LockDurationSecs,
		StakePaused:         params.StakePaused,
	})
}

type setPausedRequest struct {
	Paused bool `json:"paused"`
}

func (s *Server) handleSetStakePaused(w http.ResponseWriter, r *http.Request) {
	account, deposit, terr := adminCall(r)
	if terr != nil {
		writeError(w, terr)
		return
	}
	var req setPausedRequest
	if terr := decodeBody(r, &req); terr != nil {
		writeError(w, terr)
		return
	}

	if terr := s.svc.SetStakePaused(r.Context(), account, deposit, req.Paused); terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

type setLockDurationRequest struct {
	LockDurationSecs int64 `json:"lock_duration_secs"`
}

func (s *Server) handleSetLockDuration(w http.ResponseWriter, r *http.Request) {
	account, deposit, terr := adminCall(r)
	if terr != nil {
		writeError(w, terr)
		return
	}
	var req setLockDurationRequest
	if terr := decodeBody(r, &req); terr != nil {
		writeError(w, terr)
		return
	}

	if terr := s.svc.SetLockDuration(
		r.Context(), account, deposit, req.LockDurationSecs,
	); terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"lock_duration_secs": req.LockDurationSecs})
}

type setStakeAmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleSetRequiredStakeAmount(w http.ResponseWriter, r *http.Request) {
	account, deposit, terr := adminCall(r)
	if terr != nil {
		writeError(w, terr)
		return
	}
	var req setStakeAmountRequest
	if terr := decodeBody(r, &req); terr != nil {
		writeError(w, terr)
		return
	}
	amount, err := math.ParseUint(req.Amount)
	if err != nil {
		writeError(w, types.NewValidationFailedError(
			fmt.Errorf("invalid amount: %w", err),
		))
		return
	}

	if terr := s.svc.SetRequiredStakeAmount(
		r.Context(), account, deposit, amount,
	); terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"required_stake_amount": amount.String()})
}

type updateOwnerRequest struct {
	Owner string `json:"owner"`
}

func (s *Server) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	account, deposit, terr := adminCall(r)
	if terr != nil {
		writeError(w, terr)
		return
	}
	var req updateOwnerRequest
	if terr := decodeBody(r, &req); terr != nil {
		writeError(w, terr)
		return
	}

	if terr := s.svc.UpdateOwner(r.Context(), account, deposit, req.Owner); terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": req.Owner})
}

func adminCall(r *http.Request) (string, math.Uint, *types.Error) {
	account, terr := caller(r)
	if terr != nil {
		return "", math.ZeroUint(), terr
	}
	deposit, terr := attachedDeposit(r)
	if terr != nil {
		return "", math.ZeroUint(), terr
	}
	return account, deposit, nil
}

func queryInt64(r *http.Request, name string, fallback int64) (int64, *types.Error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, types.NewValidationFailedError(
			fmt.Errorf("invalid %s query parameter: %w", name, err),
		)
	}
	return value, nil
}
