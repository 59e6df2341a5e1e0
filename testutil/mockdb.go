package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/math"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/PublicAI01/publicai-staking/internal/db"
	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// MockDB is an in-memory DbInterface used by the service unit tests. It
// mirrors the database semantics the services rely on: conditional state
// transitions, insert-only pending withdrawals and incremental counters.
// All methods are safe for concurrent use.
type MockDB struct {
	mu sync.Mutex

	stakeRecords map[string]model.StakeRecordDocument
	states       map[string]types.OperationState
	params       *model.GlobalParamsDocument
	stats        model.OverallStatsDocument
	pending      map[string]model.PendingWithdrawalDocument

	// FailNext maps a method name to an error returned on its next call,
	// consumed once. Lets tests exercise mid-operation failures.
	FailNext map[string]error
}

func NewMockDB() *MockDB {
	return &MockDB{
		stakeRecords: make(map[string]model.StakeRecordDocument),
		states:       make(map[string]types.OperationState),
		stats: model.OverallStatsDocument{
			ID:          model.OverallStatsID,
			TotalStaked: mustDecimal128("0"),
		},
		pending:  make(map[string]model.PendingWithdrawalDocument),
		FailNext: make(map[string]error),
	}
}

func mustDecimal128(s string) primitive.Decimal128 {
	d, err := primitive.ParseDecimal128(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (m *MockDB) failNext(method string) error {
	if err, ok := m.FailNext[method]; ok {
		delete(m.FailNext, method)
		return err
	}
	return nil
}

func (m *MockDB) Ping(ctx context.Context) error {
	return nil
}

func (m *MockDB) GetStakeRecord(ctx context.Context, account string) (*model.StakeRecordDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("GetStakeRecord"); err != nil {
		return nil, err
	}

	record, ok := m.stakeRecords[account]
	if !ok {
		return nil, &db.NotFoundError{Key: account, Message: "stake record not found"}
	}
	return &record, nil
}

func (m *MockDB) UpsertStakeRecord(ctx context.Context, record *model.StakeRecordDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("UpsertStakeRecord"); err != nil {
		return err
	}

	m.stakeRecords[record.Account] = *record
	return nil
}

func (m *MockDB) DeleteStakeRecord(ctx context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("DeleteStakeRecord"); err != nil {
		return err
	}

	if _, ok := m.stakeRecords[account]; !ok {
		return &db.NotFoundError{Key: account, Message: "stake record not found"}
	}
	delete(m.stakeRecords, account)
	return nil
}

func (m *MockDB) FindStakeRecords(ctx context.Context, offset, limit int64) ([]model.StakeRecordDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("FindStakeRecords"); err != nil {
		return nil, err
	}

	accounts := make([]string, 0, len(m.stakeRecords))
	for account := range m.stakeRecords {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	records := make([]model.StakeRecordDocument, 0, limit)
	for i := offset; i < int64(len(accounts)) && int64(len(records)) < limit; i++ {
		records = append(records, m.stakeRecords[accounts[i]])
	}
	return records, nil
}

func (m *MockDB) GetOperationState(ctx context.Context, account string) (types.OperationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[account]
	if !ok {
		return types.StateIdle, nil
	}
	return state, nil
}

func (m *MockDB) UpdateOperationState(
	ctx context.Context,
	account string,
	qualifiedPreviousStates []types.OperationState,
	newState types.OperationState,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("UpdateOperationState"); err != nil {
		return err
	}

	current, ok := m.states[account]
	if !ok {
		current = types.StateIdle
	}
	for _, qualified := range qualifiedPreviousStates {
		if current == qualified {
			m.states[account] = newState
			return nil
		}
	}
	return &db.StateConflictError{
		Account: account,
		Message: "operation state transition not allowed",
	}
}

func (m *MockDB) InitGlobalParams(ctx context.Context, params *model.GlobalParamsDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.params == nil {
		doc := *params
		m.params = &doc
	}
	return nil
}

func (m *MockDB) GetGlobalParams(ctx context.Context) (*model.GlobalParamsDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("GetGlobalParams"); err != nil {
		return nil, err
	}

	if m.params == nil {
		return nil, &db.NotFoundError{Key: model.GlobalParamsID, Message: "global params not initialized"}
	}
	doc := *m.params
	return &doc, nil
}

func (m *MockDB) SetStakePaused(ctx context.Context, paused bool) error {
	return m.setParamsField(func(p *model.GlobalParamsDocument) { p.StakePaused = paused })
}

func (m *MockDB) SetLockDuration(ctx context.Context, lockDurationSecs int64) error {
	return m.setParamsField(func(p *model.GlobalParamsDocument) { p.LockDurationSecs = lockDurationSecs })
}

func (m *MockDB) SetRequiredStakeAmount(ctx context.Context, amount string) error {
	return m.setParamsField(func(p *model.GlobalParamsDocument) { p.RequiredStakeAmount = amount })
}

func (m *MockDB) SetOwner(ctx context.Context, owner string) error {
	return m.setParamsField(func(p *model.GlobalParamsDocument) { p.Owner = owner })
}

func (m *MockDB) setParamsField(apply func(*model.GlobalParamsDocument)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.params == nil {
		return &db.NotFoundError{Key: model.GlobalParamsID, Message: "global params not initialized"}
	}
	apply(m.params)
	return nil
}

func (m *MockDB) GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("GetOverallStats"); err != nil {
		return nil, err
	}

	stats := m.stats
	return &stats, nil
}

func (m *MockDB) AddToOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("AddToOverallStats"); err != nil {
		return err
	}

	total := m.stats.TotalStakedUint().Add(amount)
	m.stats.TotalStaked = mustDecimal128(total.String())
	m.stats.TotalAccounts += accountsDelta
	m.stats.LastUpdated = time.Now().Unix()
	return nil
}

func (m *MockDB) SubtractFromOverallStats(ctx context.Context, amount math.Uint, accountsDelta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("SubtractFromOverallStats"); err != nil {
		return err
	}

	total := m.stats.TotalStakedUint().Sub(amount)
	m.stats.TotalStaked = mustDecimal128(total.String())
	m.stats.TotalAccounts -= accountsDelta
	m.stats.LastUpdated = time.Now().Unix()
	return nil
}

func (m *MockDB) SavePendingWithdrawal(ctx context.Context, doc *model.PendingWithdrawalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("SavePendingWithdrawal"); err != nil {
		return err
	}

	if _, ok := m.pending[doc.Account]; ok {
		return &db.DuplicateKeyError{Key: doc.Account, Message: "pending withdrawal already exists"}
	}
	m.pending[doc.Account] = *doc
	return nil
}

func (m *MockDB) GetPendingWithdrawal(ctx context.Context, account string) (*model.PendingWithdrawalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("GetPendingWithdrawal"); err != nil {
		return nil, err
	}

	doc, ok := m.pending[account]
	if !ok {
		return nil, &db.NotFoundError{Key: account, Message: "pending withdrawal not found"}
	}
	return &doc, nil
}

func (m *MockDB) DeletePendingWithdrawal(ctx context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("DeletePendingWithdrawal"); err != nil {
		return err
	}

	if _, ok := m.pending[account]; !ok {
		return &db.NotFoundError{Key: account, Message: "pending withdrawal not found"}
	}
	delete(m.pending, account)
	return nil
}
