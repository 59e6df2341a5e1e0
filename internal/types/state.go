package types

// Enum values for the per-account operation state. An account with no stored
// state is treated as Idle.
type OperationState string

const (
	StateIdle      OperationState = "IDLE"
	StateStaking   OperationState = "STAKING"
	StateUnstaking OperationState = "UNSTAKING"
)

func (s OperationState) String() string {
	return string(s)
}

// QualifiedStatesForStakeStart returns the qualified current states for
// starting a deposit. Only an idle account may begin staking.
func QualifiedStatesForStakeStart() []OperationState {
	return []OperationState{StateIdle}
}

// QualifiedStatesForUnstakeStart returns the qualified current states for
// starting a withdrawal.
func QualifiedStatesForUnstakeStart() []OperationState {
	return []OperationState{StateIdle}
}

// QualifiedStatesForStakeRelease returns the qualified current states for
// releasing the lock after a deposit completed or was rejected.
func QualifiedStatesForStakeRelease() []OperationState {
	return []OperationState{StateStaking}
}

// QualifiedStatesForSettlement returns the qualified current states for the
// settlement callback releasing the lock, on both the commit and the
// rollback branch.
func QualifiedStatesForSettlement() []OperationState {
	return []OperationState{StateUnstaking}
}
