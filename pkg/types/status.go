package types

// TransactionStatus is shared by every hop in the payment chain. A
// transaction starts Pending, may pass through Processing, and ends in
// exactly one of the terminal states. Terminal states are never
// overwritten.
type TransactionStatus int

const (
	StatusPending TransactionStatus = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status can no longer change.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
