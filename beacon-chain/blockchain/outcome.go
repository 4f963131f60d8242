package blockchain

// BlockProcessingOutcome discriminates the result of a call to ReceiveBlock,
// mirroring the protocol's on_block decision tree instead of collapsing every
// rejection reason into a single opaque error.
type BlockProcessingOutcome int

const (
	// Processed means the block was imported and the coordinator's head was
	// recomputed against it.
	Processed BlockProcessingOutcome = iota
	// BlockIsAlreadyKnown means the block's root is already present in the
	// database; the call is a no-op.
	BlockIsAlreadyKnown
	// ParentUnknown means the block's parent root has not been imported yet,
	// the caller's cue to hold the block for a later retry.
	ParentUnknown
	// FutureSlot means the block's slot is ahead of the present slot and
	// must be held until the clock reaches it.
	FutureSlot
	// FinalizedSlot means the block does not descend from the already
	// finalized checkpoint and can never become canonical.
	FinalizedSlot
	// StateRootMismatch means the block's declared post-state root does not
	// match the root produced by applying its own state transition.
	StateRootMismatch
	// Invalid means the block failed some other validity check (malformed
	// input, a transition error unrelated to its state root, a storage
	// failure) and was rejected outright.
	Invalid
)

// String renders the outcome the way it shows up in logs and API responses.
func (o BlockProcessingOutcome) String() string {
	switch o {
	case Processed:
		return "processed"
	case BlockIsAlreadyKnown:
		return "block_is_already_known"
	case ParentUnknown:
		return "parent_unknown"
	case FutureSlot:
		return "future_slot"
	case FinalizedSlot:
		return "finalized_slot"
	case StateRootMismatch:
		return "state_root_mismatch"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}
