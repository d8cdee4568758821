package engine

type PendingKind string

const (
	PendingFlipThreeTarget  PendingKind = "flip_three_target"
	PendingFlipThreeDealing PendingKind = "flip_three_dealing"
	PendingSecondChanceGift PendingKind = "second_chance_gift"
)

// QueuedResolution is a chained action waiting its turn: a card drawn
// during a Flip Three resolution can itself demand a resolution, which
// runs after the current one completes. FIFO, never a stack.
type QueuedResolution struct {
	Kind      PendingKind `json:"kind"`
	ChooserID string      `json:"chooserId"`
}

// PendingAction suspends normal turn advancement until resolved.
type PendingAction struct {
	Kind           PendingKind `json:"kind"`
	SourcePlayerID string      `json:"sourcePlayerId"`

	// flip_three_target
	ChooserID string `json:"chooserId,omitempty"`

	// flip_three_dealing
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	Remaining      int    `json:"remaining,omitempty"`

	// second_chance_gift
	EligiblePlayerIDs []string `json:"eligiblePlayerIds,omitempty"`

	FlipThreeQueue []QueuedResolution `json:"flipThreeQueue,omitempty"`
}

func (p *PendingAction) Clone() *PendingAction {
	if p == nil {
		return nil
	}
	clone := *p
	clone.EligiblePlayerIDs = append([]string(nil), p.EligiblePlayerIDs...)
	clone.FlipThreeQueue = append([]QueuedResolution(nil), p.FlipThreeQueue...)
	return &clone
}
