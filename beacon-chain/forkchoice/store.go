// Package forkchoice implements LMD-GHOST fork choice: a block tree keyed by
// root, validator latest-message tracking, and head computation by
// subtree-weight walk from the justified checkpoint. Grounded on the pack's
// forkchoice Store implementations rather than the teacher (whose copy only
// carries the legacy naive fork choice).
package forkchoice

import (
	"sync"

	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "forkchoice")

// ErrStaleAttestation is returned when an attestation's target epoch does
// not strictly increase a validator's latest message, per invariant 5.
var ErrStaleAttestation = errors.New("attestation target epoch is not newer than the validator's latest vote")

// ErrUnknownParent is returned when a block's parent root has no node in the
// store, meaning the block cannot yet be inserted.
var ErrUnknownParent = errors.New("block parent root not found in fork choice store")

// ErrFinalizedDescendant is returned when a block does not descend from the
// current finalized checkpoint, per invariant 6.
var ErrFinalizedDescendant = errors.New("block is not a descendant of the finalized checkpoint")

// blockNode is one node of the block tree the store tracks.
type blockNode struct {
	root       beacontypes.Root
	parentRoot beacontypes.Root
	slot       beacontypes.Slot
	children   []beacontypes.Root
}

// latestMessage is the most recent attestation a validator has cast.
type latestMessage struct {
	epoch beacontypes.Epoch
	root  beacontypes.Root
}

// Store is the fork choice state: the block tree, every validator's latest
// message, and the justified/finalized checkpoints fork choice itself tracks
// (distinct from, and ahead of, the state's own checkpoints during replay).
type Store struct {
	lock sync.RWMutex

	nodes map[beacontypes.Root]*blockNode
	votes map[beacontypes.ValidatorIndex]*latestMessage

	justifiedCheckpoint *beacontypes.Checkpoint
	finalizedCheckpoint *beacontypes.Checkpoint
	balancesAtJustified map[beacontypes.ValidatorIndex]uint64

	headCache      beacontypes.Root
	headCacheValid bool
}

// NewStore constructs a fork choice store rooted at the genesis block.
func NewStore(genesisRoot beacontypes.Root, genesisSlot beacontypes.Slot) *Store {
	s := &Store{
		nodes: map[beacontypes.Root]*blockNode{
			genesisRoot: {root: genesisRoot, slot: genesisSlot},
		},
		votes:               make(map[beacontypes.ValidatorIndex]*latestMessage),
		justifiedCheckpoint: &beacontypes.Checkpoint{Root: genesisRoot},
		finalizedCheckpoint: &beacontypes.Checkpoint{Root: genesisRoot},
		balancesAtJustified: make(map[beacontypes.ValidatorIndex]uint64),
	}
	return s
}

// ProcessBlock inserts a block into the tree once its parent is known and it
// descends from the finalized checkpoint.
func (s *Store) ProcessBlock(root, parentRoot beacontypes.Root, slot beacontypes.Slot) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.nodes[root]; exists {
		return nil
	}
	parent, ok := s.nodes[parentRoot]
	if !ok {
		return ErrUnknownParent
	}
	if !s.isDescendantLocked(parentRoot, s.finalizedCheckpoint.Root) && parentRoot != s.finalizedCheckpoint.Root {
		return ErrFinalizedDescendant
	}
	s.nodes[root] = &blockNode{root: root, parentRoot: parentRoot, slot: slot}
	parent.children = append(parent.children, root)
	s.headCacheValid = false
	return nil
}

// ProcessAttestation records a validator's latest message if its target
// epoch strictly increases on the validator's previous vote.
func (s *Store) ProcessAttestation(validatorIdx beacontypes.ValidatorIndex, targetRoot beacontypes.Root, targetEpoch beacontypes.Epoch) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if existing, ok := s.votes[validatorIdx]; ok && targetEpoch <= existing.epoch {
		return ErrStaleAttestation
	}
	s.votes[validatorIdx] = &latestMessage{epoch: targetEpoch, root: targetRoot}
	s.headCacheValid = false
	return nil
}

// UpdateJustifiedCheckpoint replaces the store's own justified checkpoint,
// used when a state's justification advances during block processing.
func (s *Store) UpdateJustifiedCheckpoint(c *beacontypes.Checkpoint, balances map[beacontypes.ValidatorIndex]uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.justifiedCheckpoint = c
	s.balancesAtJustified = balances
	s.headCacheValid = false
}

// UpdateFinalizedCheckpoint replaces the store's finalized checkpoint.
func (s *Store) UpdateFinalizedCheckpoint(c *beacontypes.Checkpoint) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.finalizedCheckpoint = c
	s.headCacheValid = false
}

// JustifiedCheckpoint returns the store's current justified checkpoint.
func (s *Store) JustifiedCheckpoint() *beacontypes.Checkpoint {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.justifiedCheckpoint
}

// FinalizedCheckpoint returns the store's current finalized checkpoint.
func (s *Store) FinalizedCheckpoint() *beacontypes.Checkpoint {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.finalizedCheckpoint
}

// HasBlock reports whether the store has a node for the given root.
func (s *Store) HasBlock(root beacontypes.Root) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, ok := s.nodes[root]
	return ok
}

// IsDescendant reports whether candidate is root or a descendant of root.
func (s *Store) IsDescendant(candidate, root beacontypes.Root) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if candidate == root {
		return true
	}
	return s.isDescendantLocked(candidate, root)
}

func (s *Store) isDescendantLocked(candidate, root beacontypes.Root) bool {
	cur := candidate
	for {
		node, ok := s.nodes[cur]
		if !ok {
			return false
		}
		if node.root == root {
			return true
		}
		if node.parentRoot == cur {
			return false
		}
		cur = node.parentRoot
	}
}

// Head walks from the justified checkpoint's root, at each fork picking the
// child whose subtree carries the greatest attesting weight, ties broken by
// the lexicographically greater root.
//
// Spec pseudocode definition: get_head
func (s *Store) Head() (beacontypes.Root, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.headCacheValid {
		return s.headCache, nil
	}
	weights := s.computeWeights()
	head := s.justifiedCheckpoint.Root
	if _, ok := s.nodes[head]; !ok {
		return beacontypes.Root{}, errors.New("justified root not found in store")
	}
	for {
		node := s.nodes[head]
		if len(node.children) == 0 {
			break
		}
		best := node.children[0]
		for _, child := range node.children[1:] {
			if weights[child] > weights[best] || (weights[child] == weights[best] && greaterRoot(child, best)) {
				best = child
			}
		}
		head = best
	}
	s.headCache = head
	s.headCacheValid = true
	return head, nil
}

func greaterRoot(a, b beacontypes.Root) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// computeWeights sums each node's own attesting balance into every ancestor
// up to the justified root, giving each node its subtree weight in one pass.
func (s *Store) computeWeights() map[beacontypes.Root]uint64 {
	ownWeight := make(map[beacontypes.Root]uint64)
	for idx, vote := range s.votes {
		if !s.isDescendantLocked(vote.root, s.justifiedCheckpoint.Root) && vote.root != s.justifiedCheckpoint.Root {
			continue
		}
		ownWeight[vote.root] += s.balancesAtJustified[idx]
	}
	weights := make(map[beacontypes.Root]uint64, len(s.nodes))
	for root, w := range ownWeight {
		cur := root
		for {
			weights[cur] += w
			node, ok := s.nodes[cur]
			if !ok {
				break
			}
			if cur == s.justifiedCheckpoint.Root {
				break
			}
			if _, parentKnown := s.nodes[node.parentRoot]; !parentKnown {
				break
			}
			cur = node.parentRoot
		}
	}
	return weights
}

// Prune drops every node that is not a descendant of the finalized
// checkpoint, freeing memory for blocks that can never again be canonical.
//
// Spec pseudocode definition: on_prune (informal, see discussion in the
// finality section of the protocol's fork choice rationale)
func (s *Store) Prune() {
	s.lock.Lock()
	defer s.lock.Unlock()
	finalizedRoot := s.finalizedCheckpoint.Root
	keep := make(map[beacontypes.Root]bool)
	var collect func(root beacontypes.Root)
	collect = func(root beacontypes.Root) {
		keep[root] = true
		node, ok := s.nodes[root]
		if !ok {
			return
		}
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(finalizedRoot)
	for root := range s.nodes {
		if !keep[root] {
			delete(s.nodes, root)
		}
	}
	for idx, vote := range s.votes {
		if !keep[vote.root] {
			delete(s.votes, idx)
		}
	}
	s.headCacheValid = false
	log.WithField("remaining", len(s.nodes)).Debug("Pruned fork choice store before finalized checkpoint")
}
