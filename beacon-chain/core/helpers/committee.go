package helpers

import (
	"encoding/binary"

	"github.com/ethprotolabs/beaconchain/beacon-chain/cache"
	"github.com/ethprotolabs/beaconchain/beacon-chain/params"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/ethprotolabs/beaconchain/shared/hashutil"
	"github.com/pkg/errors"
	types "github.com/prysmaticlabs/eth2-types"
)

// committeeCache holds shufflings already computed for a seed, so repeated
// BeaconCommittee calls within the same epoch don't re-run the shuffle.
var committeeCache = cache.NewCommitteesCache()

func hash(data []byte) [32]byte {
	return hashutil.Hash(data)
}

func bytesFromUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Seed derives the randomness seed used for shuffling and proposer selection
// at a given epoch and domain.
//
// Spec pseudocode definition:
//
//	def get_seed(state, epoch, domain_type) -> Hash:
//	    mix = get_randao_mix(state, epoch + EPOCHS_PER_HISTORICAL_VECTOR - MIN_SEED_LOOKAHEAD - 1)
//	    return hash(domain_type + uint_to_bytes(epoch) + mix)
func Seed(st *beacontypes.BeaconState, epoch types.Epoch, domain [4]byte) ([32]byte, error) {
	lookback := epoch + params.BeaconConfig().EpochsPerHistoricalVector - params.BeaconConfig().MinSeedLookahead - 1
	mix, err := RandaoMix(st, lookback)
	if err != nil {
		return [32]byte{}, err
	}
	buf := append(append([]byte{}, domain[:]...), bytesFromUint64(uint64(epoch))...)
	buf = append(buf, mix[:]...)
	return hash(buf), nil
}

// RandaoMix returns the randao mix active at the given epoch.
func RandaoMix(st *beacontypes.BeaconState, epoch types.Epoch) ([32]byte, error) {
	length := params.BeaconConfig().EpochsPerHistoricalVector
	if len(st.RandaoMixes) == 0 {
		return [32]byte{}, errors.New("empty randao mixes")
	}
	idx := uint64(epoch) % uint64(length)
	if idx >= uint64(len(st.RandaoMixes)) {
		idx = idx % uint64(len(st.RandaoMixes))
	}
	return st.RandaoMixes[idx], nil
}

// CommitteeCount returns the number of committees per slot at an epoch: at
// least 1, and at most MaxValidatorsPerCommittee / TargetCommitteeSize, which
// stands in for MAX_COMMITTEES_PER_SLOT (the config has no such field).
//
// Spec pseudocode definition:
//
//	def get_committee_count_per_slot(state, epoch) -> uint64:
//	    return max(1, min(
//	        MAX_COMMITTEES_PER_SLOT,
//	        len(get_active_validator_indices(state, epoch)) // SLOTS_PER_EPOCH // TARGET_COMMITTEE_SIZE,
//	    ))
func CommitteeCount(st *beacontypes.BeaconState, epoch types.Epoch) uint64 {
	active := uint64(len(ActiveValidatorIndices(st, epoch)))
	count := active / uint64(params.BeaconConfig().SlotsPerEpoch) / params.BeaconConfig().TargetCommitteeSize
	if count < 1 {
		count = 1
	}
	maxPerSlot := params.BeaconConfig().MaxValidatorsPerCommittee / params.BeaconConfig().TargetCommitteeSize
	if count > maxPerSlot {
		count = maxPerSlot
	}
	return count
}

// BeaconCommittee computes the validator indices assigned to a given slot
// and committee index via the shuffled active-validator permutation.
//
// Spec pseudocode definition:
//
//	def get_beacon_committee(state, slot, index) -> Sequence[ValidatorIndex]:
//	    epoch = compute_epoch_at_slot(slot)
//	    committees_per_slot = get_committee_count_per_slot(state, epoch)
//	    return compute_committee(
//	        indices=get_active_validator_indices(state, epoch),
//	        seed=get_seed(state, epoch, DOMAIN_BEACON_ATTESTER),
//	        index=(slot % SLOTS_PER_EPOCH) * committees_per_slot + index,
//	        count=committees_per_slot * SLOTS_PER_EPOCH,
//	    )
func BeaconCommittee(st *beacontypes.BeaconState, slot types.Slot, committeeIndex types.CommitteeIndex) ([]types.ValidatorIndex, error) {
	epoch := SlotToEpoch(slot)
	committeesPerSlot := CommitteeCount(st, epoch)
	seed, err := Seed(st, epoch, params.BeaconConfig().DomainBeaconAttester)
	if err != nil {
		return nil, err
	}
	index := uint64(slot%params.BeaconConfig().SlotsPerEpoch)*committeesPerSlot + uint64(committeeIndex)
	count := committeesPerSlot * uint64(params.BeaconConfig().SlotsPerEpoch)

	if cached, err := committeeCache.Committee(uint64(slot), seed, index); err == nil && cached != nil {
		out := make([]types.ValidatorIndex, len(cached))
		for i, v := range cached {
			out[i] = types.ValidatorIndex(v)
		}
		return out, nil
	}

	indices := ActiveValidatorIndices(st, epoch)
	shuffled := make([]uint64, len(indices))
	for i, v := range indices {
		shuffled[i] = uint64(v)
	}
	if err := committeeCache.AddCommitteeShuffledList(&cache.Committees{
		CommitteeCount:  count,
		Seed:            seed,
		ShuffledIndices: shuffleAll(shuffled, seed),
		SortedIndices:   shuffled,
	}); err != nil {
		return nil, err
	}
	return ComputeCommittee(indices, seed, index, count)
}

// shuffleAll applies the swap-or-not shuffle to every position, producing
// the full permutation AddCommitteeShuffledList caches for later slicing.
func shuffleAll(indices []uint64, seed [32]byte) []uint64 {
	out := make([]uint64, len(indices))
	for i := range indices {
		permIndex, err := ShuffledIndex(uint64(i), uint64(len(indices)), seed)
		if err != nil {
			return indices
		}
		out[i] = indices[permIndex]
	}
	return out
}

// ComputeCommittee returns the `index`th of `count` equal-sized slices of
// the shuffled `indices`.
func ComputeCommittee(indices []types.ValidatorIndex, seed [32]byte, index, count uint64) ([]types.ValidatorIndex, error) {
	if count == 0 {
		return nil, errors.New("zero committee count")
	}
	start := uint64(len(indices)) * index / count
	end := uint64(len(indices)) * (index + 1) / count
	shuffled := make([]types.ValidatorIndex, end-start)
	for i := start; i < end; i++ {
		permIndex, err := ShuffledIndex(i, uint64(len(indices)), seed)
		if err != nil {
			return nil, err
		}
		shuffled[i-start] = indices[permIndex]
	}
	return shuffled, nil
}

// ShuffledIndex applies the swap-or-not shuffle to map index i under seed
// into its shuffled position within [0, indexCount).
//
// Spec pseudocode definition: compute_shuffled_index
func ShuffledIndex(i, indexCount uint64, seed [32]byte) (uint64, error) {
	if indexCount == 0 {
		return 0, errors.New("index count must be greater than 0")
	}
	if i >= indexCount {
		return 0, errors.Errorf("index %d out of range for count %d", i, indexCount)
	}
	rounds := params.BeaconConfig().ShuffleRoundCount
	for round := uint64(0); round < rounds; round++ {
		hashInput := append(append([]byte{}, seed[:]...), byte(round))
		pivot := bytesToUint64(hash(hashInput)[:8]) % indexCount
		flip := (pivot + indexCount - i) % indexCount
		position := i
		if flip > position {
			position = flip
		}
		source := hash(append(append([]byte{}, seed[:]...), append([]byte{byte(round)}, bytesFromUint64(position/256)...)...))
		byteVal := source[(position%256)/8]
		bit := (byteVal >> (position % 8)) & 1
		if bit == 1 {
			i = flip
		}
	}
	return i, nil
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// ComputeProposerIndex samples a single proposer from indices, weighted by
// effective balance, using repeated randao-seeded byte draws.
//
// Spec pseudocode definition: compute_proposer_index
func ComputeProposerIndex(st *beacontypes.BeaconState, indices []types.ValidatorIndex, seed [32]byte) (types.ValidatorIndex, error) {
	if len(indices) == 0 {
		return 0, errors.New("empty active indices")
	}
	const maxRandomByte = 1<<8 - 1
	i := uint64(0)
	total := uint64(len(indices))
	for {
		candidateIndex := indices[(i)%total]
		hashInput := append(append([]byte{}, seed[:]...), bytesFromUint64(i/32)...)
		randomByte := hash(hashInput)[i%32]
		effectiveBalance := st.Validators[candidateIndex].EffectiveBalance
		if effectiveBalance*maxRandomByte >= params.BeaconConfig().MaxEffectiveBalance*uint64(randomByte) {
			return candidateIndex, nil
		}
		i++
		if i > total*32 {
			return 0, errors.New("exceeded proposer sampling bound")
		}
	}
}
