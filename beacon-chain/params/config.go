// Package params holds the protocol constants the rest of the beacon chain
// core is parameterized over, following the teacher's package-level
// singleton pattern (BeaconConfig) rather than threading a config value
// through every call.
package params

import (
	types "github.com/prysmaticlabs/eth2-types"
)

// BeaconChainConfig captures the tunables a phase-0 chain runs with. A single
// mutable package-level value is read by every other package via
// BeaconConfig(), the same as the teacher's beacon-chain/params.
type BeaconChainConfig struct {
	// Time parameters.
	SecondsPerSlot               uint64
	SlotsPerEpoch                types.Slot
	MinAttestationInclusionDelay types.Slot
	SlotsPerHistoricalRoot       types.Slot

	// Gwei values.
	MinDepositAmount          uint64
	MaxEffectiveBalance       uint64
	EjectionBalance           uint64
	EffectiveBalanceIncrement uint64

	// Committee parameters.
	TargetCommitteeSize       uint64
	MaxValidatorsPerCommittee uint64
	ShuffleRoundCount         uint64

	// Fork choice.
	ForkChoiceBalanceIncrement uint64
	SafeSlotsToUpdateJustified types.Slot

	// State list limits.
	EpochsPerHistoricalVector types.Epoch
	EpochsPerSlashingsVector  types.Epoch
	HistoricalRootsLimit      uint64
	ValidatorRegistryLimit    uint64

	// Max operations per block.
	MaxProposerSlashings uint64
	MaxAttesterSlashings uint64
	MaxAttestations      uint64
	MaxDeposits          uint64
	MaxVoluntaryExits    uint64

	// Reward and penalty quotients.
	BaseRewardFactor            uint64
	WhistleblowerRewardQuotient uint64
	ProposerRewardQuotient      uint64
	InactivityPenaltyQuotient   uint64
	MinSlashingPenaltyQuotient  uint64

	// Validator cycle.
	MinPerEpochChurnLimit            uint64
	ChurnLimitQuotient               uint64
	MaxSeedLookahead                 types.Epoch
	MinSeedLookahead                 types.Epoch
	MinValidatorWithdrawabilityDelay types.Epoch
	PersistentCommitteePeriod        types.Epoch
	MinEpochsToInactivityPenalty     types.Epoch

	// Signature domains.
	DomainBeaconProposer [4]byte
	DomainBeaconAttester [4]byte
	DomainRandao         [4]byte
	DomainDeposit        [4]byte
	DomainVoluntaryExit  [4]byte

	GenesisForkVersion [4]byte
	GenesisSlot        types.Slot
	GenesisEpoch       types.Epoch
	FarFutureEpoch     types.Epoch

	BLSWithdrawalPrefixByte byte
}

var beaconConfig = mainnetConfig()

// BeaconConfig returns the currently active protocol configuration.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig swaps the active config for cfg.
func OverrideBeaconConfig(cfg *BeaconChainConfig) {
	beaconConfig = cfg
}

// UseMainnetConfig restores the full-size protocol parameters.
func UseMainnetConfig() {
	beaconConfig = mainnetConfig()
}

// UseMinimalConfig switches to the small-preset parameters selected by the
// --minimal-config flag, where SlotsPerEpoch shrinks from 32 to 8 and
// committee/list sizes shrink to match.
func UseMinimalConfig() {
	beaconConfig = minimalConfig()
}

func mainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		SecondsPerSlot:               12,
		SlotsPerEpoch:                32,
		MinAttestationInclusionDelay: 1,
		SlotsPerHistoricalRoot:       8192,

		MinDepositAmount:          1 * 1e9,
		MaxEffectiveBalance:       32 * 1e9,
		EjectionBalance:           16 * 1e9,
		EffectiveBalanceIncrement: 1 * 1e9,

		TargetCommitteeSize:       128,
		MaxValidatorsPerCommittee: 2048,
		ShuffleRoundCount:         90,

		ForkChoiceBalanceIncrement: 1 * 1e9,
		SafeSlotsToUpdateJustified: 8,

		EpochsPerHistoricalVector: 65536,
		EpochsPerSlashingsVector:  8192,
		HistoricalRootsLimit:      16777216,
		ValidatorRegistryLimit:    1099511627776,

		MaxProposerSlashings: 16,
		MaxAttesterSlashings: 1,
		MaxAttestations:      128,
		MaxDeposits:          16,
		MaxVoluntaryExits:    16,

		BaseRewardFactor:            64,
		WhistleblowerRewardQuotient: 512,
		ProposerRewardQuotient:      8,
		InactivityPenaltyQuotient:   1 << 26,
		MinSlashingPenaltyQuotient:  128,

		MinPerEpochChurnLimit:            4,
		ChurnLimitQuotient:               65536,
		MaxSeedLookahead:                 4,
		MinSeedLookahead:                 1,
		MinValidatorWithdrawabilityDelay: 256,
		PersistentCommitteePeriod:        2048,
		MinEpochsToInactivityPenalty:     4,

		DomainBeaconProposer: [4]byte{0, 0, 0, 0},
		DomainBeaconAttester: [4]byte{1, 0, 0, 0},
		DomainRandao:         [4]byte{2, 0, 0, 0},
		DomainDeposit:        [4]byte{3, 0, 0, 0},
		DomainVoluntaryExit:  [4]byte{4, 0, 0, 0},

		GenesisForkVersion: [4]byte{0, 0, 0, 0},
		GenesisSlot:        0,
		GenesisEpoch:       0,
		FarFutureEpoch:     types.Epoch(1<<64 - 1),

		BLSWithdrawalPrefixByte: 0x00,
	}
}

// minimalConfig shrinks the list/committee sizes so small test harnesses
// (8 validators, slots_per_epoch = 8) can reach justification and
// finalization in a handful of epochs, matching the S1-S6 scenario sizing.
func minimalConfig() *BeaconChainConfig {
	cfg := mainnetConfig()
	cfg.SlotsPerEpoch = 8
	cfg.SlotsPerHistoricalRoot = 64
	cfg.TargetCommitteeSize = 4
	cfg.ShuffleRoundCount = 10
	cfg.EpochsPerHistoricalVector = 64
	cfg.EpochsPerSlashingsVector = 64
	cfg.MinPerEpochChurnLimit = 2
	cfg.ChurnLimitQuotient = 32
	return cfg
}

// SlotToEpoch converts a slot to the epoch it falls within.
func SlotToEpoch(slot types.Slot) types.Epoch {
	return types.Epoch(uint64(slot) / uint64(BeaconConfig().SlotsPerEpoch))
}

// EpochStartSlot returns the first slot of the given epoch.
func EpochStartSlot(epoch types.Epoch) types.Slot {
	return types.Slot(uint64(epoch) * uint64(BeaconConfig().SlotsPerEpoch))
}
