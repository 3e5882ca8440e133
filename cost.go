package clvm

import "github.com/chia-network/go-clvm/math/checked"

// Cost is the unitless, non-negative, monotonically accumulated budget
// consumed during evaluation — the consensus metric.
type Cost = uint64

// Exact per-operator cost constants. These values are part of the
// external contract: a conforming implementation must match them
// bit-for-bit, since they determine consensus-critical COST_EXCEEDED
// behavior.
const (
	QuoteCost Cost = 20
	ApplyCost Cost = 90
	OpCost    Cost = 1

	TraverseBaseCost        Cost = 40
	TraverseCostPerZeroByte Cost = 4
	TraverseCostPerBit      Cost = 4

	IfCost     Cost = 33
	ConsCost   Cost = 50
	FirstCost  Cost = 30
	RestCost   Cost = 30
	ListpCost  Cost = 19
	EqBaseCost Cost = 117
	EqCostPerByte Cost = 1

	ArithBaseCost    Cost = 99
	ArithCostPerArg  Cost = 320
	ArithCostPerByte Cost = 3

	LogBaseCost    Cost = 100
	LogCostPerArg  Cost = 264
	LogCostPerByte Cost = 3

	GrBaseCost     Cost = 498
	GrCostPerByte  Cost = 2
	GrsBaseCost    Cost = 117
	GrsCostPerByte Cost = 1

	StrlenBaseCost     Cost = 173
	StrlenCostPerByte  Cost = 1
	ConcatBaseCost     Cost = 142
	ConcatCostPerArg   Cost = 135
	ConcatCostPerByte  Cost = 3

	DivmodBaseCost          Cost = 1116
	DivmodCostPerByteDivider Cost = 6
	DivBaseCost             Cost = 988
	DivCostPerByteDivider    Cost = 4
	MulBaseCost                   Cost = 92
	MulCostPerOp                  Cost = 885
	MulLinearCostPerByte          Cost = 6
	MulSquareCostPerByteDivider   Cost = 128

	LognotBaseCost     Cost = 331
	LognotCostPerByte  Cost = 3
	AshiftBaseCost     Cost = 596
	AshiftCostPerByte  Cost = 3
	LshiftBaseCost     Cost = 277
	LshiftCostPerByte  Cost = 3

	BoolBaseCost Cost = 200
	NotBaseCost  Cost = 200

	Sha256BaseCost        Cost = 87
	Sha256CostPerArg      Cost = 134
	Sha256CostPerByte     Cost = 2
	Sha256treeBaseCost    Cost = 2500
	Sha256treeCostPerByte Cost = 50
	Sha256treeCostPerPair Cost = 2800

	Keccak256BaseCost    Cost = 87
	Keccak256CostPerArg  Cost = 134
	Keccak256CostPerByte Cost = 2

	PointAddBaseCost   Cost = 101094
	PointAddCostPerArg Cost = 1343980
	PubkeyBaseCost     Cost = 1325730
	PubkeyCostPerByte  Cost = 38

	Secp256k1VerifyCost Cost = 1850000
	Secp256r1VerifyCost Cost = 1300000

	BlsPairingBaseCost    Cost = 8637000
	BlsPairingCostPerArg  Cost = 3628000
	BlsG1SubtractBaseCost Cost = 1087000
	BlsG1MultiplyBaseCost Cost = 1608000
	BlsG1NegateBaseCost   Cost = 50000
	BlsG2AddBaseCost      Cost = 2460000
	BlsG2SubtractBaseCost Cost = 2460000
	BlsG2MultiplyBaseCost Cost = 4029000
	BlsG2NegateBaseCost   Cost = 50000
	BlsMapG1BaseCost      Cost = 1303000
	BlsMapG2BaseCost      Cost = 3477000

	ModpowBaseCost        Cost = 15000
	ModpowCostPerByte     Cost = 3
	ModBaseCost           Cost = 1300
	ModCostPerByteDivider Cost = 6

	CoinidCost Cost = 3600

	CheckPredicateBaseCost Cost = 2500
)

// costAccount tracks the running cost of one evaluation against a fixed
// ceiling, mirroring virtualMachine's runLimit/deferredCost bookkeeping:
// charge() fails fast, before doing the corresponding work, whenever the
// charge would push the running total past maxCost.
type costAccount struct {
	running Cost
	maxCost Cost
	// maxCostNode is the node blamed in a COST_EXCEEDED error, matching
	// run_program.rs's max_cost_ptr attribution.
	maxCostNode NodePtr
}

func newCostAccount(maxCost Cost, maxCostNode NodePtr) *costAccount {
	if maxCost == 0 {
		maxCost = ^Cost(0)
	}
	return &costAccount{maxCost: maxCost, maxCostNode: maxCostNode}
}

// charge adds delta to the running cost, failing COST_EXCEEDED if doing
// so would exceed maxCost. The caller must call charge before performing
// the work delta represents.
func (c *costAccount) charge(delta Cost) error {
	sum, ok := checked.AddUint64(c.running, delta)
	if !ok || sum > c.maxCost {
		return newErr(KindCostExceeded, c.maxCostNode, "cost exceeded")
	}
	c.running = sum
	return nil
}
