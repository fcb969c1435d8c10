package blockchain

// Consensus constants of spec.md 6.5. Values are consensus and MUST be
// preserved across an implementation; they are declared here rather than in
// config because no admin RPC or flag is allowed to change them at runtime.
const (
	// BranchChainMaturity is the minimum confirmation depth a step-1 tx must
	// have on its origin chain before a step-2 tx referencing it is accepted
	// (spec.md 4.C step 6): confirmations >= BranchChainMaturity + 1.
	BranchChainMaturity = 30

	// CushionHeight is the extra confirmation depth, on top of
	// BranchChainMaturity, a RedeemMortgageStatement must clear on its branch
	// before the branch submits the redemption to the main chain (spec.md 4.D).
	CushionHeight = 10

	// RedeemSafeHeight bounds how far behind the branch's current height a
	// reported block may be (spec.md 4.E "no stale reports past the safety
	// horizon").
	RedeemSafeHeight = 1000

	// ReportOutOfHeight is the main-chain height delta after which an
	// unanswered report matures into a slash (spec.md 3.3, 8 scenario 5).
	ReportOutOfHeight = 1000

	// ReportLockCoinHeight is the confirmation depth a Lock/UnlockMortgageMineCoin
	// tx must observe on the main-chain report/prove it references (spec.md 4.D).
	ReportLockCoinHeight = 60
)
