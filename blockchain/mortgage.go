package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// ReportTxFetcher/ProveTxFetcher are the component G calls
// CheckLockMortgageMineCoinTx/CheckUnlockMortgageMineCoinTx use to fetch a
// main-chain report/prove's data from the branch side (spec.md 4.D
// "getreporttxdata"/"getprovetxdata").
type ReportTxFetcher func(reportTxId common.Hash256) (reportedBranchId common.BranchId, mineCoinOutpointHash common.Hash256, confirmations int64, err error)
type ProveTxFetcher func(proveTxId common.Hash256) (reportedBranchId common.BranchId, mineCoinOutpointHash common.Hash256, confirmations int64, err error)

// thisBranchHash is the hash identity a branch's lock/unlock checks compare
// the fetched report/prove's reportedBranchId against (spec.md 4.D: "requires
// the fetched report's reportedBranchId == this-branch-hash").
func CheckLockMortgageMineCoinTx(tx Tx, thisBranchHash common.BranchId, fetch ReportTxFetcher) *Reject {
	if !tx.IsLockMortgageMineCoin() {
		return newReject(RejectMalformed, "not-lock-minecoin-tx", "tx is not IsLockMortgageMineCoin")
	}
	reportedBranchId, mineCoinHash, confirmations, err := fetch(tx.ReportTxId())
	if err != nil {
		return newReject(RejectRpcFailure, "getreporttxdata-failed", "getreporttxdata call failed: "+err.Error())
	}
	if confirmations < ReportLockCoinHeight {
		return newReject(RejectSoftUnknownParent, "report-not-mature", "reported tx has not reached REPORT_LOCK_COIN_HEIGHT confirmations")
	}
	if reportedBranchId != thisBranchHash {
		return newReject(RejectMalformed, "report-wrong-branch", "main-chain report does not target this branch")
	}
	if tx.CoinPreoutHash() != mineCoinHash {
		return newReject(RejectMalformed, "lock-coin-outpoint-mismatch", "tx.coinpreouthash does not match the main-chain-reported mine-coin outpoint hash")
	}
	return nil
}

// CheckUnlockMortgageMineCoinTx is CheckLockMortgageMineCoinTx's symmetric
// counterpart, checked against a provetxid via getprovetxdata (spec.md 4.D).
func CheckUnlockMortgageMineCoinTx(tx Tx, thisBranchHash common.BranchId, fetch ProveTxFetcher) *Reject {
	if !tx.IsUnLockMortgageMineCoin() {
		return newReject(RejectMalformed, "not-unlock-minecoin-tx", "tx is not IsUnLockMortgageMineCoin")
	}
	reportedBranchId, mineCoinHash, confirmations, err := fetch(tx.ProveTxId())
	if err != nil {
		return newReject(RejectRpcFailure, "getprovetxdata-failed", "getprovetxdata call failed: "+err.Error())
	}
	if confirmations < ReportLockCoinHeight {
		return newReject(RejectSoftUnknownParent, "prove-not-mature", "proved tx has not reached REPORT_LOCK_COIN_HEIGHT confirmations")
	}
	if reportedBranchId != thisBranchHash {
		return newReject(RejectMalformed, "prove-wrong-branch", "main-chain prove does not target this branch")
	}
	if tx.CoinPreoutHash() != mineCoinHash {
		return newReject(RejectMalformed, "unlock-coin-outpoint-mismatch", "tx.coinpreouthash does not match the main-chain-reported mine-coin outpoint hash")
	}
	return nil
}

// RedeemDeps bundles the lookups CheckRedeemMortgageStatement needs: the
// branch's own header store (to find blocks whose stake tx spends this
// mortgage) and the report-status store.
type RedeemDeps struct {
	BranchData  *BranchData
	ReportDB    ReportLookup
	ReportCache *ReportCache
}

// ReportLookup is the minimal report-status surface RedeemDeps needs,
// satisfied by report.go's *StateReportLookup (which wraps a
// *statedb.StateDB); kept as an interface here so tests can fake it without
// a real LevelDB handle.
type ReportLookup interface {
	HasOutstandingReportFor(mineCoinFromTxId common.Hash256) (bool, error)
}

// CheckRedeemMortgageStatement is the main-chain acceptance rule for a
// branch's RedeemMortgageStatement submission (spec.md 4.D step 5, 8 "Redeem
// safety"): it requires no REPORTED-not-PROVED record exists for any branch
// block whose stake tx spends mortgageFromTxId, and that the branch has
// confirmed the redemption statement (spec.md 3.2).
func CheckRedeemMortgageStatement(mortgageFromTxId common.Hash256, branchConfirmedStatement bool, deps RedeemDeps) *Reject {
	if !branchConfirmedStatement {
		return newReject(RejectSoftUnknownParent, "redeem-statement-unconfirmed", "branch has not confirmed the redemption statement")
	}
	if deps.ReportDB == nil {
		return newReject(RejectMalformed, "redeem-missing-report-lookup", "no report lookup supplied")
	}
	outstanding, err := deps.ReportDB.HasOutstandingReportFor(mortgageFromTxId)
	if err != nil {
		return newRejectf(RejectSoftUnknownParent, "redeem-report-lookup-error", "%v", err)
	}
	if outstanding {
		return newReject(RejectMalformed, "redeem-has-outstanding-report", "a REPORTED-not-PROVED record points at a block staked by this mortgage")
	}
	return nil
}

// CheckReportReward verifies a ReportReward tx spending a slashed miner's
// mortgage output at reportHeight + REPORT_OUTOF_HEIGHT (spec.md 8 scenario
// 5, 3.3 "Mortgage output... is created by a miner's Mortgage tx, spent
// only by a RedeemMortgageStatement-driven redemption, or by a ReportReward
// tx that pays half to the reporter"). currentMainHeight is the height the
// ReportReward tx is being validated at; reportHeight is the main-chain
// height at which the matching Report tx was included.
func CheckReportReward(tx Tx, stakeValue common.Amount, reportHeight, currentMainHeight int64, reportTxVout0 Script) *Reject {
	if !tx.IsReportReward() {
		return newReject(RejectMalformed, "not-report-reward-tx", "tx is not IsReportReward")
	}
	if currentMainHeight < reportHeight+ReportOutOfHeight {
		return newReject(RejectSoftUnknownParent, "report-not-matured", "report has not reached REPORT_OUTOF_HEIGHT without a prove")
	}
	if len(tx.Vout()) == 0 {
		return newReject(RejectMalformed, "report-reward-no-vout", "report-reward tx has no outputs")
	}
	if !EqualScript(tx.Vout()[0].ScriptPubKey, reportTxVout0) {
		return newReject(RejectMalformed, "report-reward-wrong-payee", "report-reward tx does not pay the reporter's own vout[0] scriptPubKey")
	}
	half := stakeValue / 2
	if tx.Vout()[0].Value < half {
		return newReject(RejectMalformed, "report-reward-underpaid", "report-reward tx pays less than half the slashed stake")
	}
	return nil
}
