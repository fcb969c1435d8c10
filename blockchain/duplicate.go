package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
)

// The BranchChainTxRecordsDb surface CheckBranchDuplicateTx needs (spec.md
// 6.4) is statedb's package-level HasBranchTxRecord/StoreBranchTxRecord
// helpers, reached through ChainCtx.DB; no separate interface type exists.

// CheckBranchDuplicateTx is the single entry point called from mempool
// acceptance and block connect (spec.md 4.H): it is the only place that
// consults the cache+store fused view, so every downstream verifier may
// assume uniqueness once this passes.
func CheckBranchDuplicateTx(tx Tx, ctx *ChainCtx) *Reject {
	switch {
	case tx.IsSyncBranchInfo():
		info := tx.BranchBlockInfo()
		if info == nil {
			return newReject(RejectMalformed, "bad-sync-branch-tx", "missing BranchBlockInfo payload")
		}
		blockHash := info.Header.Hash()
		if ctx.BranchCache.HasInCache(info.BranchId, blockHash) {
			return newReject(RejectDuplicate, "duplicate-branch-header", "header already staged in this block")
		}
		bd, err := ctx.Store.GetBranchData(info.BranchId)
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "branch-store-error", "%v", err)
		}
		if bd.HasBlock(blockHash) {
			return newReject(RejectDuplicate, "duplicate-branch-header", "header already in the persistent store")
		}
		return nil

	case tx.IsBranchChainTransStep2():
		has, err := statedb.HasBranchTxRecord(ctx.DB, tx.FromBranchId(), tx.Step1TxHash())
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "txrecord-store-error", "%v", err)
		}
		if has {
			return newReject(RejectDuplicate, "duplicate-step2-tx", "(fromBranchId, fromTxHash) already accepted as a step2 tx")
		}
		return nil

	case tx.IsReport():
		r := tx.ReportData()
		if r == nil {
			return newReject(RejectMalformed, "bad-report-tx", "missing ReportData payload")
		}
		key := GetReportTxHashKey(r)
		has, err := HasReported(ctx.DB, ctx.ReportCache, key)
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "report-store-error", "%v", err)
		}
		if has {
			return newReject(RejectDuplicate, "duplicate-report-tx", "report key already present in cache or store")
		}
		return nil

	case tx.IsProve():
		p := tx.ProveData()
		if p == nil {
			return newReject(RejectMalformed, "bad-prove-tx", "missing ProveData payload")
		}
		key := GetProveTxHashKey(p)
		proved, err := IsProved(ctx.DB, ctx.ReportCache, key)
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "report-store-error", "%v", err)
		}
		if proved {
			return newReject(RejectDuplicate, "duplicate-prove-tx", "report key already reached PROVED")
		}
		return nil

	default:
		return nil
	}
}
