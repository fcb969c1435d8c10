package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcbridge"
)

// ChainCtx replaces the source's process-wide globals (g_branchChainMan,
// pBranchDb) with one explicit struct passed to every verifier (spec.md 9).
// No package-level singleton of this type exists anywhere in this module.
type ChainCtx struct {
	BranchId common.BranchId // this node's own branch identity ("main" for the main chain)

	DB          *statedb.StateDB
	Store       *BranchStore
	BranchCache *BranchCache
	ReportCache *ReportCache
	Rpc         *rpcbridge.BranchChainMan

	Validators HeaderValidators
	Prove      ProveDeps
	VMPool     *ContractVMPool
}

// NewChainCtx wires the pieces of a running node together.
func NewChainCtx(branchId common.BranchId, db *statedb.StateDB, rpc *rpcbridge.BranchChainMan) *ChainCtx {
	return &ChainCtx{
		BranchId:    branchId,
		DB:          db,
		Store:       NewBranchStore(db),
		BranchCache: NewBranchCache(),
		ReportCache: NewReportCache(),
		Rpc:         rpc,
	}
}

// ResetBlockCaches clears the per-block staging caches, called when the
// main-chain validator starts connecting a new block (spec.md 9: "two
// append-only maps staged per-block, flushed atomically on commit").
func (c *ChainCtx) ResetBlockCaches() {
	c.BranchCache.Reset()
	c.ReportCache.Reset()
}

// DispatchCrossChainTx is component H's single entry point, called from the
// base validator for every incoming cross-chain transaction (spec.md 2 data
// flow: "(H) dispatches on transaction kind to (C), (D), (E) or (B)"). It
// first runs the duplicate guard, then routes to the owning component.
// Callers that need a peer-chain fetch (step2 verification, lock/unlock,
// redeem) must supply it already resolved — this module's own RPC calls are
// issued by the rpcbridge package, never implicitly inside a verifier, so
// the caller controls when the main validation lock is released (spec.md 5).
func DispatchCrossChainTx(tx Tx, ctx *ChainCtx, fetchStep1 Step1Fetcher) *Reject {
	if rej := CheckBranchDuplicateTx(tx, ctx); rej != nil {
		return rej
	}

	switch {
	case tx.IsSyncBranchInfo():
		return ctx.Store.AddBlockInfo(tx, ctx.BranchCache, ctx.Validators)

	case tx.IsBranchChainTransStep2():
		rej := CheckBranchTransaction(ctx.BranchId, tx, fetchStep1)
		if rej != nil {
			return rej
		}
		if err := statedb.StoreBranchTxRecord(ctx.DB, tx.FromBranchId(), tx.Step1TxHash()); err != nil {
			return newRejectf(RejectSoftUnknownParent, "txrecord-store-error", "%v", err)
		}
		return nil

	case tx.IsReport():
		r := tx.ReportData()
		bd, err := ctx.Store.GetBranchData(r.ReportedBranchId)
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "branch-store-error", "%v", err)
		}
		var header *BlockHeader
		if h, ok := bd.GetHeader(r.ReportedBlockHash); ok {
			header = &h
		}
		if rej := CheckReportTx(bd, header, tx); rej != nil {
			return rej
		}
		return TransitionReport(ctx.DB, ctx.ReportCache, GetReportTxHashKey(r))

	case tx.IsProve():
		p := tx.ProveData()
		if p == nil {
			return newReject(RejectMalformed, "bad-prove-tx", "missing ProveData payload")
		}
		bd, err := ctx.Store.GetBranchData(p.ReportedBranchId)
		if err != nil {
			return newRejectf(RejectSoftUnknownParent, "branch-store-error", "%v", err)
		}
		header, ok := bd.GetHeader(p.ReportedBlockHash)
		if !ok {
			return newReject(RejectSoftUnknownParent, "prove-block-unknown", "reported block not found in branch header store")
		}
		switch p.Kind {
		case ReportTx:
			if _, _, rej := CheckProveReportTx(bd, header, p, ctx.Prove); rej != nil {
				return rej
			}
		case ReportCoinbase, ReportMerkleTree:
			if rej := CheckProveCoinbaseTx(bd, header, p.Kind, p, ctx.Prove); rej != nil {
				return rej
			}
		case ReportContractData:
			// The contract-data fraud proof lives on the original Report tx's
			// ContractDataProof, not on this Prove tx's payload, and component
			// H has no reference to that report tx here; the main validator
			// calls CheckProveContractData directly once it has fetched the
			// matching report, the same external-evidence split the
			// Mortgage-family case below documents.
		default:
			return newReject(RejectMalformed, "bad-prove-kind", "unknown prove kind")
		}
		return TransitionProve(ctx.DB, ctx.ReportCache, GetProveTxHashKey(p))

	case tx.IsLockMortgageMineCoin(), tx.IsUnLockMortgageMineCoin(), tx.IsMortgage(), tx.IsRedeemMortgageStatement(), tx.IsReportReward():
		// These cross-chain kinds need branch-specific external evidence
		// (the main-chain report/prove fetch, the branch's own confirmation
		// state) this dispatcher does not have in scope; callers invoke
		// mortgage.go's CheckLockMortgageMineCoinTx / CheckUnlockMortgageMineCoinTx /
		// CheckRedeemMortgageStatement / CheckReportReward directly once
		// they've gathered that evidence via rpcbridge.
		return nil

	default:
		return nil
	}
}
