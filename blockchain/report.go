package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
)

// GetReportTxHashKey derives the ReportRecord key of spec.md 3.1:
// H = hash(reportKind ‖ branchId ‖ blockHash ‖ txHash).
func GetReportTxHashKey(r *ReportData) common.Hash256 {
	return common.HashBytes(
		[]byte{byte(r.Kind)},
		r.ReportedBranchId[:],
		r.ReportedBlockHash[:],
		r.ReportedTxHash[:],
	)
}

// GetProveTxHashKey derives the matching key for a Prove tx's payload. It
// must produce the same hash as GetReportTxHashKey for a report/prove pair
// that refers to the same (kind, branch, block, tx) (spec.md 8 "Report key
// determinism").
func GetProveTxHashKey(p *ProveData) common.Hash256 {
	return common.HashBytes(
		[]byte{byte(p.Kind)},
		p.ReportedBranchId[:],
		p.ReportedBlockHash[:],
		p.TxHash[:],
	)
}

// CheckReportTxCommonly runs the block-pinned checks common to every report
// kind (spec.md 4.E): the reported block must exist, no reports from the
// future, and no stale reports past the safety horizon.
func CheckReportTxCommonly(bd *BranchData, r *ReportData) *Reject {
	reportedHeight, _, ok := bd.GetBranchBlockData(r.ReportedBlockHash)
	if !ok {
		return newReject(RejectSoftUnknownParent, "report-block-unknown", "reported block not found in branch header store")
	}
	branchHeight := bd.Height()
	if branchHeight < reportedHeight {
		return newReject(RejectMalformed, "report-from-future", "reported block height exceeds branch's current height")
	}
	if branchHeight-reportedHeight > RedeemSafeHeight {
		return newReject(RejectMalformed, "report-too-stale", "reported block is older than the redeem safety horizon")
	}
	return nil
}

// CheckReportTx verifies a Report tx's per-kind rule (spec.md 4.E). Takes
// the owning tx (for its pPMT, spec.md 3.1) rather than a bare ReportData.
// ReportContractData's verification is the SPV-pair check of spec.md 4.F
// and is dispatched separately by CheckProveContractData; a bare inclusion
// report of that kind only needs the common checks.
func CheckReportTx(bd *BranchData, reportedHeader *BlockHeader, tx Tx) *Reject {
	r := tx.ReportData()
	if r == nil {
		return newReject(RejectMalformed, "bad-report-tx", "missing ReportData payload")
	}
	if rej := CheckReportTxCommonly(bd, r); rej != nil {
		return rej
	}
	switch r.Kind {
	case ReportTx, ReportCoinbase:
		if reportedHeader == nil {
			return newReject(RejectSpvSoft, "report-block-not-fetched", "reported block header unavailable for SPV check")
		}
		pmt := tx.PMT()
		if pmt == nil {
			return newReject(RejectMalformed, "bad-report-tx", "missing SPV proof")
		}
		if idx := CheckSpvProof(reportedHeader.MerkleRoot, pmt.Pmt, r.ReportedTxHash); idx < 0 {
			return newReject(RejectSpvHard, "report-bad-spv", "CheckSpvProof failed for reported tx")
		}
		return nil
	case ReportMerkleTree:
		// Common checks only; the merkle-tree anomaly itself is proved later
		// by CheckProveCoinbaseTx (spec.md 4.E).
		return nil
	case ReportContractData:
		return nil
	default:
		return newReject(RejectMalformed, "bad-report-kind", "unknown report kind")
	}
}

// TransitionReport applies a Report tx's inclusion: a fresh report key
// becomes StatusReported. A key already at StatusProved is terminal and
// refuses to move (spec.md 3.2 "reaching PROVED is terminal").
func TransitionReport(db *statedb.StateDB, cache *ReportCache, key common.Hash256) *Reject {
	if status, found, _ := lookupReportStatus(db, cache, key); found && status == statedb.StatusProved {
		return newReject(RejectDuplicate, "report-already-proved", "report key already reached PROVED")
	}
	if cache != nil {
		cache.Stage(key, statedb.StatusReported)
	}
	if err := statedb.StoreReportStatus(db, key, statedb.StatusReported); err != nil {
		return newRejectf(RejectSoftUnknownParent, "report-store-error", "%v", err)
	}
	return nil
}

// TransitionProve applies a Prove tx: a StatusReported key moves to
// StatusProved (spec.md 3.2 "∅ -> REPORTED -> PROVED"). Proving a key that
// was never reported, or one already PROVED, is rejected.
func TransitionProve(db *statedb.StateDB, cache *ReportCache, key common.Hash256) *Reject {
	status, found, err := lookupReportStatus(db, cache, key)
	if err != nil {
		return newRejectf(RejectSoftUnknownParent, "report-store-error", "%v", err)
	}
	if !found {
		return newReject(RejectSoftUnknownParent, "prove-unknown-report", "no matching report for this prove tx")
	}
	if status == statedb.StatusProved {
		return newReject(RejectDuplicate, "prove-already-applied", "report key already reached PROVED")
	}
	if cache != nil {
		cache.Stage(key, statedb.StatusProved)
	}
	if err := statedb.StoreReportStatus(db, key, statedb.StatusProved); err != nil {
		return newRejectf(RejectSoftUnknownParent, "report-store-error", "%v", err)
	}
	return nil
}

func lookupReportStatus(db *statedb.StateDB, cache *ReportCache, key common.Hash256) (statedb.ReportStatus, bool, error) {
	if cache != nil {
		if status, found := cache.Get(key); found {
			return status, true, nil
		}
	}
	return statedb.GetReportStatus(db, key)
}

// ReportCache stages report-status transitions for the in-flight block, the
// same append-only-staged-map pattern BranchCache uses (spec.md 9: "two
// append-only maps staged per-block, flushed atomically on commit").
type ReportCache struct {
	staged map[common.Hash256]statedb.ReportStatus
}

// NewReportCache constructs an empty per-block report cache.
func NewReportCache() *ReportCache {
	return &ReportCache{staged: make(map[common.Hash256]statedb.ReportStatus)}
}

func (c *ReportCache) Get(key common.Hash256) (statedb.ReportStatus, bool) {
	s, ok := c.staged[key]
	return s, ok
}

func (c *ReportCache) Stage(key common.Hash256, status statedb.ReportStatus) {
	c.staged[key] = status
}

func (c *ReportCache) Reset() {
	c.staged = make(map[common.Hash256]statedb.ReportStatus)
}

// HasReported reports whether key is present in either the cache or the
// store, regardless of status — used by the duplicate guard for Report txs
// (spec.md 4.H: "reportKey must not already be in cache or store").
func HasReported(db *statedb.StateDB, cache *ReportCache, key common.Hash256) (bool, error) {
	_, found, err := lookupReportStatus(db, cache, key)
	return found, err
}

// IsProved reports whether key's status is exactly StatusProved — used by
// the duplicate guard for Prove txs (spec.md 4.H: "proveKey must not already
// be present with value PROVED").
func IsProved(db *statedb.StateDB, cache *ReportCache, key common.Hash256) (bool, error) {
	status, found, err := lookupReportStatus(db, cache, key)
	if err != nil || !found {
		return false, err
	}
	return status == statedb.StatusProved, nil
}

// StateReportLookup adapts the persisted report-status store to the
// ReportLookup interface mortgage.go's CheckRedeemMortgageStatement uses.
// It enumerates every block in bd whose stake tx spends the mine coin
// derived from mineCoinFromTxId, and for each such block builds the report
// key of that block's stake tx under every report kind, since the header
// store does not index reports by the mortgage they derive from. Reports
// against other transactions of those blocks are not looked up.
type StateReportLookup struct {
	DB    *statedb.StateDB
	Cache *ReportCache
	Bd    *BranchData
}

func (l *StateReportLookup) HasOutstandingReportFor(mineCoinFromTxId common.Hash256) (bool, error) {
	blocks := l.Bd.BlocksStakedBy(mineCoinFromTxId)
	var keys []common.Hash256
	for _, blockHash := range blocks {
		_, raw, ok := l.Bd.GetBranchBlockData(blockHash)
		if !ok {
			continue
		}
		stakeTx, err := decodeProveTx(raw)
		if err != nil {
			return false, err
		}
		for _, kind := range []ReportKind{ReportTx, ReportCoinbase, ReportMerkleTree, ReportContractData} {
			keys = append(keys, GetReportTxHashKey(&ReportData{Kind: kind, ReportedBranchId: l.Bd.BranchId, ReportedBlockHash: blockHash, ReportedTxHash: stakeTx.Hash()}))
		}
	}
	return HasOutstandingReport(l.DB, l.Cache, keys)
}

// HasOutstandingReport reports whether any REPORTED-not-PROVED record
// exists for a report pinned at (branchId, blockHash) — the gate
// RedeemMortgageStatement acceptance and mortgage redemption both consult
// (spec.md 3.2, 4.D step 5, 8 "Redeem safety"). Since the report key also
// folds in the reported tx hash, callers must enumerate the report kinds
// and tx hashes that could point at blockHash; this module assumes that
// enumeration is supplied by the caller (the stake tx hash for the block,
// for every report kind that can target it) rather than performed here,
// since the header store does not index reports by block.
func HasOutstandingReport(db *statedb.StateDB, cache *ReportCache, keys []common.Hash256) (bool, error) {
	for _, k := range keys {
		status, found, err := lookupReportStatus(db, cache, k)
		if err != nil {
			return false, err
		}
		if found && status == statedb.StatusReported {
			return true, nil
		}
	}
	return false, nil
}
