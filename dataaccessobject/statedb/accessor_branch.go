package statedb

import (
	"encoding/json"
	"fmt"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// StoredHeader is the durable form of a branch block header plus the
// bookkeeping the header store needs to recompute ancestry and work
// without replaying every header (spec.md 3.1 BranchBlockData).
type StoredHeader struct {
	BranchId    common.BranchId
	BlockHash   common.Hash256
	PrevBlock   common.Hash256
	Height      int64
	Work        int64 // cumulative work up to and including this block
	StakeTxData []byte

	// Fields needed to reconstruct the full header for SPV checks against
	// the three merkle-root variants of spec.md 3.1/4.F.
	Version                int32
	Time                   int64
	MerkleRoot             common.Hash256
	MerkleRootWithPrevData common.Hash256
	MerkleRootWithData     common.Hash256
	PrevoutStakeHash       common.Hash256
	PrevoutStakeIndex      uint32
	BlockSig               []byte
}

func branchHeaderKey(branchId common.BranchId, blockHash common.Hash256) []byte {
	return objectKey(prefixBranchHeader, branchId[:], blockHash[:])
}

// StoreBranchHeader persists a single accepted branch header (spec.md 4.B
// AddBlockInfo's final "insert into mapHeads" step).
func StoreBranchHeader(db *StateDB, h *StoredHeader) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return NewStatedbError(StoreBranchHeaderError, err)
	}
	if err := db.set(branchHeaderKey(h.BranchId, h.BlockHash), raw); err != nil {
		return NewStatedbError(StoreBranchHeaderError, err)
	}
	return nil
}

// GetBranchHeader loads a previously-stored header, or (nil, false, nil) if absent.
func GetBranchHeader(db *StateDB, branchId common.BranchId, blockHash common.Hash256) (*StoredHeader, bool, error) {
	raw, has, err := db.get(branchHeaderKey(branchId, blockHash))
	if err != nil {
		return nil, false, NewStatedbError(GetBranchHeaderError, err)
	}
	if !has {
		return nil, false, nil
	}
	var h StoredHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, false, NewStatedbError(GetBranchHeaderError, err)
	}
	return &h, true, nil
}

// HasBranchHeader reports whether a header for (branchId, blockHash) is
// persisted. AddBlockInfo and CheckBranchDuplicateTx do not call it; they
// dedup against the in-memory BranchData (spec.md 4.B.1 rule 4, 4.H).
func HasBranchHeader(db *StateDB, branchId common.BranchId, blockHash common.Hash256) (bool, error) {
	has, err := db.has(branchHeaderKey(branchId, blockHash))
	if err != nil {
		return false, NewStatedbError(GetBranchHeaderError, err)
	}
	return has, nil
}

// AllBranchHeaders returns every header stored for branchId, used to
// rebuild the in-memory BranchData DAG on startup.
func AllBranchHeaders(db *StateDB, branchId common.BranchId) ([]*StoredHeader, error) {
	var out []*StoredHeader
	prefix := branchId[:]
	err := db.iteratePrefix(prefixBranchHeader, func(suffix, value []byte) bool {
		if len(suffix) < len(prefix) {
			return true
		}
		for i := range prefix {
			if suffix[i] != prefix[i] {
				return true
			}
		}
		var h StoredHeader
		if json.Unmarshal(value, &h) == nil {
			out = append(out, &h)
		}
		return true
	})
	if err != nil {
		return nil, NewStatedbError(GetBranchHeaderError, err)
	}
	return out, nil
}

func bestTipKey(branchId common.BranchId) []byte {
	return objectKey(prefixBranchBestTip, branchId[:])
}

// StoreBestTip records the current best-tip block hash for branchId.
func StoreBestTip(db *StateDB, branchId common.BranchId, tip common.Hash256) error {
	if err := db.set(bestTipKey(branchId), tip[:]); err != nil {
		return NewStatedbError(StoreBestTipError, err)
	}
	return nil
}

// GetBestTip returns the current best-tip for branchId.
func GetBestTip(db *StateDB, branchId common.BranchId) (common.Hash256, bool, error) {
	raw, has, err := db.get(bestTipKey(branchId))
	if err != nil {
		return common.Hash256{}, false, NewStatedbError(GetBestTipError, err)
	}
	if !has {
		return common.Hash256{}, false, nil
	}
	if len(raw) != 32 {
		return common.Hash256{}, false, NewStatedbError(GetBestTipError, fmt.Errorf("corrupt best-tip value for branch %s", branchId))
	}
	var h common.Hash256
	copy(h[:], raw)
	return h, true, nil
}
