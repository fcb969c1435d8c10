package statedb

import (
	"encoding/json"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// RawTxRecord is a raw transaction indexed by the branch it was accepted on
// and the block that includes it, the inbound RPC server's answer to a peer
// chain's getbranchchaintransaction / getreporttxdata / getprovetxdata call
// (spec.md 6.3). Confirmations are computed from BlockHash at query time
// against the caller's current branch height rather than stored, since the
// stored value would go stale on every new block.
type RawTxRecord struct {
	BlockHash common.Hash256
	RawHex    string
}

func rawTxKey(branchId common.BranchId, txHash common.Hash256) []byte {
	return objectKey(prefixRawTx, branchId[:], txHash[:])
}

// StoreRawTx indexes tx hash -> (including block, raw hex) for branchId.
func StoreRawTx(db *StateDB, branchId common.BranchId, txHash common.Hash256, rec RawTxRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return NewStatedbError(StoreRawTxError, err)
	}
	if err := db.set(rawTxKey(branchId, txHash), raw); err != nil {
		return NewStatedbError(StoreRawTxError, err)
	}
	return nil
}

// GetRawTx looks up a previously-indexed raw transaction.
func GetRawTx(db *StateDB, branchId common.BranchId, txHash common.Hash256) (*RawTxRecord, bool, error) {
	raw, has, err := db.get(rawTxKey(branchId, txHash))
	if err != nil {
		return nil, false, NewStatedbError(GetRawTxError, err)
	}
	if !has {
		return nil, false, nil
	}
	var rec RawTxRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, NewStatedbError(GetRawTxError, err)
	}
	return &rec, true, nil
}
