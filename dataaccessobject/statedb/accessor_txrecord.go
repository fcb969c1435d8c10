package statedb

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// BranchChainTxRecordsDb (spec.md 6.4): the set of (fromBranchId,
// fromTxHash) pairs already accepted as a step-2 tx, consulted by the
// duplicate guard (spec.md 4.H).
func txRecordKey(fromBranchId common.BranchId, fromTxHash common.Hash256) []byte {
	return objectKey(prefixBranchTxRecord, fromBranchId[:], fromTxHash[:])
}

// StoreBranchTxRecord marks (fromBranchId, fromTxHash) as accepted.
func StoreBranchTxRecord(db *StateDB, fromBranchId common.BranchId, fromTxHash common.Hash256) error {
	if err := db.set(txRecordKey(fromBranchId, fromTxHash), []byte{1}); err != nil {
		return NewStatedbError(StoreBranchTxRecordError, err)
	}
	return nil
}

// HasBranchTxRecord reports whether (fromBranchId, fromTxHash) was already accepted.
func HasBranchTxRecord(db *StateDB, fromBranchId common.BranchId, fromTxHash common.Hash256) (bool, error) {
	has, err := db.has(txRecordKey(fromBranchId, fromTxHash))
	if err != nil {
		return false, NewStatedbError(GetBranchTxRecordError, err)
	}
	return has, nil
}
