package statedb

import (
	"path/filepath"
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	db, err := NewStateDB(filepath.Join(t.TempDir(), "branchdb"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBranchHeaderRoundTrip(t *testing.T) {
	db := newTestDB(t)
	branch := common.HashBytes([]byte("branch-a"))
	blockHash := common.HashBytes([]byte("block-1"))

	has, err := HasBranchHeader(db, branch, blockHash)
	require.NoError(t, err)
	require.False(t, has)

	h := &StoredHeader{BranchId: branch, BlockHash: blockHash, Height: 1, Work: 10}
	require.NoError(t, StoreBranchHeader(db, h))

	has, err = HasBranchHeader(db, branch, blockHash)
	require.NoError(t, err)
	require.True(t, has)

	got, found, err := GetBranchHeader(db, branch, blockHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1), got.Height)
	require.Equal(t, int64(10), got.Work)
}

func TestAllBranchHeadersFiltersByBranch(t *testing.T) {
	db := newTestDB(t)
	branchA := common.HashBytes([]byte("branch-a"))
	branchB := common.HashBytes([]byte("branch-b"))

	require.NoError(t, StoreBranchHeader(db, &StoredHeader{BranchId: branchA, BlockHash: common.HashBytes([]byte("a1")), Height: 1}))
	require.NoError(t, StoreBranchHeader(db, &StoredHeader{BranchId: branchA, BlockHash: common.HashBytes([]byte("a2")), Height: 2}))
	require.NoError(t, StoreBranchHeader(db, &StoredHeader{BranchId: branchB, BlockHash: common.HashBytes([]byte("b1")), Height: 1}))

	got, err := AllBranchHeaders(db, branchA)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestBestTip(t *testing.T) {
	db := newTestDB(t)
	branch := common.HashBytes([]byte("branch-a"))

	_, found, err := GetBestTip(db, branch)
	require.NoError(t, err)
	require.False(t, found)

	tip := common.HashBytes([]byte("tip-1"))
	require.NoError(t, StoreBestTip(db, branch, tip))

	got, found, err := GetBestTip(db, branch)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, tip, got)
}

func TestReportStatusMonotonicity(t *testing.T) {
	db := newTestDB(t)
	key := common.HashBytes([]byte("report-key"))

	_, found, err := GetReportStatus(db, key)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, StoreReportStatus(db, key, StatusReported))
	status, found, err := GetReportStatus(db, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, StatusReported, status)

	require.NoError(t, StoreReportStatus(db, key, StatusProved))
	status, found, err = GetReportStatus(db, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, StatusProved, status)
}

func TestBranchTxRecordDedup(t *testing.T) {
	db := newTestDB(t)
	fromBranch := common.HashBytes([]byte("branch-a"))
	txHash := common.HashBytes([]byte("tx-1"))

	has, err := HasBranchTxRecord(db, fromBranch, txHash)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, StoreBranchTxRecord(db, fromBranch, txHash))

	has, err = HasBranchTxRecord(db, fromBranch, txHash)
	require.NoError(t, err)
	require.True(t, has)
}
