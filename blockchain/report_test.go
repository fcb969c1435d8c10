package blockchain

import (
	"path/filepath"
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *statedb.StateDB {
	t.Helper()
	db, err := statedb.NewStateDB(filepath.Join(t.TempDir(), "branchdb"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReportAndProveKeysMatch(t *testing.T) {
	branch := common.HashBytes([]byte("branch-a"))
	block := common.HashBytes([]byte("block-1"))
	txHash := common.HashBytes([]byte("tx-1"))

	r := &ReportData{Kind: ReportTx, ReportedBranchId: branch, ReportedBlockHash: block, ReportedTxHash: txHash}
	p := &ProveData{Kind: ReportTx, ReportedBranchId: branch, ReportedBlockHash: block, TxHash: txHash}

	require.Equal(t, GetReportTxHashKey(r), GetProveTxHashKey(p))
}

func TestReportAndProveKeysDifferOnKind(t *testing.T) {
	branch := common.HashBytes([]byte("branch-a"))
	block := common.HashBytes([]byte("block-1"))
	txHash := common.HashBytes([]byte("tx-1"))

	a := GetReportTxHashKey(&ReportData{Kind: ReportTx, ReportedBranchId: branch, ReportedBlockHash: block, ReportedTxHash: txHash})
	b := GetReportTxHashKey(&ReportData{Kind: ReportCoinbase, ReportedBranchId: branch, ReportedBlockHash: block, ReportedTxHash: txHash})
	require.NotEqual(t, a, b)
}

func TestTransitionReportThenProve(t *testing.T) {
	db := newTestDB(t)
	cache := NewReportCache()
	key := common.HashBytes([]byte("report-key"))

	require.Nil(t, TransitionReport(db, cache, key))

	reported, err := HasReported(db, cache, key)
	require.NoError(t, err)
	require.True(t, reported)

	require.Nil(t, TransitionProve(db, cache, key))

	proved, err := IsProved(db, cache, key)
	require.NoError(t, err)
	require.True(t, proved)
}

func TestTransitionProveWithoutReportFails(t *testing.T) {
	db := newTestDB(t)
	cache := NewReportCache()
	key := common.HashBytes([]byte("unknown-key"))

	rej := TransitionProve(db, cache, key)
	require.NotNil(t, rej)
	require.Equal(t, RejectSoftUnknownParent, rej.Kind)
}

func TestTransitionProveIsTerminal(t *testing.T) {
	db := newTestDB(t)
	cache := NewReportCache()
	key := common.HashBytes([]byte("report-key-2"))

	require.Nil(t, TransitionReport(db, cache, key))
	require.Nil(t, TransitionProve(db, cache, key))

	rej := TransitionProve(db, cache, key)
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)

	rej = TransitionReport(db, cache, key)
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)
}

func TestCheckReportTxCommonlyRejectsUnknownBlock(t *testing.T) {
	bd := newBranchData(common.HashBytes([]byte("branch-a")))
	r := &ReportData{ReportedBlockHash: common.HashBytes([]byte("unknown-block"))}
	rej := CheckReportTxCommonly(bd, r)
	require.NotNil(t, rej)
	require.Equal(t, RejectSoftUnknownParent, rej.Kind)
}

func TestCheckReportTxCommonlyRejectsStaleReport(t *testing.T) {
	bd := newBranchData(common.HashBytes([]byte("branch-a")))
	old := common.HashBytes([]byte("old-block"))
	tip := common.HashBytes([]byte("tip-block"))
	bd.insert(&headerNode{Hash: old, Height: 0, Work: 1})
	bd.insert(&headerNode{Hash: tip, Height: RedeemSafeHeight + 5, Work: 2})

	rej := CheckReportTxCommonly(bd, &ReportData{ReportedBlockHash: old})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
}
