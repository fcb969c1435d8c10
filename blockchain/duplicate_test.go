package blockchain

import (
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcbridge"
	"github.com/stretchr/testify/require"
)

func newTestCtx(t *testing.T) *ChainCtx {
	t.Helper()
	db := newTestDB(t)
	return NewChainCtx(common.MainBranchID, db, rpcbridge.NewBranchChainMan())
}

func TestCheckBranchDuplicateTxStep2(t *testing.T) {
	ctx := newTestCtx(t)
	tx := &MutableTx{FBranchChainTransStep2: true, From: common.HashBytes([]byte("branch-a")), Step1Hash: common.HashBytes([]byte("step1-tx"))}

	require.Nil(t, CheckBranchDuplicateTx(tx, ctx))

	require.NoError(t, statedb.StoreBranchTxRecord(ctx.DB, tx.FromBranchId(), tx.Step1TxHash()))
	rej := CheckBranchDuplicateTx(tx, ctx)
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)
}

func TestCheckBranchDuplicateTxReport(t *testing.T) {
	ctx := newTestCtx(t)
	r := &ReportData{Kind: ReportTx, ReportedBranchId: common.HashBytes([]byte("branch-a")), ReportedBlockHash: common.HashBytes([]byte("block-1")), ReportedTxHash: common.HashBytes([]byte("tx-1"))}
	tx := &MutableTx{FReport: true, Report: r}

	require.Nil(t, CheckBranchDuplicateTx(tx, ctx))
	require.Nil(t, TransitionReport(ctx.DB, ctx.ReportCache, GetReportTxHashKey(r)))

	rej := CheckBranchDuplicateTx(tx, ctx)
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)
}

func TestCheckBranchDuplicateTxProveAfterProved(t *testing.T) {
	ctx := newTestCtx(t)
	p := &ProveData{Kind: ReportTx, ReportedBranchId: common.HashBytes([]byte("branch-a")), ReportedBlockHash: common.HashBytes([]byte("block-1")), TxHash: common.HashBytes([]byte("tx-1"))}
	tx := &MutableTx{FProve: true, Prove: p}
	key := GetProveTxHashKey(p)

	require.Nil(t, CheckBranchDuplicateTx(tx, ctx))

	require.Nil(t, TransitionReport(ctx.DB, ctx.ReportCache, key))
	require.Nil(t, CheckBranchDuplicateTx(tx, ctx))

	require.Nil(t, TransitionProve(ctx.DB, ctx.ReportCache, key))
	rej := CheckBranchDuplicateTx(tx, ctx)
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)
}
