package blockchain

import (
	"path/filepath"
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BranchStore {
	t.Helper()
	db, err := statedb.NewStateDB(filepath.Join(t.TempDir(), "branchdb"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBranchStore(db)
}

func syncInfoTx(branchId common.BranchId, header BlockHeader, height int64) Tx {
	return &MutableTx{
		TxHash:          header.Hash(),
		FSyncBranchInfo: true,
		Branch:          &BranchBlockData{Header: header, BranchId: branchId, Height: height},
	}
}

func TestAddBlockInfoGenesis(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))
	store.MarkBranchCreated(branch)

	genesis := BlockHeader{
		PrevBlock:    common.Hash256{},
		MerkleRoot:   common.HashBytes([]byte("root-0")),
		Time:         1000,
		PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("stake")), Index: 0},
		BlockSig:     []byte{0x01},
	}
	cache := NewBranchCache()
	v := HeaderValidators{}

	rej := store.AddBlockInfo(syncInfoTx(branch, genesis, 0), cache, v)
	require.Nil(t, rej)

	bd, err := store.GetBranchData(branch)
	require.NoError(t, err)
	require.Equal(t, int64(0), bd.Height())
	require.True(t, bd.HasBlock(genesis.Hash()))
}

func TestAddBlockInfoRejectsUnknownBranch(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))

	h := BlockHeader{
		PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("stake")), Index: 0},
		BlockSig:     []byte{0x01},
	}
	rej := store.AddBlockInfo(syncInfoTx(branch, h, 0), NewBranchCache(), HeaderValidators{})
	require.NotNil(t, rej)
	require.Equal(t, RejectSoftUnknownParent, rej.Kind)
}

func TestAddBlockInfoRejectsMissingStakeOrSig(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))
	store.MarkBranchCreated(branch)

	h := BlockHeader{}
	rej := store.AddBlockInfo(syncInfoTx(branch, h, 0), NewBranchCache(), HeaderValidators{})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
}

func TestAddBlockInfoRejectsOrphan(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))
	store.MarkBranchCreated(branch)

	child := BlockHeader{
		PrevBlock:    common.HashBytes([]byte("nonexistent-parent")),
		PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("stake")), Index: 0},
		BlockSig:     []byte{0x01},
	}
	rej := store.AddBlockInfo(syncInfoTx(branch, child, 1), NewBranchCache(), HeaderValidators{})
	require.NotNil(t, rej)
	require.Equal(t, RejectSoftUnknownParent, rej.Kind)
}

func TestAddBlockInfoDedupsWithinSameBlockCache(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))
	store.MarkBranchCreated(branch)
	cache := NewBranchCache()

	genesis := BlockHeader{
		MerkleRoot:   common.HashBytes([]byte("root-0")),
		PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("stake")), Index: 0},
		BlockSig:     []byte{0x01},
	}
	tx := syncInfoTx(branch, genesis, 0)
	require.Nil(t, store.AddBlockInfo(tx, cache, HeaderValidators{}))

	rej := store.AddBlockInfo(tx, cache, HeaderValidators{})
	require.NotNil(t, rej)
	require.Equal(t, RejectDuplicate, rej.Kind)
}

func TestGetAncestorWalksParentChain(t *testing.T) {
	store := newTestStore(t)
	branch := common.HashBytes([]byte("branch-a"))
	store.MarkBranchCreated(branch)
	cache := NewBranchCache()

	genesis := BlockHeader{MerkleRoot: common.HashBytes([]byte("r0")), PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("s0"))}, BlockSig: []byte{1}}
	require.Nil(t, store.AddBlockInfo(syncInfoTx(branch, genesis, 0), cache, HeaderValidators{}))

	child := BlockHeader{PrevBlock: genesis.Hash(), MerkleRoot: common.HashBytes([]byte("r1")), PrevoutStake: common.OutPoint{Hash: common.HashBytes([]byte("s1"))}, BlockSig: []byte{1}}
	require.Nil(t, store.AddBlockInfo(syncInfoTx(branch, child, 1), cache, HeaderValidators{}))

	bd, err := store.GetBranchData(branch)
	require.NoError(t, err)

	got, ok := bd.GetAncestor(child.Hash(), 0)
	require.True(t, ok)
	require.Equal(t, genesis.Hash(), got)
	require.True(t, bd.IsAncestor(child.Hash(), genesis.Hash()))
}
