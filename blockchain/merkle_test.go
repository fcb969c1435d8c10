package blockchain

import (
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/stretchr/testify/require"
)

func txWithHash(seed string) Tx {
	return &MutableTx{TxHash: common.HashBytes([]byte(seed))}
}

func buildBlock(n int) (*Block, []Tx) {
	vtx := make([]Tx, n)
	for i := range vtx {
		vtx[i] = txWithHash(string(rune('a' + i)))
	}
	return &Block{Vtx: vtx}, vtx
}

func TestSpvProofSingleMatch(t *testing.T) {
	block, vtx := buildBlock(5)
	target := vtx[2].Hash()

	proof := NewSpvProof(block, map[common.Hash256]bool{target: true})
	root, matched, idx, ok := proof.Pmt.ExtractMatches()
	require.True(t, ok)
	require.Len(t, matched, 1)
	require.Equal(t, target, matched[0])
	require.Equal(t, uint32(2), idx[0])

	leafIdx := CheckSpvProof(root, proof.Pmt, target)
	require.Equal(t, 2, leafIdx)
}

func TestSpvProofRejectsWrongRoot(t *testing.T) {
	block, vtx := buildBlock(4)
	target := vtx[0].Hash()
	proof := NewSpvProof(block, map[common.Hash256]bool{target: true})

	wrongRoot := common.HashBytes([]byte("not-the-root"))
	require.Equal(t, -1, CheckSpvProof(wrongRoot, proof.Pmt, target))
}

func TestSpvProofRejectsUnmatchedQuery(t *testing.T) {
	block, vtx := buildBlock(4)
	matchedTx := vtx[1].Hash()
	proof := NewSpvProof(block, map[common.Hash256]bool{matchedTx: true})
	root, _, _, _ := proof.Pmt.ExtractMatches()

	other := vtx[3].Hash()
	require.Equal(t, -1, CheckSpvProof(root, proof.Pmt, other))
}

func TestSpvProofOddLeafCount(t *testing.T) {
	block, vtx := buildBlock(7)
	target := vtx[6].Hash()
	proof := NewSpvProof(block, map[common.Hash256]bool{target: true})
	root, _, _, ok := proof.Pmt.ExtractMatches()
	require.True(t, ok)
	require.Equal(t, 6, CheckSpvProof(root, proof.Pmt, target))
}

func TestTxHashWithPrevDataAndDataDiffer(t *testing.T) {
	txid := common.HashBytes([]byte("tx"))
	data := []byte("state")
	require.NotEqual(t, GetTxHashWithPrevData(txid, data), GetTxHashWithData(txid, data))
}
