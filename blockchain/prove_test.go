package blockchain

import (
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/stretchr/testify/require"
)

func withFakeProveCodec(t *testing.T, byRaw map[string]Tx) {
	t.Helper()
	prev := decodeTxHook
	decodeTxHook = func(raw []byte) (Tx, error) {
		tx, ok := byRaw[string(raw)]
		if !ok {
			return nil, errUnknownTx
		}
		return tx, nil
	}
	t.Cleanup(func() { decodeTxHook = prev })
}

func TestCheckTransactionProveWithProveDataHappyPath(t *testing.T) {
	prevTx := &MutableTx{TxHash: common.HashBytes([]byte("prev-tx")), VoutList: []TxOut{{Value: 100}}}
	withFakeProveCodec(t, map[string]Tx{"prev-raw": prevTx})

	block := &Block{Vtx: []Tx{prevTx}}
	spv := NewSpvProof(block, map[common.Hash256]bool{prevTx.Hash(): true})
	bd := newBranchData(common.HashBytes([]byte("branch-a")))
	header := BlockHeader{MerkleRoot: func() common.Hash256 { r, _, _, _ := spv.Pmt.ExtractMatches(); return r }()}
	bd.insert(&headerNode{Hash: spv.BlockHash, Height: 0, Header: header})

	tx := &MutableTx{
		VinList:  []TxIn{{PrevOut: common.OutPoint{Hash: prevTx.Hash(), Index: 0}}},
		VoutList: []TxOut{{Value: 40}},
	}
	items := []ProveDataItem{{BlockHash: spv.BlockHash, TxBytes: []byte("prev-raw"), Spv: spv}}

	fee, rej := CheckTransactionProveWithProveData(tx, items, bd, false, ProveDeps{})
	require.Nil(t, rej)
	require.Equal(t, common.Amount(60), fee)
}

func TestCheckTransactionProveWithProveDataRejectsCoinbase(t *testing.T) {
	tx := &MutableTx{FCoinBase: true}
	_, rej := CheckTransactionProveWithProveData(tx, nil, newBranchData(common.MainBranchID), false, ProveDeps{})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
}

func TestCheckTransactionProveWithProveDataRejectsLengthMismatch(t *testing.T) {
	tx := &MutableTx{VinList: []TxIn{{}, {}}}
	_, rej := CheckTransactionProveWithProveData(tx, []ProveDataItem{{}}, newBranchData(common.MainBranchID), false, ProveDeps{})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
}

func TestCheckProveCoinbaseTxRequiresFeeMatch(t *testing.T) {
	coinbase := &MutableTx{FCoinBase: true, TxHash: common.HashBytes([]byte("coinbase")), VoutList: []TxOut{{Value: 5}}}
	stake := &MutableTx{TxHash: common.HashBytes([]byte("stake"))}
	withFakeProveCodec(t, map[string]Tx{"coinbase-raw": coinbase, "stake-raw": stake})

	hashes := []common.Hash256{coinbase.Hash(), stake.Hash()}
	root := computeMerkleRoot(hashes)
	header := BlockHeader{MerkleRoot: root}

	prove := &ProveData{Kind: ReportCoinbase, TxHash: coinbase.Hash(), VtxData: [][]byte{[]byte("coinbase-raw"), []byte("stake-raw")}}
	rej := CheckProveCoinbaseTx(newBranchData(common.MainBranchID), header, ReportCoinbase, prove, ProveDeps{})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
	require.Equal(t, "prove-coinbase-fee-mismatch", rej.Code)
}

func TestCheckProveCoinbaseTxRejectsWrongMerkleRoot(t *testing.T) {
	coinbase := &MutableTx{FCoinBase: true, TxHash: common.HashBytes([]byte("coinbase-2"))}
	stake := &MutableTx{TxHash: common.HashBytes([]byte("stake-2"))}
	withFakeProveCodec(t, map[string]Tx{"cb": coinbase, "st": stake})

	prove := &ProveData{Kind: ReportCoinbase, TxHash: coinbase.Hash(), VtxData: [][]byte{[]byte("cb"), []byte("st")}}
	header := BlockHeader{MerkleRoot: common.HashBytes([]byte("wrong-root"))}
	rej := CheckProveCoinbaseTx(newBranchData(common.MainBranchID), header, ReportCoinbase, prove, ProveDeps{})
	require.NotNil(t, rej)
	require.Equal(t, RejectSpvHard, rej.Kind)
}
