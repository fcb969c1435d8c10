package blockchain

import (
	"encoding/hex"
	"testing"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/stretchr/testify/require"
)

// fakeTxRegistry lets tests wire decodeHexTx/decodeTxHook to a simple in
// memory map keyed by hex-encoded placeholder bytes, standing in for the
// base engine's real codec (spec.md 1, Non-goals).
type fakeTxRegistry struct {
	byHex map[string]Tx
}

func newFakeTxRegistry() *fakeTxRegistry {
	return &fakeTxRegistry{byHex: make(map[string]Tx)}
}

func (r *fakeTxRegistry) register(tag string, tx Tx) string {
	h := hex.EncodeToString([]byte(tag))
	r.byHex[h] = tx
	return h
}

func (r *fakeTxRegistry) decode(hexStr string) (Tx, error) {
	tx, ok := r.byHex[hexStr]
	if !ok {
		return nil, errUnknownTx
	}
	return tx, nil
}

var errUnknownTx = newReject(RejectMalformed, "unknown-tx", "not registered")

func withFakeCodec(t *testing.T, reg *fakeTxRegistry) {
	t.Helper()
	prevHex := decodeHexTx
	prevBytes := decodeTxHook
	decodeHexTx = reg.decode
	decodeTxHook = func(raw []byte) (Tx, error) { return reg.decode(string(raw)) }
	t.Cleanup(func() {
		decodeHexTx = prevHex
		decodeTxHook = prevBytes
	})
}

func TestGetBranchChainOutSumsTransferVouts(t *testing.T) {
	branchScript, err := BuildTransBranchScript(common.HashBytes([]byte("dest-branch")))
	require.NoError(t, err)

	tx := &MutableTx{VoutList: []TxOut{
		{Value: 100, ScriptPubKey: branchScript},
		{Value: 50, ScriptPubKey: Script{0xAB}},
	}}
	require.Equal(t, common.Amount(100), GetBranchChainOut(tx))
}

func TestRevertTransactionSmartContractDropsMarkedVinVout(t *testing.T) {
	contractScript := Script{OP_CONTRACT}
	changeScript := Script{OP_CONTRACT, 0x01}
	plainScript := Script{0x01}

	tx := &MutableTx{
		TxHash:         common.HashBytes([]byte("orig")),
		FSmartContract: true,
		VinList:        []TxIn{{ScriptSig: contractScript}, {ScriptSig: plainScript}},
		VoutList:       []TxOut{{Value: 10, ScriptPubKey: changeScript}, {Value: 20, ScriptPubKey: plainScript}},
	}

	reverted := RevertTransaction(tx, nil, false)
	require.Len(t, reverted.VinList, 1)
	require.Len(t, reverted.VoutList, 1)
	require.Equal(t, common.Amount(20), reverted.VoutList[0].Value)
}

func TestCheckBranchTransactionRejectsSelfTransfer(t *testing.T) {
	main := common.MainBranchID
	step2 := &MutableTx{FBranchChainTransStep2: true, From: main}
	rej := CheckBranchTransaction(main, step2, func(common.BranchId, common.Hash256) ([]byte, int64, error) {
		t.Fatal("fetch should not be called for a self-transfer")
		return nil, 0, nil
	})
	require.NotNil(t, rej)
	require.Equal(t, RejectMalformed, rej.Kind)
}

func TestCheckBranchTransactionRejectsImmatureStep1(t *testing.T) {
	reg := newFakeTxRegistry()
	withFakeCodec(t, reg)

	step1Hex := reg.register("step1", &MutableTx{})
	step2 := &MutableTx{FBranchChainTransStep2: true, From: common.HashBytes([]byte("branch-a"))}

	rej := CheckBranchTransaction(common.MainBranchID, step2, func(common.BranchId, common.Hash256) ([]byte, int64, error) {
		return []byte(step1Hex), BranchChainMaturity, nil
	})
	require.NotNil(t, rej)
	require.Equal(t, RejectSoftUnknownParent, rej.Kind)
}
