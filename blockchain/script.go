package blockchain

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// Script is an opaque, already-canonically-serialized script (spec.md 3.1).
// Building and shape-matching happens through txscript the same way the
// rest of the btcsuite-based ecosystem this module is grounded on does it;
// this module never re-implements a script interpreter (spec.md 1,
// Non-goals: "the base UTXO/validation engine").
type Script []byte

// MagnaChain reserves a handful of opcodes in the OP_NOP range for its own
// consensus rules (spec.md 6.1). Real altcoins forked from Bitcoin graft
// meaning onto OP_NOP1..OP_NOP10 exactly this way, so the choice below
// follows that convention rather than inventing a parallel opcode space.
const (
	OP_CREATE_BRANCH        = txscript.OP_NOP4
	OP_TRANS_BRANCH         = txscript.OP_NOP5
	OP_MINE_BRANCH_MORTGAGE = txscript.OP_NOP6
	OP_MINE_BRANCH_COIN     = txscript.OP_NOP7
	OP_REDEEM_MORTGAGE      = txscript.OP_NOP8
	OP_CONTRACT             = txscript.OP_NOP9
)

// scriptNum encodes an int64 using script-number rules (minimal encoding,
// little-endian magnitude + sign bit), the same representation
// txscript.ScriptNum serializes to.
func scriptNum(n int64) []byte {
	return txscript.ScriptNum(n).Bytes()
}

func parseScriptNum(b []byte) (int64, error) {
	n, err := txscript.MakeScriptNum(b, true, 8)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// p2pkhTail appends the standard pay-to-pubkey-hash checksig tail:
// OP_2DROP OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG
// Both the mortgage vout and the mine-coin vout terminate in this sentinel
// sequence (spec.md 6.1).
func p2pkhTail(b *txscript.ScriptBuilder, pubKeyHash []byte) *txscript.ScriptBuilder {
	return b.
		AddOp(txscript.OP_2DROP).
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubKeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG)
}

// BuildMortgageScript builds the OP_MINE_BRANCH_MORTGAGE collateral vout
// script of spec.md 4.D:
//
//	OP_MINE_BRANCH_MORTGAGE <branchHash:32> <height:scriptnum> OP_2DROP
//	OP_DUP OP_HASH160 <pubkeyHash:20> OP_EQUALVERIFY OP_CHECKSIG
func BuildMortgageScript(branchId common.BranchId, height int64, pubKeyHash []byte) (Script, error) {
	b := txscript.NewScriptBuilder().
		AddOp(OP_MINE_BRANCH_MORTGAGE).
		AddData(branchId[:]).
		AddData(scriptNum(height))
	s, err := p2pkhTail(b, pubKeyHash).Script()
	return Script(s), err
}

// BuildMineCoinScript builds the OP_MINE_BRANCH_COIN vout script of
// spec.md 4.D:
//
//	OP_MINE_BRANCH_COIN <fromTxId:32> <height:scriptnum> OP_2DROP OP_DUP
//	OP_HASH160 <pubkeyHash:20> OP_EQUALVERIFY OP_CHECKSIG
func BuildMineCoinScript(fromTxId common.Hash256, height int64, pubKeyHash []byte) (Script, error) {
	b := txscript.NewScriptBuilder().
		AddOp(OP_MINE_BRANCH_COIN).
		AddData(fromTxId[:]).
		AddData(scriptNum(height))
	s, err := p2pkhTail(b, pubKeyHash).Script()
	return Script(s), err
}

// BuildRedeemMarkerScript builds the OP_RETURN redeem marker of spec.md 4.D:
//
//	OP_RETURN OP_REDEEM_MORTGAGE <fromTxId:32>
func BuildRedeemMarkerScript(fromTxId common.Hash256) (Script, error) {
	s, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddOp(OP_REDEEM_MORTGAGE).
		AddData(fromTxId[:]).
		Script()
	return Script(s), err
}

// BuildTransBranchScript builds a cross-chain transfer vout script
// (spec.md 4.C):
//   - sendToBranchid != MAIN:  OP_TRANS_BRANCH <branchHash>
//   - sendToBranchid == MAIN:  OP_RETURN OP_TRANS_BRANCH
func BuildTransBranchScript(sendTo common.BranchId) (Script, error) {
	b := txscript.NewScriptBuilder()
	if common.IsMainBranch(sendTo) {
		b = b.AddOp(txscript.OP_RETURN).AddOp(OP_TRANS_BRANCH)
	} else {
		b = b.AddOp(OP_TRANS_BRANCH).AddData(sendTo[:])
	}
	s, err := b.Script()
	return Script(s), err
}

func tokenize(s Script) ([][]byte, []byte, error) {
	toks := txscript.MakeScriptTokenizer(0, s)
	var ops []byte
	var data [][]byte
	for toks.Next() {
		op := toks.Opcode()
		d := toks.Data()
		// ScriptBuilder encodes the numbers 1..16 as OP_1..OP_16 with no data
		// push; expand them back to their script-number bytes.
		if op >= txscript.OP_1 && op <= txscript.OP_16 {
			d = scriptNum(int64(op-txscript.OP_1) + 1)
		}
		ops = append(ops, op)
		data = append(data, d)
	}
	if err := toks.Err(); err != nil {
		return nil, nil, err
	}
	return data, ops, nil
}

func requireTail(ops []byte, data [][]byte, at int, pubKeyHash *[]byte) bool {
	if len(ops) != at+6 {
		return false
	}
	if ops[at] != txscript.OP_2DROP || ops[at+1] != txscript.OP_DUP ||
		ops[at+2] != txscript.OP_HASH160 || ops[at+3] != txscript.OP_DATA_20 ||
		ops[at+4] != txscript.OP_EQUALVERIFY || ops[at+5] != txscript.OP_CHECKSIG {
		return false
	}
	*pubKeyHash = data[at+3]
	return true
}

// ParseMortgageScript recovers (branchId, height, pubKeyHash) from an
// OP_MINE_BRANCH_MORTGAGE vout, rejecting anything that deviates from the
// exact shape (spec.md 6.1: "any deviation fails the shape check"). This is
// the Go form of the original source's GetMortgageMineData.
func ParseMortgageScript(s Script) (branchId common.BranchId, height int64, pubKeyHash []byte, ok bool) {
	data, ops, err := tokenize(s)
	if err != nil || len(ops) < 3 || ops[0] != OP_MINE_BRANCH_MORTGAGE {
		return branchId, 0, nil, false
	}
	if len(data[1]) != 32 {
		return branchId, 0, nil, false
	}
	copy(branchId[:], data[1])
	h, err := parseScriptNum(data[2])
	if err != nil {
		return branchId, 0, nil, false
	}
	if !requireTail(ops, data, 3, &pubKeyHash) {
		return branchId, 0, nil, false
	}
	return branchId, h, pubKeyHash, true
}

// ParseMineCoinScript recovers (fromTxId, height, pubKeyHash) from an
// OP_MINE_BRANCH_COIN vout. Go form of the original GetMortgageCoinData.
func ParseMineCoinScript(s Script) (fromTxId common.Hash256, height int64, pubKeyHash []byte, ok bool) {
	data, ops, err := tokenize(s)
	if err != nil || len(ops) < 3 || ops[0] != OP_MINE_BRANCH_COIN {
		return fromTxId, 0, nil, false
	}
	if len(data[1]) != 32 {
		return fromTxId, 0, nil, false
	}
	copy(fromTxId[:], data[1])
	h, err := parseScriptNum(data[2])
	if err != nil {
		return fromTxId, 0, nil, false
	}
	if !requireTail(ops, data, 3, &pubKeyHash) {
		return fromTxId, 0, nil, false
	}
	return fromTxId, h, pubKeyHash, true
}

// ParseRedeemScript recovers fromTxId from an OP_RETURN OP_REDEEM_MORTGAGE
// marker vout. Go form of the original GetRedeemSriptData.
func ParseRedeemScript(s Script) (fromTxId common.Hash256, ok bool) {
	data, ops, err := tokenize(s)
	if err != nil || len(ops) != 3 {
		return fromTxId, false
	}
	if ops[0] != txscript.OP_RETURN || ops[1] != OP_REDEEM_MORTGAGE || len(data[2]) != 32 {
		return fromTxId, false
	}
	copy(fromTxId[:], data[2])
	return fromTxId, true
}

// IsCoinBranchTranScript reports whether s is a recharge vout a step-2 tx
// is allowed to add on top of the outputs copied from sendToTxHexData
// (spec.md 4.C).
func IsCoinBranchTranScript(s Script) bool {
	data, ops, err := tokenize(s)
	if err != nil {
		return false
	}
	if len(ops) == 2 && ops[0] == OP_TRANS_BRANCH && len(data[1]) == 32 {
		return true
	}
	return len(ops) == 2 && ops[0] == txscript.OP_RETURN && ops[1] == OP_TRANS_BRANCH
}

// IsContract reports whether s is a smart-contract marked script.
func IsContract(s Script) bool {
	return len(s) > 0 && s[0] == OP_CONTRACT
}

// IsContractChange reports whether s is a contract-change vout, i.e. a
// contract-marked script carrying the change subtype tag (second byte).
func IsContractChange(s Script) bool {
	return len(s) > 1 && s[0] == OP_CONTRACT && s[1] == 0x01
}

// EqualScript is a small helper used by the revert/equality checks of 4.C.
func EqualScript(a, b Script) bool {
	return bytes.Equal(a, b)
}

// Uint32ToBytes is a fixed-width little-endian encoding for key derivation
// helpers that need to serialize a vout index (e.g. mine-coin outpoint
// hashing in 4.D lock/unlock checks).
func Uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// PubKeyHash returns the HASH160 of a serialized public key, the value
// embedded in mortgage/mine-coin scripts.
func PubKeyHash(pubKey []byte) []byte {
	return btcutil.Hash160(pubKey)
}
