package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// ScriptVerifier runs standard script verification for one input against
// the previous output it spends, with flags P2SH|DERSIG|CLTV|CSV|WITNESS|
// NULLDUMMY (spec.md 4.E.1). The actual script interpreter is the base
// engine's job (spec.md 1, Non-goals); this module only calls it.
type ScriptVerifier func(tx Tx, vinIndex int, prevOut TxOut) bool

// ProveDeps bundles the external collaborators CheckTransactionProveWithProveData
// and the coinbase/tx prove checks need.
type ProveDeps struct {
	VerifyScript ScriptVerifier
	// ResolveContractAddr reports whether prevOut's scriptPubKey is
	// contract-marked and resolves to contractAddr, the exception clause of
	// spec.md 4.E.1 ("acceptable only when T.IsCallContract() and the vout
	// is contract-marked and resolves to T.contractAddr").
	ResolveContractAddr func(prevOut TxOut, contractAddr []byte) bool
}

// CheckTransactionProveWithProveData is spec.md 4.E.1: verifies that tx T's
// inputs are each backed by an SPV-proven previous output from branchData's
// header store, sums fees, and checks the contract in/out balance.
func CheckTransactionProveWithProveData(T Tx, P []ProveDataItem, branchData *BranchData, jumpFirst bool, deps ProveDeps) (fee common.Amount, rej *Reject) {
	if T.IsCoinBase() {
		return 0, newReject(RejectMalformed, "prove-tx-is-coinbase", "proved tx must not be a coinbase")
	}
	b := 0
	if jumpFirst {
		b = 1
	}
	vin := T.Vin()
	if len(P) != len(vin)+b {
		return 0, newReject(RejectMalformed, "prove-data-length-mismatch", "prove-data vector length does not match vin count")
	}

	var sumIn, sumOut common.Amount
	var nContractIn, nContractOut common.Amount
	prevTxs := make([]Tx, len(vin))

	for i := range vin {
		item := P[i+b]
		prev, err := decodeProveTx(item.TxBytes)
		if err != nil {
			return 0, newReject(RejectMalformed, "prove-data-undecodable", "prove-data tx bytes do not decode")
		}
		prevTxs[i] = prev

		if !branchData.HasBlock(item.BlockHash) {
			return 0, newReject(RejectSoftUnknownParent, "prove-block-unknown", "prove-data block hash not found in branch header store")
		}
		header, _ := branchData.GetHeader(item.BlockHash)
		if idx := CheckSpvProof(header.MerkleRoot, item.Spv.Pmt, prev.Hash()); idx < 0 {
			return 0, newReject(RejectSpvHard, "prove-bad-spv", "CheckSpvProof failed for prove-data input")
		}

		if prev.Hash() != vin[i].PrevOut.Hash {
			return 0, newReject(RejectMalformed, "prove-prevout-mismatch", "prove-data tx hash does not match vin prevout hash")
		}
		if int(vin[i].PrevOut.Index) >= len(prev.Vout()) {
			return 0, newReject(RejectMalformed, "prove-prevout-index-oob", "vin prevout index exceeds prove-data tx's vout count")
		}
		prevOut := prev.Vout()[vin[i].PrevOut.Index]

		if deps.VerifyScript != nil && !deps.VerifyScript(T, i, prevOut) {
			exempt := T.IsCallContract() && IsContract(prevOut.ScriptPubKey) &&
				deps.ResolveContractAddr != nil && deps.ResolveContractAddr(prevOut, T.ContractAddr())
			if !exempt {
				return 0, newReject(RejectSignature, "prove-script-verify-failed", "script verification failed for proved tx input")
			}
		}

		if IsContract(prevOut.ScriptPubKey) {
			nContractIn += prevOut.Value
		}
		sumIn += prevOut.Value
	}

	for _, vout := range T.Vout() {
		if !common.MoneyRange(vout.Value) {
			return 0, newReject(RejectMalformed, "prove-vout-out-of-range", "proved tx vout value out of MoneyRange")
		}
		sumOut += vout.Value
		if !common.MoneyRange(sumOut) {
			return 0, newReject(RejectMalformed, "prove-vout-sum-out-of-range", "proved tx running vout sum out of MoneyRange")
		}
		if IsContractChange(vout.ScriptPubKey) {
			nContractOut += vout.Value
		}
	}

	if nContractIn-nContractOut != T.ContractOut() {
		return 0, newReject(RejectMalformed, "prove-contract-balance-mismatch", "contract in/out delta does not match tx.ContractOut")
	}
	if sumOut > sumIn {
		return 0, newReject(RejectMalformed, "prove-value-out-exceeds-in", "sum(vout) exceeds sum(prev outputs)")
	}
	return sumIn - sumOut, nil
}

// decodeProveTx is the byte-exact codec hook for prove-data tx bytes. The
// base engine owns the canonical transaction codec (spec.md 1, Non-goals);
// this var is the seam a node wires its real decoder into.
var decodeProveTx = func(raw []byte) (Tx, error) {
	return decodeTxHook(raw)
}

// decodeTxHook is overridable by the node wiring code (and by tests).
var decodeTxHook func([]byte) (Tx, error)

// CheckProveReportTx is the prove path for a ReportTx single-tx-cheating
// report (spec.md 4.E "CheckProveReportTx"): the proven tx must hash-match
// the report, SPV-verify against the reported block, and then run
// CheckTransactionProveWithProveData with jumpFirst=true. It does not run
// the contract-data proof hook (CheckProveContractData /
// CorroborateProveExecution) for a smart-contract call, and
// DispatchCrossChainTx does not run it on this path either.
func CheckProveReportTx(branchData *BranchData, reportedHeader BlockHeader, prove *ProveData, deps ProveDeps) (fee common.Amount, proveTx Tx, rej *Reject) {
	if len(prove.Vect) == 0 {
		return 0, nil, newReject(RejectMalformed, "prove-tx-missing-data", "prove tx carries no prove-data vector")
	}
	proveTx, err := decodeProveTx(prove.Vect[0].TxBytes)
	if err != nil {
		return 0, nil, newReject(RejectMalformed, "prove-tx-undecodable", "vectProveData[0].tx does not decode")
	}
	if proveTx.Hash() != prove.TxHash {
		return 0, nil, newReject(RejectMalformed, "prove-tx-hash-mismatch", "deserialized proven tx hash does not match proveData.txHash")
	}
	if idx := CheckSpvProof(reportedHeader.MerkleRoot, prove.Vect[0].Spv.Pmt, prove.TxHash); idx < 0 {
		return 0, nil, newReject(RejectSpvHard, "prove-bad-spv", "CheckSpvProof failed for proven tx against reported block")
	}
	fee, rej = CheckTransactionProveWithProveData(proveTx, prove.Vect, branchData, true, deps)
	if rej != nil {
		return 0, nil, rej
	}
	return fee, proveTx, nil
}

// CheckProveCoinbaseTx is the prove path for ReportCoinbase/ReportMerkleTree
// (spec.md 4.E "CheckProveCoinbaseTx"): rebuilds the block's vtx set from
// pProveData, re-derives its merkle root, and sums fees across every tx
// after the coinbase and the stake tx (vtx[2:]), requiring the coinbase's
// valueOut equal total fees (branches have no block subsidy).
func CheckProveCoinbaseTx(branchData *BranchData, reportedHeader BlockHeader, kind ReportKind, prove *ProveData, deps ProveDeps) *Reject {
	if len(prove.VtxData) < 2 {
		return newReject(RejectMalformed, "prove-vtx-too-short", "coinbase/merkle-tree prove must carry at least [coinbase, stake]")
	}
	vtx := make([]Tx, len(prove.VtxData))
	hashes := make([]common.Hash256, len(prove.VtxData))
	for i, raw := range prove.VtxData {
		tx, err := decodeProveTx(raw)
		if err != nil {
			return newReject(RejectMalformed, "prove-vtx-undecodable", "pProveData vtx entry does not decode")
		}
		vtx[i] = tx
		hashes[i] = tx.Hash()
	}

	switch kind {
	case ReportCoinbase:
		if vtx[0].Hash() != prove.TxHash {
			return newReject(RejectMalformed, "prove-coinbase-hash-mismatch", "vtx[0].hash does not match proveData.txHash")
		}
	case ReportMerkleTree:
		if prove.TxHash != (common.Hash256{}) {
			return newReject(RejectMalformed, "prove-merkletree-txhash-not-null", "proveData.txHash must be null for a merkle-tree prove")
		}
	default:
		return newReject(RejectMalformed, "bad-prove-kind", "CheckProveCoinbaseTx called for an unsupported kind")
	}

	root := computeMerkleRoot(hashes)
	if root != reportedHeader.MerkleRoot {
		return newReject(RejectSpvHard, "prove-merkle-root-mismatch", "rebuilt vtx merkle root does not match the stored header's")
	}

	var totalFees common.Amount
	for i := 2; i < len(vtx); i++ {
		fee, rej := CheckTransactionProveWithProveData(vtx[i], prove.Vect, branchData, false, deps)
		if rej != nil {
			return rej
		}
		totalFees += fee
	}
	if ValueOut(vtx[0]) != totalFees {
		return newReject(RejectMalformed, "prove-coinbase-fee-mismatch", "coinbase valueOut does not equal sum of tx fees")
	}
	return nil
}

// computeMerkleRoot derives the plain (non-partial) merkle root of an
// ordered hash set, the same pairing rule CalcHash / the bitcoin-style full
// tree uses (spec.md 4.A, used here to re-derive a block's root from a
// rebuilt vtx set).
func computeMerkleRoot(hashes []common.Hash256) common.Hash256 {
	if len(hashes) == 0 {
		return common.Hash256{}
	}
	level := make([]common.Hash256, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		var next []common.Hash256
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, common.HashBytes(level[i][:], level[i+1][:]))
			} else {
				next = append(next, common.HashBytes(level[i][:], level[i][:]))
			}
		}
		level = next
	}
	return level[0]
}
