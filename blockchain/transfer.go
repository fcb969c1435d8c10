package blockchain

import (
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// GetBranchChainOut sums every step-1 vout scripted as a cross-chain
// transfer (spec.md 4.C: "OP_TRANS_BRANCH <branchHash>" or "OP_RETURN
// OP_TRANS_BRANCH"), the transfer amount a destination chain's step-2 tx
// must match.
func GetBranchChainOut(step1 Tx) common.Amount {
	var total common.Amount
	for _, o := range step1.Vout() {
		if IsCoinBranchTranScript(o.ScriptPubKey) {
			total += o.Value
		}
	}
	return total
}

// ComputeTxHash is the byte-exact canonical-serialization hash hook
// RevertTransaction needs to produce a comparable hash for a reconstructed
// tx. The base engine owns the real codec (spec.md 1, Non-goals); this
// module only calls it.
var ComputeTxHash func(*MutableTx) common.Hash256

func hashOf(tx *MutableTx) common.Hash256 {
	if ComputeTxHash != nil {
		return ComputeTxHash(tx)
	}
	return tx.Hash()
}

func cloneTx(tx Tx) *MutableTx {
	m := &MutableTx{
		TxHash:                   tx.Hash(),
		FBranchCreate:            tx.IsBranchCreate(),
		FBranchChainTransStep1:   tx.IsBranchChainTransStep1(),
		FBranchChainTransStep2:   tx.IsBranchChainTransStep2(),
		FMortgage:                tx.IsMortgage(),
		FSyncBranchInfo:          tx.IsSyncBranchInfo(),
		FRedeemMortgageStatement: tx.IsRedeemMortgageStatement(),
		FReport:                  tx.IsReport(),
		FProve:                   tx.IsProve(),
		FReportReward:            tx.IsReportReward(),
		FLockMortgageMineCoin:    tx.IsLockMortgageMineCoin(),
		FUnLockMortgageMineCoin:  tx.IsUnLockMortgageMineCoin(),
		FSmartContract:           tx.IsSmartContract(),
		FCallContract:            tx.IsCallContract(),
		FCoinBase:                tx.IsCoinBase(),
		From:                     tx.FromBranchId(),
		SendTo:                   tx.SendToBranchId(),
		In:                       tx.InAmount(),
		SendToHexData:            tx.SendToTxHexData(),
		Branch:                   tx.BranchBlockInfo(),
		Report:                   tx.ReportData(),
		Prove:                    tx.ProveData(),
		Proof:                    tx.PMT(),
		ReportTxHash:             tx.ReportTxId(),
		ProveTxHash:              tx.ProveTxId(),
		CoinPreoutHash256:        tx.CoinPreoutHash(),
		Step1Hash:                tx.Step1TxHash(),
		ContractAddress:          tx.ContractAddr(),
		ContractOutAmt:           tx.ContractOut(),
	}
	m.VinList = append([]TxIn(nil), tx.Vin()...)
	m.VoutList = append([]TxOut(nil), tx.Vout()...)
	return m
}

// RevertTransaction deterministically rebuilds the tx a destination chain's
// step-2 construction must hash-match back to (spec.md 4.C). With
// fDeepRevert it additionally blanks the fromTx fields the original step-1
// carried before constructing the step-2 the way the miner would have seen
// it.
func RevertTransaction(tx Tx, fromTx Tx, fDeepRevert bool) *MutableTx {
	m := cloneTx(tx)

	if fDeepRevert && fromTx != nil {
		// Clear fromTx bytes; blank the mortgage vout[0] script if fromTx was
		// a mortgage; reset pPMT to empty for branch destinations.
		m.SendToHexData = ""
		if fromTx.IsMortgage() && len(m.VoutList) > 0 {
			m.VoutList[0] = TxOut{Value: m.VoutList[0].Value, ScriptPubKey: nil}
		}
		if !common.IsMainBranch(m.From) {
			m.Proof = nil
		}
	}

	switch {
	case m.FBranchChainTransStep2 && !common.IsMainBranch(m.From):
		// Replace vin with the single null input a branch-originated step-2
		// draws from the recharge pool with, and drop branch-recharge vouts.
		m.VinList = []TxIn{{PrevOut: common.OutPoint{}, ScriptSig: nil}}
		kept := m.VoutList[:0:0]
		for _, o := range m.VoutList {
			if !IsCoinBranchTranScript(o.ScriptPubKey) {
				kept = append(kept, o)
			}
		}
		m.VoutList = kept

	case m.FSmartContract:
		keptVin := m.VinList[:0:0]
		for _, in := range m.VinList {
			if !IsContract(in.ScriptSig) {
				keptVin = append(keptVin, in)
			}
		}
		m.VinList = keptVin
		keptVout := m.VoutList[:0:0]
		for _, o := range m.VoutList {
			if !IsContractChange(o.ScriptPubKey) {
				keptVout = append(keptVout, o)
			}
		}
		m.VoutList = keptVout
	}

	m.TxHash = hashOf(m)
	return m
}

// decodeHexTx is the codec hook for step-1's committed sendToTxHexData
// payload. External collaborator per spec.md 1 Non-goals.
var decodeHexTx func(hexStr string) (Tx, error)

// Step1Fetcher is the component G seam CheckBranchTransaction uses to fetch
// a step-1 tx by hash from its origin chain (spec.md 4.C step 6).
type Step1Fetcher func(fromBranchId common.BranchId, txHash common.Hash256) (step1Raw []byte, confirmations int64, err error)

// CheckBranchTransaction verifies a step-2 tx against its originating
// step-1 (spec.md 4.C "Verification"). fetch is the component G call used
// to retrieve step-1 from the source chain; it must be invoked outside the
// main validation lock (spec.md 5).
func CheckBranchTransaction(thisBranchId common.BranchId, step2 Tx, fetch Step1Fetcher) *Reject {
	if !step2.IsBranchChainTransStep2() {
		return newReject(RejectMalformed, "not-step2-tx", "tx is not IsBranchChainTransStep2")
	}
	if step2.FromBranchId() == thisBranchId {
		return newReject(RejectMalformed, "step2-self-transfer", "step2.fromBranchId equals this chain's branchId")
	}

	step1Raw, confirmations, err := fetch(step2.FromBranchId(), step2.Step1TxHash())
	if err != nil {
		return newReject(RejectRpcFailure, "step1-fetch-failed", "unable to fetch step1 tx from origin chain: "+err.Error())
	}
	step1, err := decodeTxHook(step1Raw)
	if err != nil {
		return newReject(RejectMalformed, "step1-undecodable", "fetched step1 bytes do not decode")
	}
	if step1.Hash() != step2.Step1TxHash() {
		return newReject(RejectMalformed, "step1-hash-mismatch", "fetched step1 tx does not re-hash to step2.step1TxHash")
	}
	if confirmations < BranchChainMaturity+1 {
		return newReject(RejectSoftUnknownParent, "step1-not-mature", "step1 tx has not reached BRANCH_CHAIN_MATURITY + 1 confirmations")
	}

	// Mortgage/mine-coin key-id and height equality (spec.md 4.C step 2).
	if step1.IsMortgage() {
		if rej := checkMortgageMineCoinLinkage(step1, step2); rej != nil {
			return rej
		}
	}

	// Reconstruction identity (spec.md 4.C step 3).
	reverted := RevertTransaction(step2, step1, true)
	committed, err := decodeHexTx(step1.SendToTxHexData())
	if err != nil {
		return newReject(RejectMalformed, "step1-commitment-undecodable", "step1.sendToTxHexData does not decode")
	}
	if reverted.Hash() != committed.Hash() {
		return newReject(RejectMalformed, "step2-reconstruction-mismatch", "RevertTransaction(step2, step1, true).hash != decode(step1.sendToTxHexData).hash")
	}

	// Amount conservation (spec.md 4.C step 4).
	branchOut := GetBranchChainOut(step1)
	if step2.InAmount() != branchOut {
		return newReject(RejectMalformed, "step2-amount-mismatch", "step2.inAmount != GetBranchChainOut(step1)")
	}
	if !common.MoneyRange(step2.InAmount()) {
		return newReject(RejectMalformed, "step2-amount-out-of-range", "step2.inAmount out of MoneyRange")
	}

	// nOrginalOut accounting (spec.md 4.C step 5).
	var nOrginalOut common.Amount
	for _, o := range step2.Vout() {
		if step2.FromBranchId() != common.MainBranchID && IsCoinBranchTranScript(o.ScriptPubKey) {
			continue
		}
		nOrginalOut += o.Value
	}
	if nOrginalOut > step2.InAmount() {
		return newReject(RejectMalformed, "step2-value-out-exceeds-in", "GetValueOut larger than inAmount")
	}

	return nil
}

// checkMortgageMineCoinLinkage recovers (keyid, height) from step1's
// OP_MINE_BRANCH_MORTGAGE vout and from step2's single OP_MINE_BRANCH_COIN
// vout and requires equality of both fields (spec.md 4.C step 2).
func checkMortgageMineCoinLinkage(step1, step2 Tx) *Reject {
	var mortgageKeyHash []byte
	var mortgageHeight int64
	found := false
	for _, o := range step1.Vout() {
		if branchId, height, pkh, ok := ParseMortgageScript(o.ScriptPubKey); ok {
			_ = branchId
			mortgageKeyHash, mortgageHeight, found = pkh, height, true
			break
		}
	}
	if !found {
		return newReject(RejectMalformed, "step1-not-mortgage-vout", "step1 is IsMortgage but has no OP_MINE_BRANCH_MORTGAGE vout")
	}

	var coinKeyHash []byte
	var coinHeight int64
	coinFound := false
	for _, o := range step2.Vout() {
		if fromTxId, height, pkh, ok := ParseMineCoinScript(o.ScriptPubKey); ok {
			_ = fromTxId
			if coinFound {
				return newReject(RejectMalformed, "step2-multiple-minecoin-vouts", "step2 has more than one OP_MINE_BRANCH_COIN vout")
			}
			coinKeyHash, coinHeight, coinFound = pkh, height, true
		}
	}
	if !coinFound {
		return newReject(RejectMalformed, "step2-not-minecoin-vout", "step2 has no OP_MINE_BRANCH_COIN vout")
	}

	if mortgageHeight != coinHeight {
		return newReject(RejectMalformed, "minecoin-height-mismatch", "mine-coin height does not match mortgage height")
	}
	if !bytesEqual(mortgageKeyHash, coinKeyHash) {
		return newReject(RejectMalformed, "minecoin-keyid-mismatch", "mine-coin pubkey hash does not match mortgage pubkey hash")
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
