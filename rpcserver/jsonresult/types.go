package jsonresult

// Package jsonresult holds the wire shapes this node's inbound JSON-RPC API
// returns, mirroring the teacher's convention of keeping result types
// separate from the handlers that build them.

// SubmitBranchBlockInfoResult answers submitbranchblockinfo (spec.md 6.3).
// CommitRejectReason is empty on success.
type SubmitBranchBlockInfoResult struct {
	CommitRejectReason string `json:"commit_reject_reason,omitempty"`
}

// BranchChainTransactionResult answers getbranchchaintransaction (spec.md
// 4.C step 6, 6.3): the step-1 tx's raw hex and how many confirmations it has
// on this chain.
type BranchChainTransactionResult struct {
	Hex           string `json:"hex"`
	Confirmations int64  `json:"confirmations"`
}

// MakeBranchTransactionResult answers makebranchtransaction (spec.md 6.3).
type MakeBranchTransactionResult struct {
	Result string `json:"result"`
}

// RedeemMortgageCoinResult answers redeemmortgagecoin (spec.md 4.D step 4).
type RedeemMortgageCoinResult struct {
	Result string `json:"result"`
}

// ReportProveTxDataResult answers getreporttxdata / getprovetxdata (spec.md
// 4.D lock/unlock paths, 6.3): the tx's raw hex, its confirmation count, the
// mine-coin outpoint hash it points at, and the branch it targets.
type ReportProveTxDataResult struct {
	TxHex                string `json:"txhex"`
	Confirmations        int64  `json:"confirmations"`
	PreMineCoinVoutHash  string `json:"preminecoinvouthash"`
	ReportedBranchIdHex  string `json:"reportedbranchid"`
}
