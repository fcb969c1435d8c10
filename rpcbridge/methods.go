package rpcbridge

import (
	"encoding/hex"
	"encoding/json"

	"github.com/chenzhuo112/MagnaChain-dev-master/common"
)

// The six peer-chain methods component G's core consumers call (spec.md
// 6.3). Each wrapper unmarshals JsonResponse.Result into its expected shape,
// surfacing a mismatch as RpcErrProtocol.

// MakeBranchTransaction propagates a step-2 tx to its destination chain.
func MakeBranchTransaction(cfg RpcConfig, hexTx string) error {
	resp, err := CallRPC(cfg, "makebranchtransaction", []interface{}{hexTx})
	if err != nil {
		return err
	}
	var result string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return newRpcError(RpcErrProtocol, "makebranchtransaction: unexpected result shape: %v", err)
	}
	if result != "ok" {
		return newRpcError(RpcErrProtocol, "makebranchtransaction: unexpected result %q", result)
	}
	return nil
}

// BranchChainTransaction is getbranchchaintransaction's result shape.
type BranchChainTransaction struct {
	Hex           string `json:"hex"`
	Confirmations int64  `json:"confirmations"`
}

// GetBranchChainTransaction fetches step-1 from the source chain by txid
// (spec.md 4.C step 6, the component G leg of blockchain.Step1Fetcher).
func GetBranchChainTransaction(cfg RpcConfig, txid common.Hash256) (*BranchChainTransaction, error) {
	resp, err := CallRPC(cfg, "getbranchchaintransaction", []interface{}{txid.String()})
	if err != nil {
		return nil, err
	}
	var out BranchChainTransaction
	if err := json.Unmarshal(resp.Result, &out); err != nil || out.Hex == "" {
		return nil, newRpcError(RpcErrProtocol, "getbranchchaintransaction: unexpected result shape")
	}
	return &out, nil
}

// SubmitBranchBlockInfoResult is submitbranchblockinfo's result shape.
type SubmitBranchBlockInfoResult struct {
	CommitRejectReason string `json:"commit_reject_reason,omitempty"`
}

// SubmitBranchBlockInfo is the main chain accepting a SyncBranchInfo tx a
// branch miner submits (spec.md 4.B, 6.3).
func SubmitBranchBlockInfo(cfg RpcConfig, hexTx string) (*SubmitBranchBlockInfoResult, error) {
	resp, err := CallRPC(cfg, "submitbranchblockinfo", []interface{}{hexTx})
	if err != nil {
		return nil, err
	}
	var out SubmitBranchBlockInfoResult
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, newRpcError(RpcErrProtocol, "submitbranchblockinfo: unexpected result shape: %v", err)
	}
	return &out, nil
}

// RedeemMortgageCoin submits a branch's redemption statement to the main
// chain (spec.md 4.D step 4). The literal "0" second positional parameter
// is preserved exactly as the original source carries it (spec.md 9: its
// purpose is undocumented upstream; it is not reinterpreted).
func RedeemMortgageCoin(cfg RpcConfig, coinTxId common.Hash256, hexTx string, branchId common.BranchId, hexSpvProof string) error {
	_, err := CallRPC(cfg, "redeemmortgagecoin", []interface{}{
		coinTxId.String(), 0, hexTx, hex.EncodeToString(branchId[:]), hexSpvProof,
	})
	return err
}

// ReportTxData is getreporttxdata's result shape (spec.md 4.D lock path,
// 6.3).
type ReportTxData struct {
	TxHex                string `json:"txhex"`
	Confirmations        int64  `json:"confirmations"`
	PreMineCoinVoutHash  string `json:"preminecoinvouthash"`
	ReportedBranchIdHex  string `json:"reportedbranchid"`
}

// GetReportTxData fetches a main-chain report's data for the branch-side
// lock check (spec.md 4.D, blockchain.ReportTxFetcher's component G leg).
func GetReportTxData(cfg RpcConfig, reportTxId common.Hash256) (*ReportTxData, error) {
	resp, err := CallRPC(cfg, "getreporttxdata", []interface{}{reportTxId.String()})
	if err != nil {
		return nil, err
	}
	var out ReportTxData
	if err := json.Unmarshal(resp.Result, &out); err != nil || out.TxHex == "" {
		return nil, newRpcError(RpcErrProtocol, "getreporttxdata: unexpected result shape")
	}
	return &out, nil
}

// ProveTxData is getprovetxdata's result shape (spec.md 4.D unlock path, 6.3).
type ProveTxData struct {
	TxHex               string `json:"txhex"`
	Confirmations       int64  `json:"confirmations"`
	PreMineCoinVoutHash string `json:"preminecoinvouthash"`
	ReportedBranchIdHex string `json:"reportedbranchid"`
}

// GetProveTxData fetches a main-chain prove's data for the branch-side
// unlock check (spec.md 4.D, blockchain.ProveTxFetcher's component G leg).
func GetProveTxData(cfg RpcConfig, proveTxId common.Hash256) (*ProveTxData, error) {
	resp, err := CallRPC(cfg, "getprovetxdata", []interface{}{proveTxId.String()})
	if err != nil {
		return nil, err
	}
	var out ProveTxData
	if err := json.Unmarshal(resp.Result, &out); err != nil || out.TxHex == "" {
		return nil, newRpcError(RpcErrProtocol, "getprovetxdata: unexpected result shape")
	}
	return &out, nil
}
