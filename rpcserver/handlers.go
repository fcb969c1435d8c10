package rpcserver

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/chenzhuo112/MagnaChain-dev-master/blockchain"
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcbridge"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcserver/jsonresult"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcserver/rpcservice"
)

func positionalParams(raw json.RawMessage) ([]json.RawMessage, *rpcservice.RPCError) {
	var params []json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}
	return params, nil
}

func stringParam(p json.RawMessage) (string, *rpcservice.RPCError) {
	var s string
	if err := json.Unmarshal(p, &s); err != nil {
		return "", rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}
	return s, nil
}

func hashParam(p json.RawMessage) (common.Hash256, *rpcservice.RPCError) {
	s, rerr := stringParam(p)
	if rerr != nil {
		return common.Hash256{}, rerr
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return common.Hash256{}, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}
	return *h, nil
}

// confirmationsFor reports how many confirmations blockHash has on branchId,
// the quantity every one of this server's "fetch a cross-chain tx" methods
// must answer alongside the raw hex (spec.md 4.C step 6, 4.D lock/unlock).
func confirmationsFor(ctx *blockchain.ChainCtx, branchId common.BranchId, blockHash common.Hash256) int64 {
	bd, err := ctx.Store.GetBranchData(branchId)
	if err != nil {
		return 0
	}
	height, _, ok := bd.GetBranchBlockData(blockHash)
	if !ok {
		return 0
	}
	return bd.Height() - height + 1
}

// handleSubmitBranchBlockInfo is spec.md 6.3 submitbranchblockinfo: a branch
// miner pushes its newly mined header to the main chain. params: [hexTx].
func handleSubmitBranchBlockInfo(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	params, rerr := positionalParams(raw)
	if rerr != nil || len(params) != 1 {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	hexTx, rerr := stringParam(params[0])
	if rerr != nil {
		return nil, rerr
	}
	tx, err := blockchain.DecodeTx(hexTx)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}

	result := jsonresult.SubmitBranchBlockInfoResult{}
	if rej := blockchain.DispatchCrossChainTx(tx, ctx, nil); rej != nil {
		result.CommitRejectReason = rej.Error()
		return result, nil
	}
	if info := tx.BranchBlockInfo(); info != nil {
		_ = statedb.StoreRawTx(ctx.DB, info.BranchId, tx.Hash(), statedb.RawTxRecord{BlockHash: info.Header.Hash(), RawHex: hexTx})
	}
	return result, nil
}

// handleGetBranchChainTransaction is spec.md 6.3 getbranchchaintransaction,
// the component G call CheckBranchTransaction's Step1Fetcher resolves
// against a peer chain. params: [txid].
func handleGetBranchChainTransaction(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	params, rerr := positionalParams(raw)
	if rerr != nil || len(params) != 1 {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	txid, rerr := hashParam(params[0])
	if rerr != nil {
		return nil, rerr
	}
	rec, ok, err := statedb.GetRawTx(ctx.DB, ctx.BranchId, txid)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInternalError, err)
	}
	if !ok {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	return jsonresult.BranchChainTransactionResult{
		Hex:           rec.RawHex,
		Confirmations: confirmationsFor(ctx, ctx.BranchId, rec.BlockHash),
	}, nil
}

// handleMakeBranchTransaction is spec.md 6.3 makebranchtransaction: a source
// chain pushes a step-2 tx to its destination chain. params: [hexTx].
func handleMakeBranchTransaction(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	params, rerr := positionalParams(raw)
	if rerr != nil || len(params) != 1 {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	hexTx, rerr := stringParam(params[0])
	if rerr != nil {
		return nil, rerr
	}
	tx, err := blockchain.DecodeTx(hexTx)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}

	fetch := func(fromBranchId common.BranchId, txHash common.Hash256) ([]byte, int64, error) {
		// Origin chain's step-1 tx lives in its own statedb; this node only
		// ever holds it locally when it also serves fromBranchId (e.g. the
		// main chain fetching a branch's own step-1). Otherwise the origin
		// chain is a genuine peer reached through rpcbridge, per component G.
		if rec, ok, err := statedb.GetRawTx(ctx.DB, fromBranchId, txHash); err == nil && ok {
			raw, decErr := hex.DecodeString(rec.RawHex)
			if decErr != nil {
				return nil, 0, decErr
			}
			return raw, confirmationsFor(ctx, fromBranchId, rec.BlockHash), nil
		}
		cfg, ok := ctx.Rpc.GetRpcConfig(fromBranchId)
		if !ok {
			return nil, 0, rpcservice.NewRPCError(rpcservice.RPCInternalError, nil)
		}
		peerTx, err := rpcbridge.GetBranchChainTransaction(cfg, txHash)
		if err != nil {
			return nil, 0, err
		}
		raw, decErr := hex.DecodeString(peerTx.Hex)
		if decErr != nil {
			return nil, 0, decErr
		}
		return raw, peerTx.Confirmations, nil
	}

	if rej := blockchain.DispatchCrossChainTx(tx, ctx, fetch); rej != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, rej)
	}
	_ = statedb.StoreRawTx(ctx.DB, ctx.BranchId, tx.Hash(), statedb.RawTxRecord{RawHex: hexTx})
	return jsonresult.MakeBranchTransactionResult{Result: "ok"}, nil
}

// handleRedeemMortgageCoin is spec.md 6.3 redeemmortgagecoin / 4.D step 4.
// params: [coinTxId, 0, hexTx, branchIdHex, hexSpvProof]. The literal middle
// "0" positional argument is accepted and ignored, preserved exactly as the
// peer protocol sends it (spec.md 9). branchIdHex (plain hex of the 32 id
// bytes, as rpcbridge.RedeemMortgageCoin sends it) selects the branch whose
// headers the outstanding-report check reads; hexSpvProof is not read.
func handleRedeemMortgageCoin(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	params, rerr := positionalParams(raw)
	if rerr != nil || len(params) != 5 {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	mortgageFromTxId, rerr := hashParam(params[0])
	if rerr != nil {
		return nil, rerr
	}
	hexTx, rerr := stringParam(params[2])
	if rerr != nil {
		return nil, rerr
	}
	if _, err := blockchain.DecodeTx(hexTx); err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}
	branchIdHex, rerr := stringParam(params[3])
	if rerr != nil {
		return nil, rerr
	}
	branchIdBytes, err := hex.DecodeString(branchIdHex)
	if err != nil || len(branchIdBytes) != len(common.BranchId{}) {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, err)
	}
	var branchId common.BranchId
	copy(branchId[:], branchIdBytes)

	bd, err := ctx.Store.GetBranchData(branchId)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInternalError, err)
	}
	deps := blockchain.RedeemDeps{
		BranchData:  bd,
		ReportCache: ctx.ReportCache,
		ReportDB:    &blockchain.StateReportLookup{DB: ctx.DB, Cache: ctx.ReportCache, Bd: bd},
	}
	if rej := blockchain.CheckRedeemMortgageStatement(mortgageFromTxId, true, deps); rej != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, rej)
	}
	return jsonresult.RedeemMortgageCoinResult{Result: "ok"}, nil
}

// handleGetReportTxData is spec.md 6.3 getreporttxdata, the component G leg
// of blockchain.ReportTxFetcher (spec.md 4.D lock path). params: [reportTxId].
func handleGetReportTxData(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	return reportOrProveTxData(ctx, raw, true)
}

// handleGetProveTxData is spec.md 6.3 getprovetxdata, the component G leg of
// blockchain.ProveTxFetcher (spec.md 4.D unlock path). params: [proveTxId].
func handleGetProveTxData(ctx *blockchain.ChainCtx, raw json.RawMessage) (interface{}, *rpcservice.RPCError) {
	return reportOrProveTxData(ctx, raw, false)
}

func reportOrProveTxData(ctx *blockchain.ChainCtx, raw json.RawMessage, isReport bool) (interface{}, *rpcservice.RPCError) {
	params, rerr := positionalParams(raw)
	if rerr != nil || len(params) != 1 {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	txid, rerr := hashParam(params[0])
	if rerr != nil {
		return nil, rerr
	}
	rec, ok, err := statedb.GetRawTx(ctx.DB, common.MainBranchID, txid)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInternalError, err)
	}
	if !ok {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInvalidParamsError, nil)
	}
	tx, err := blockchain.DecodeTx(rec.RawHex)
	if err != nil {
		return nil, rpcservice.NewRPCError(rpcservice.RPCInternalError, err)
	}

	var reportedBranchId common.BranchId
	if isReport {
		if r := tx.ReportData(); r != nil {
			reportedBranchId = r.ReportedBranchId
		}
	} else if p := tx.ProveData(); p != nil {
		reportedBranchId = p.ReportedBranchId
	}

	return jsonresult.ReportProveTxDataResult{
		TxHex:               rec.RawHex,
		Confirmations:       confirmationsFor(ctx, common.MainBranchID, rec.BlockHash),
		PreMineCoinVoutHash: tx.CoinPreoutHash().String(),
		ReportedBranchIdHex: reportedBranchId.String(),
	}, nil
}
