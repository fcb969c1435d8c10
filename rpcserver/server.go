package rpcserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chenzhuo112/MagnaChain-dev-master/blockchain"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcserver/rpcservice"
)

// jsonRpcRequest is the envelope a peer chain's rpcbridge.CallRPC sends
// (spec.md 4.G): {"jsonrpc":"2.0","id":..,"method":..,"params":[..]}.
type jsonRpcRequest struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type jsonRpcResponse struct {
	Result interface{}        `json:"result"`
	Error  *rpcservice.RPCError `json:"error"`
	Id     int                `json:"id"`
}

// handlerFunc is one inbound method's implementation: decode params, run the
// matching blockchain.* check against ctx, return a jsonresult shape.
type handlerFunc func(ctx *blockchain.ChainCtx, params json.RawMessage) (interface{}, *rpcservice.RPCError)

// Server is the inbound JSON-RPC API a peer chain's rpcbridge.CallRPC talks
// to (spec.md 4.G, 6.3). One Server serves one node's ChainCtx; it holds no
// package-level state of its own (spec.md 9).
type Server struct {
	ctx      *blockchain.ChainCtx
	handlers map[string]handlerFunc
	log      *zap.SugaredLogger
}

// NewServer wires the six inbound methods of spec.md 6.3 to ctx.
func NewServer(ctx *blockchain.ChainCtx, log *zap.SugaredLogger) *Server {
	s := &Server{ctx: ctx, log: log.Named("rpcserver")}
	s.handlers = map[string]handlerFunc{
		"submitbranchblockinfo":   handleSubmitBranchBlockInfo,
		"getbranchchaintransaction": handleGetBranchChainTransaction,
		"makebranchtransaction":   handleMakeBranchTransaction,
		"redeemmortgagecoin":      handleRedeemMortgageCoin,
		"getreporttxdata":         handleGetReportTxData,
		"getprovetxdata":          handleGetProveTxData,
	}
	return s
}

// Router builds the gorilla/mux router the daemon listens with, accepting
// both the bare endpoint and the wallet-scoped endpoint rpcbridge.CallRPC
// may target (spec.md 4.G: "/" or "/wallet/<name>").
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveHTTP).Methods(http.MethodPost)
	r.HandleFunc("/wallet/{wallet}", s.serveHTTP).Methods(http.MethodPost)
	return r
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req jsonRpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, 0, rpcservice.NewRPCError(rpcservice.RPCInvalidRequestError, err))
		return
	}

	h, ok := s.handlers[req.Method]
	if !ok {
		s.writeError(w, req.Id, rpcservice.NewRPCError(rpcservice.RPCInvalidRequestError, nil))
		return
	}

	result, rpcErr := h(s.ctx, req.Params)
	if rpcErr != nil {
		s.log.Errorw("rpc method failed", "method", req.Method, "error", rpcErr.Error())
		s.writeError(w, req.Id, rpcErr)
		return
	}
	s.writeResult(w, req.Id, result)
}

func (s *Server) writeResult(w http.ResponseWriter, id int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jsonRpcResponse{Result: result, Id: id})
}

func (s *Server) writeError(w http.ResponseWriter, id int, rpcErr *rpcservice.RPCError) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jsonRpcResponse{Error: rpcErr, Id: id})
}
