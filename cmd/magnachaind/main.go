package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/chenzhuo112/MagnaChain-dev-master/blockchain"
	"github.com/chenzhuo112/MagnaChain-dev-master/common"
	"github.com/chenzhuo112/MagnaChain-dev-master/dataaccessobject/statedb"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcbridge"
	"github.com/chenzhuo112/MagnaChain-dev-master/rpcserver"
)

func buildLogger(cfg *daemonConfig) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err == nil {
			zcfg.Level = lvl
		}
	}
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
	}
	base, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Println("logger init error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	blockchain.InitLogger(logger)
	statedb.InitLogger(logger)
	rpcbridge.InitLogger(logger)

	branchId := common.MainBranchID
	if cfg.BranchId != "" {
		branchId = common.HashBytes([]byte(cfg.BranchId))
	}

	db, err := statedb.NewStateDB(filepath.Join(cfg.DataDir, "branchdb"))
	if err != nil {
		logger.Fatalw("failed to open statedb", "error", err)
	}
	defer db.Close()

	rpcMan := rpcbridge.NewBranchChainMan()
	rpcMan.Init(cfg.MainChainConfig, cfg.BranchConfigs)

	ctx := blockchain.NewChainCtx(branchId, db, rpcMan)
	ctx.VMPool = blockchain.NewContractVMPool(0)
	defer ctx.VMPool.Close()

	// The base UTXO/script engine this module is embedded into owns the
	// canonical transaction codec (spec.md 1, Non-goals). A standalone
	// daemon build has no such engine to call into; wiring a real codec here
	// is the embedding host's job, done through blockchain.SetTxCodecHooks
	// before any RPC traffic is served.

	srv := rpcserver.NewServer(ctx, logger)
	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Infow("rpcserver listening", "addr", cfg.ListenAddr, "branchId", branchId.String())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("rpcserver stopped", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, closing down")
	_ = httpSrv.Close()
}
