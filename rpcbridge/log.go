package rpcbridge

import "go.uber.org/zap"

// RpcBridgeLogger follows the teacher's per-package logger convention
// (blockchain/log.go, statedb/log.go): a package-level sugared logger set
// once at startup and named for this package alone.
type RpcBridgeLogger struct {
	log *zap.SugaredLogger
}

func (l *RpcBridgeLogger) Init(inst *zap.SugaredLogger) {
	l.log = inst
}

// Logger is the package-wide instance other files in this package log through.
var Logger = RpcBridgeLogger{}

var logger *zap.SugaredLogger

// InitLogger wires this package's logger off the daemon's base logger.
// CallRPC does not log and attaches no request-scoped UUID to its calls.
func InitLogger(baseLogger *zap.SugaredLogger) {
	logger = baseLogger.Named("rpcbridge")
	Logger.Init(logger)
}
