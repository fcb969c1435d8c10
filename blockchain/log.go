package blockchain

import "go.uber.org/zap"

// BlockChainLogger follows the teacher's per-package logger convention
// (statedb/log.go, rpcbridge/log.go): a package-level sugared logger set
// once at startup and named for this package alone.
type BlockChainLogger struct {
	log *zap.SugaredLogger
}

func (l *BlockChainLogger) Init(inst *zap.SugaredLogger) {
	l.log = inst
}

// Logger is the package-wide instance other files in this package log through.
var Logger = BlockChainLogger{}

var logger *zap.SugaredLogger

// InitLogger wires this package's logger off the daemon's base logger.
func InitLogger(baseLogger *zap.SugaredLogger) {
	logger = baseLogger.Named("blockchain")
	Logger.Init(logger)
}
