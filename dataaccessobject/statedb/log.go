package statedb

import "go.uber.org/zap"

// StatedbLogger follows the teacher's per-package logger convention
// (blockchain/log.go, netsync/log.go): a package-level sugared logger set
// once at startup and named for this package alone.
type StatedbLogger struct {
	log *zap.SugaredLogger
}

func (l *StatedbLogger) Init(inst *zap.SugaredLogger) {
	l.log = inst
}

// Logger is the package-wide instance other files in this package log through.
var Logger = StatedbLogger{}

var logger *zap.SugaredLogger

// InitLogger wires this package's logger off the daemon's base logger.
func InitLogger(baseLogger *zap.SugaredLogger) {
	logger = baseLogger.Named("statedb")
	Logger.Init(logger)
}
