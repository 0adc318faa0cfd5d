package predict

import "go.uber.org/zap"

// logger is a nop by default so the package stays quiet inside libraries;
// binaries install a real logger via SetLogger.
var logger = zap.NewNop()

// SetLogger replaces the package logger. A nil argument restores the nop
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
