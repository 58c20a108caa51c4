package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap logger writing to writer at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func New(writer io.Writer, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	// Keep keys consistent with the rest of our log pipeline.
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.LevelKey = "level"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(writer),
		lvl,
	)
	return zap.New(core, zap.AddCaller())
}

// Init builds the process logger and installs it as the zap global.
func Init(writer io.Writer, level string) *zap.Logger {
	l := New(writer, level)
	zap.ReplaceGlobals(l)
	return l
}
