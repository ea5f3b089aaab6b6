package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// testAppender logs through `tb.Log` so each line is attributed to the test that produced it, which keeps
// output of parallel tests apart.
type testAppender struct {
	tb      testing.TB
	encoder zapcore.Encoder
}

// NewTestAppender returns an appender that writes console formatted lines to tb.
func NewTestAppender(tb testing.TB) Appender {
	cfg := consoleEncoderConfig()
	cfg.SkipLineEnding = true
	return &testAppender{tb: tb, encoder: zapcore.NewConsoleEncoder(cfg)}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	buf, err := tapp.encoder.EncodeEntry(entry, fields)
	if err != nil {
		tapp.tb.Log(entry.Level.CapitalString(), entry.LoggerName, entry.Message)
		return err
	}
	defer buf.Free()
	tapp.tb.Log(buf.String())
	return nil
}

// Sync is a no-op.
func (tapp *testAppender) Sync() error {
	return nil
}
