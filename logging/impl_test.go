package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type partRecord struct {
	ID   int
	Name string
	tick int
}

type boundsRecord struct {
	Min [3]float64
	Max [3]float64
}

// readLine returns the tab separated columns of the next console log line: time, level, logger name,
// caller, message and, when present, the JSON encoded fields.
func readLine(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimSuffix(line, "\n"), "\t")
}

func fieldsOf(t *testing.T, column string) map[string]any {
	t.Helper()
	fields := map[string]any{}
	test.That(t, json.Unmarshal([]byte(column), &fields), test.ShouldBeNil)
	return fields
}

func TestConsoleOutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newImpl("tree", DEBUG, true, NewWriterAppender(buf))

	logger.Infof("optimized %d terrain parts", 12)
	columns := readLine(t, buf)
	test.That(t, columns, test.ShouldHaveLength, 5)
	ts, err := time.Parse(DefaultTimeFormatStr, columns[0])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ts.Location(), test.ShouldEqual, time.UTC)
	test.That(t, columns[1], test.ShouldEqual, "INFO")
	test.That(t, columns[2], test.ShouldEqual, "tree")
	test.That(t, columns[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, columns[4], test.ShouldEqual, "optimized 12 terrain parts")

	// Unexported fields are not serialized.
	logger.Debugw("moved", "part", partRecord{ID: 1, Name: "wheel", tick: 9},
		"bounds", boundsRecord{Max: [3]float64{1, 2, 3}})
	columns = readLine(t, buf)
	test.That(t, columns, test.ShouldHaveLength, 6)
	test.That(t, columns[1], test.ShouldEqual, "DEBUG")
	test.That(t, columns[4], test.ShouldEqual, "moved")
	test.That(t, fieldsOf(t, columns[5]), test.ShouldResemble, map[string]any{
		"part":   map[string]any{"ID": 1., "Name": "wheel"},
		"bounds": map[string]any{"Min": []any{0., 0., 0.}, "Max": []any{1., 2., 3.}},
	})

	// An unpaired key is reported on its own line before the message.
	logger.Errorw("split failed", "physical")
	columns = readLine(t, buf)
	test.That(t, columns[1], test.ShouldEqual, "ERROR")
	test.That(t, columns[4], test.ShouldEqual, "Ignored key without a value.")
	test.That(t, fieldsOf(t, columns[5]), test.ShouldResemble, map[string]any{"ignored": "physical"})
	columns = readLine(t, buf)
	test.That(t, columns[4], test.ShouldEqual, "split failed")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
}

func TestAddAppender(t *testing.T) {
	logger := NewBlankLogger("cli")
	logger.Warn("nowhere to go")

	buf := &bytes.Buffer{}
	logger.AddAppender(NewWriterAppender(buf))
	logger.SetLevel(WARN)
	logger.Info("dropped")
	logger.Warnw("kept", "tick", 3)
	columns := readLine(t, buf)
	test.That(t, columns[1], test.ShouldEqual, "WARN")
	test.That(t, columns[2], test.ShouldEqual, "cli")
	test.That(t, columns[4], test.ShouldEqual, "kept")
	test.That(t, fieldsOf(t, columns[5]), test.ShouldResemble, map[string]any{"tick": 3.})
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	// A sublogger writes to the appenders its parent had when it was created.
	sub := logger.Sublogger("stats")
	sub.Error("from sub")
	columns = readLine(t, buf)
	test.That(t, columns[2], test.ShouldEqual, "cli.stats")
	test.That(t, columns[3], test.ShouldStartWith, "logging/impl_test.go:")
}

func TestLevelFiltering(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Errorf("kept %d", 2)
	test.That(t, observed.Len(), test.ShouldEqual, 2)
	test.That(t, observed.FilterMessage("kept").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("kept 2").All()[0].Level, test.ShouldEqual, zapcore.ErrorLevel)
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	world := logger.Sublogger("world")
	tree := world.Sublogger("terrain")

	tree.Infow("improved", "passes", 5)
	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "world.terrain")
	test.That(t, entries[0].ContextMap()["passes"], test.ShouldEqual, int64(5))

	// Levels are copied, not shared.
	tree.SetLevel(ERROR)
	test.That(t, world.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
		isErr    bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"Warning", WARN, false},
		{"error", ERROR, false},
		{"verbose", DEBUG, true},
	} {
		t.Run(tc.input, func(t *testing.T) {
			level, err := LevelFromString(tc.input)
			if tc.isErr {
				test.That(t, err, test.ShouldNotBeNil)
				return
			}
			test.That(t, err, test.ShouldBeNil)
			test.That(t, level, test.ShouldEqual, tc.expected)
		})
	}
}

func TestLevelJSON(t *testing.T) {
	var cfg struct {
		Level Level `json:"level"`
	}
	test.That(t, json.Unmarshal([]byte(`{"level":"warn"}`), &cfg), test.ShouldBeNil)
	test.That(t, cfg.Level, test.ShouldEqual, WARN)

	out, err := json.Marshal(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `{"level":"warn"}`)

	test.That(t, json.Unmarshal([]byte(`{"level":"loud"}`), &cfg), test.ShouldNotBeNil)
}

func TestGlobalLogger(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger, observed := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	Global().Info("through global")
	test.That(t, observed.FilterMessage("through global").Len(), test.ShouldEqual, 1)
}
