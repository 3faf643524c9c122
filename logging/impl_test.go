package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", DEBUG, true, NewWriterAppender(notStdout))

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:60	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:64	impl infof log`)

	logger.Infow("impl logw", "key", "value", "BasicStruct", BasicStruct{1, "alice"})
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:68	impl logw	{"BasicStruct":{"X":1},"key":"value"}`)

	logger.Sublogger("sub").Warn("sub warn")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	impl.sub	logging/impl_test.go:72	sub warn`)
}

func TestAsZap(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("impl", INFO, true, NewWriterAppender(notStdout))

	zapLogger := logger.AsZap()
	zapLogger.Infow("zap logw", "key", "value")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:82	zap logw	{"key":"value"}`)

	zapLogger.With("region", "tl").Warn("zap with")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	impl	logging/impl_test.go:86	zap with	{"region":"tl"}`)

	zapLogger.Debug("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	// the zap logger follows level changes on the logger it came from
	logger.SetLevel(DEBUG)
	zapLogger.Debug("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("odd fields", "lonely")
	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["error"], test.ShouldEqual, `unpaired log key "lonely"`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("filtered", WARN, true, NewWriterAppender(notStdout))

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Error("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "now kept")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("encoded image", "mime", "image/jpeg", "bytes", 42)
	logger.Debugf("decoded %dx%d", 4, 4)

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("encoded image").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterField(zap.String("mime", "image/jpeg")).Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("decoded 4x4").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, WARN.String(), test.ShouldEqual, "Warn")
	test.That(t, Level(7).String(), test.ShouldEqual, "Level(7)")
	test.That(t, levelFromZap(zapcore.FatalLevel), test.ShouldEqual, ERROR)
	test.That(t, levelFromZap(zapcore.InfoLevel), test.ShouldEqual, INFO)
}

func TestGlobalLogger(t *testing.T) {
	previous := Global()
	defer ReplaceGlobal(previous)

	notStdout := &bytes.Buffer{}
	logger := NewBlankLogger("global")
	logger.AddAppender(NewWriterAppender(notStdout))
	ReplaceGlobal(logger)

	Global().Debugw("via global", "n", 1)
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "global")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, `{"n":1}`)
}
