package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log entry.
type Level int

// The supported levels, from most to least verbose.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "Debug",
	INFO:  "Info",
	WARN:  "Warn",
	ERROR: "Error",
}

// LevelFromString parses one of debug, info, warn (or warning) and error, ignoring case.
func LevelFromString(inp string) (Level, error) {
	lower := strings.ToLower(inp)
	if lower == "warning" {
		return WARN, nil
	}
	for level, name := range levelNames {
		if strings.ToLower(name) == lower {
			return level, nil
		}
	}
	return INFO, errors.Errorf("unknown log level: %q", inp)
}

func (level Level) String() string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(level))
}

// AsZap converts the Level to a zapcore.Level. The two enums share values for the levels they have
// in common.
func (level Level) AsZap() zapcore.Level {
	return zapcore.Level(level)
}

// levelFromZap clamps zap's panic and fatal levels to ERROR.
func levelFromZap(level zapcore.Level) Level {
	switch {
	case level < zapcore.DebugLevel:
		return DEBUG
	case level > zapcore.ErrorLevel:
		return ERROR
	default:
		return Level(level)
	}
}

// AtomicLevel is a Level safe for concurrent use. Copies share the same underlying value.
type AtomicLevel struct {
	val *atomic.Int32
}

// NewAtomicLevelAt returns an AtomicLevel set to initLevel.
func NewAtomicLevelAt(initLevel Level) AtomicLevel {
	level := AtomicLevel{val: &atomic.Int32{}}
	level.Set(initLevel)
	return level
}

// Set changes the level.
func (level AtomicLevel) Set(newLevel Level) {
	level.val.Store(int32(newLevel))
}

// Get returns the level.
func (level AtomicLevel) Get() Level {
	return Level(level.val.Load())
}
