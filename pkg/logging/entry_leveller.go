package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters log entries based on the logger name, similar to Log4j
// or python's logging module. The level of `synth` applies to `synth.values` unless that name has its
// own level; the empty name sets the level of every logger.
type EntryLeveller struct {
	zapcore.Core

	levels map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	copied := make(map[string]zapcore.Level, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return &EntryLeveller{Core: core, levels: copied}
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	// levels are read-only after construction
	return &EntryLeveller{Core: el.Core.With(f), levels: el.levels}
}

// levelFor returns the level of the most specific configured name that `name` is or is nested under.
func (el *EntryLeveller) levelFor(name string) (zapcore.Level, bool) {
	for module := name; module != ""; {
		if level, ok := el.levels[module]; ok {
			return level, true
		}
		idx := strings.LastIndexByte(module, '.')
		if idx < 0 {
			break
		}
		module = module[:idx]
	}
	level, ok := el.levels[""]
	return level, ok
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	level, ok := el.levelFor(e.LoggerName)
	if !ok {
		return el.Core.Check(e, ce)
	}
	if e.Level < level {
		return ce
	}
	return ce.AddCore(e, el)
}
