package logging

import (
	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// LevelCounter records how many warnings and errors were written through the cores it wraps, so commands
// can report a summary after the fact. Entries filtered out by level are not counted.
type LevelCounter struct {
	warnings atomic.Int64
	errors   atomic.Int64
}

func (c *LevelCounter) Wrap(core zapcore.Core) zapcore.Core {
	return zapcore.RegisterHooks(core, c.record)
}

func (c *LevelCounter) record(e zapcore.Entry) error {
	switch {
	case e.Level >= zapcore.ErrorLevel:
		c.errors.Inc()
	case e.Level == zapcore.WarnLevel:
		c.warnings.Inc()
	}
	return nil
}

func (c *LevelCounter) Warnings() int64 { return c.warnings.Load() }
func (c *LevelCounter) Errors() int64   { return c.errors.Load() }
