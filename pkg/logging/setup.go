package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type LogOpts struct {
	// Verbose lowers the level to debug. Above 1, the per-logger default levels are ignored too.
	Verbose         int
	Color           string
	CategoryLogsDir string
	Encoding        string
	DefaultLevels   map[string]zapcore.Level
	// Counter, when set, records whether warnings or errors were logged.
	Counter *LevelCounter
}

// UseColor resolves the Color option (`auto`, `always`/`on`, `never`/`off`) against stderr.
func (opts LogOpts) UseColor() bool {
	switch opts.Color {
	case "always", "on":
		return true
	case "never", "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

func (opts LogOpts) Encoder() zapcore.Encoder {
	switch opts.Encoding {
	case "json":
		if opts.Verbose > 0 {
			return zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
		}
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	case "console", "":
		useColor := opts.UseColor()
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = TimeOffsetFormatter(time.Now(), useColor)
		if useColor {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		if opts.Verbose == 0 {
			cfg.CallerKey = zapcore.OmitKey
		}
		return zapcore.NewConsoleEncoder(cfg)

	default:
		panic(fmt.Errorf("unknown encoding %q", opts.Encoding))
	}
}

// levels returns the per-logger levels: LOG_LEVEL (`name=level,...`) when set, the defaults otherwise.
func (opts LogOpts) levels() map[string]zapcore.Level {
	levelEnv, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		if opts.Verbose > 1 {
			return nil
		}
		return opts.DefaultLevels
	}
	values := strings.Split(levelEnv, ",")
	levels := make(map[string]zapcore.Level, len(values))
	for _, v := range values {
		k, v, ok := strings.Cut(v, "=")
		if !ok {
			continue
		}
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			continue
		}
		levels[k] = lvl
	}
	return levels
}

func (opts LogOpts) EntryLeveller(core zapcore.Core) zapcore.Core {
	if levels := opts.levels(); len(levels) > 0 {
		core = NewEntryLeveller(core, levels)
	}
	return core
}

func (opts LogOpts) CategoryCore(core zapcore.Core) zapcore.Core {
	if opts.CategoryLogsDir == "" {
		return core
	}
	var enc zapcore.Encoder
	switch opts.Encoding {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zapcore.NewTee(core, NewCategoryWriter(enc, opts.CategoryLogsDir))
}

func (opts LogOpts) NewCore(w zapcore.WriteSyncer) zapcore.Core {
	leveller := zap.NewAtomicLevel()
	if opts.Verbose > 0 {
		leveller.SetLevel(zap.DebugLevel)
	} else {
		leveller.SetLevel(zap.InfoLevel)
	}

	core := zapcore.NewCore(opts.Encoder(), w, leveller)
	core = opts.EntryLeveller(core)
	core = opts.CategoryCore(core)
	if opts.Counter != nil {
		core = opts.Counter.Wrap(core)
	}
	return core
}

// NewLogger builds the logger writing to stderr. It also aligns fatih/color (used for non-log output such as
// plans) with the colour decision.
func (opts LogOpts) NewLogger() *zap.Logger {
	if opts.Encoding != "json" {
		color.NoColor = !opts.UseColor()
	}
	return zap.New(opts.NewCore(os.Stderr), zap.AddCaller())
}

// TimeOffsetFormatter returns a time encoder that formats the time as an offset from the start time.
// This is mostly useful for CLI logging not long-standing services as times beyond a few minutes will
// be less readable.
func TimeOffsetFormatter(start time.Time, color bool) zapcore.TimeEncoder {
	var colStart = "\x1b[90m"
	var colEnd = "\x1b[0m"
	if !color {
		colStart = ""
		colEnd = ""
	}
	return func(t time.Time, e zapcore.PrimitiveArrayEncoder) {
		diff := t.Sub(start)
		if diff < time.Second {
			e.AppendString(fmt.Sprintf(" %s%3dms%s", colStart, diff.Milliseconds(), colEnd))
		} else if diff < 5*time.Minute {
			e.AppendString(fmt.Sprintf("%s%5.1fs%s", colStart, diff.Seconds(), colEnd))
		} else {
			e.AppendString(fmt.Sprintf("%s%5.1fm%s", colStart, diff.Minutes(), colEnd))
		}
	}
}
