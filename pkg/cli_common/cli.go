package clicommon

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	verbose   LevelledFlag
	jsonLog   bool
	color     string
	logsDir   string
	profileTo string

	// Counter records the warnings and errors logged during the command.
	Counter logging.LevelCounter
}

// DefaultLevels keeps the chatty per-resource loggers quiet unless verbose logging is requested twice.
var DefaultLevels = map[string]zapcore.Level{
	"construct": zap.InfoLevel,
	"synth":     zap.InfoLevel,
}

func setupProfiling(commonCfg *CommonConfig) func() {
	if commonCfg.profileTo != "" {
		err := os.MkdirAll(filepath.Dir(commonCfg.profileTo), 0755)
		if err != nil {
			panic(fmt.Errorf("failed to create profile directory: %w", err))
		}
		profileF, err := os.OpenFile(commonCfg.profileTo, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open profile file: %w", err))
		}
		err = pprof.StartCPUProfile(profileF)
		if err != nil {
			panic(fmt.Errorf("failed to start profile: %w", err))
		}
		return func() {
			pprof.StopCPUProfile()
			profileF.Close()
		}
	}
	return func() {}
}

func (cfg *CommonConfig) LogOpts() logging.LogOpts {
	logOpts := logging.LogOpts{
		Verbose:         int(cfg.verbose),
		Color:           cfg.color,
		CategoryLogsDir: cfg.logsDir,
		DefaultLevels:   DefaultLevels,
		Counter:         &cfg.Counter,
	}
	if cfg.jsonLog {
		logOpts.Encoding = "json"
	}
	return logOpts
}

func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.VarP(&commonCfg.verbose, "verbose", "v", "Enable verbose logging (repeat for more)")
	flags.Lookup("verbose").NoOptDefVal = "true"
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colorize output (auto, always, never)")
	flags.StringVar(&commonCfg.logsDir, "logs-dir", "", "Directory to write per-category logs to")
	flags.StringVar(&commonCfg.profileTo, "profiling", "", "Profile to file")

	profileClose := func() {}

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		zap.ReplaceGlobals(commonCfg.LogOpts().NewLogger())

		profileClose = setupProfiling(commonCfg)
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if w, e := commonCfg.Counter.Warnings(), commonCfg.Counter.Errors(); w > 0 || e > 0 {
			zap.S().Infof("completed with %d warning(s) and %d error(s)", w, e)
		}
		zap.L().Sync() //nolint:errcheck

		profileClose()
	}
}
