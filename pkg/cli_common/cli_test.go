package clicommon

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelledFlag_Set(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    LevelledFlag
		wantErr bool
	}{
		{name: "once", values: []string{"true"}, want: 1},
		{name: "repeated", values: []string{"true", "true", "true"}, want: 3},
		{name: "disabled", values: []string{"true", "false"}, want: 0},
		{name: "never negative", values: []string{"false"}, want: 0},
		{name: "explicit level", values: []string{"2"}, want: 2},
		{name: "invalid", values: []string{"loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f LevelledFlag
			var err error
			for _, v := range tt.values {
				if err = f.Set(v); err != nil {
					break
				}
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, "levelled_flag", f.Type())
		})
	}
}

func TestSetupRoot_flags(t *testing.T) {
	assert := assert.New(t)

	var cfg CommonConfig
	root := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	SetupRoot(root, &cfg)

	err := root.PersistentFlags().Parse([]string{"-vv", "--json-log", "--color", "never", "--logs-dir", "logs"})
	assert.NoError(err)

	opts := cfg.LogOpts()
	assert.Equal(2, opts.Verbose)
	assert.Equal("json", opts.Encoding)
	assert.Equal("never", opts.Color)
	assert.Equal("logs", opts.CategoryLogsDir)
	assert.Same(&cfg.Counter, opts.Counter)
	assert.Equal(DefaultLevels, opts.DefaultLevels)
}
