package clicommon

import (
	"strconv"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*LevelledFlag)(nil)

// LevelledFlag is a pflag.Value counting how many times a boolean flag is given, so `-vv` is level 2.
// An explicit integer (`--verbose=3`) sets the level directly and `--verbose=false` lowers it by one.
type LevelledFlag int

func (f *LevelledFlag) Set(s string) error {
	enabled, boolErr := strconv.ParseBool(s)
	if boolErr == nil {
		switch {
		case enabled:
			*f++
		case *f > 0:
			*f--
		}
		return nil
	}
	level, err := strconv.Atoi(s)
	if err != nil || level < 0 {
		return boolErr
	}
	*f = LevelledFlag(level)
	return nil
}

func (f *LevelledFlag) Type() string {
	return "levelled_flag"
}

func (f *LevelledFlag) String() string {
	return strconv.Itoa(int(*f))
}
