package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// CategoryWriter is a zapcore.Core writing every entry to `<LogRootPath>/<category>.log`, where the
// category is the first component of the logger name (`synth` for `synth.values`). Unnamed loggers are
// not written. Files are truncated the first time a category is seen.
type CategoryWriter struct {
	Encoder     zapcore.Encoder
	LogRootPath string

	files *categoryFiles
}

type categoryFiles struct {
	mu    sync.Mutex
	files map[string]*os.File
}

func NewCategoryWriter(enc zapcore.Encoder, logRootPath string) *CategoryWriter {
	return &CategoryWriter{
		Encoder:     enc,
		LogRootPath: logRootPath,
		files:       &categoryFiles{files: make(map[string]*os.File)},
	}
}

func (c *CategoryWriter) Enabled(zapcore.Level) bool {
	return true
}

func (c *CategoryWriter) With(fields []zapcore.Field) zapcore.Core {
	clone := &CategoryWriter{
		Encoder:     c.Encoder.Clone(),
		LogRootPath: c.LogRootPath,
		files:       c.files,
	}
	for i := range fields {
		fields[i].AddTo(clone.Encoder)
	}
	return clone
}

func (c *CategoryWriter) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(ent, c)
}

func (c *CategoryWriter) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	categ, rest, _ := strings.Cut(ent.LoggerName, ".")
	categ = strings.ReplaceAll(strings.TrimSpace(categ), string(os.PathSeparator), "_")
	if categ == "" {
		return nil
	}
	f, err := c.files.open(c.LogRootPath, categ)
	if err != nil {
		return err
	}

	// the file already names the category
	ent.LoggerName = rest
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	if ent.Level > zapcore.ErrorLevel {
		return f.Sync()
	}
	return nil
}

func (c *CategoryWriter) Sync() error {
	c.files.mu.Lock()
	defer c.files.mu.Unlock()

	var errs error
	for _, f := range c.files.files {
		errs = errors.Join(errs, f.Sync())
	}
	return errs
}

func (cf *categoryFiles) open(root, categ string) (*os.File, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	if f, ok := cf.files[categ]; ok {
		return f, nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(root, categ+".log"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	cf.files[categ] = f
	return f, nil
}
