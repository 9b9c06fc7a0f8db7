package logging

import (
	"github.com/hiroaki-suzuki/sample-aws-nestjs-angular/pkg/io"
)

func FileNames(files []io.File) []string {
	s := make([]string, len(files))
	for i, f := range files {
		s[i] = f.Path()
	}
	return s
}
