// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 50
	maxBackups = 3
)

// Build assembles a logger step by step. The zero builder writes
// info-level structured lines to stdout.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

func New() *Build {
	return &Build{level: zerolog.InfoLevel}
}

// FromBuffer directs output to w instead of stdout.
func (b *Build) FromBuffer(w io.Writer) *Build {
	b.writer = w
	return b
}

// FromPath additionally writes to a size-rotated file at path.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// Level sets the minimum level. Verbose mode maps to debug.
func (b *Build) Level(level zerolog.Level) *Build {
	b.level = level
	return b
}

func (b *Build) Make() zerolog.Logger {
	w := b.writer
	if w == nil {
		w = os.Stdout
	}
	if b.path != "" {
		rotated := &lumberjack.Logger{
			Filename:   b.path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
		w = zerolog.MultiLevelWriter(w, rotated)
	}
	return zerolog.New(w).Level(b.level).With().Timestamp().Logger()
}
