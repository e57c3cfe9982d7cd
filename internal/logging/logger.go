// Package logging provides leveled, tag-filtered logging. Levels are
// configured at startup through the LOGLEVEL environment variable, a
// comma-separated list of "tag=level" directives; a bare level sets the
// default for all tags.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

const envVar = "LOGLEVEL"

var tagLevels = map[string]Level{}

func init() {
	for _, d := range strings.Split(os.Getenv(envVar), ",") {
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := parseLevel(v[len(v)-1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid %s directive '%s': %s\n", envVar, d, err)
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
		} else {
			tagLevels[v[0]] = level
		}
	}

	DefaultLogger.Level = defaultLevel
}

func determineLevel(tag string, fallback Level) Level {
	if level, ok := tagLevels[tag]; ok {
		return level
	}
	return fallback
}

type Logger struct {
	// The level at which this logger logs. Any log messages intended for
	// a higher (more verbose) level are ignored.
	Level

	// Tag used to filter and classify log messages.
	Tag string

	out io.Writer

	// Shared by all derived loggers so messages never interleave.
	mu *sync.Mutex
}

// Write to stderr by default.
var DefaultLogger = &Logger{defaultLevel, "", os.Stderr, new(sync.Mutex)}

// Override the destination for this logger.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// Derive a new logger with the given tag. Look up the level based on the tag.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{determineLevel(tag, log.Level), tag, log.out, log.mu}
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level {
		// Message is too verbose for this logger.
		return
	}

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(timestampFormat))
	fmt.Fprintf(&b, " %c/%s[%s:%d] ", level.letter(), log.Tag, filepath.Base(file), line)
	fmt.Fprintf(&b, format, a...)
	if n := b.Len(); n == 0 || b.String()[n-1] != '\n' {
		b.WriteByte('\n')
	}

	// Lock before writing to avoid interleaving of log messages.
	log.mu.Lock()
	io.WriteString(log.out, b.String())
	log.mu.Unlock()
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}
