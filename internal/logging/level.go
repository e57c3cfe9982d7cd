package logging

import (
	"errors"
	"strconv"
	"strings"
)

// Logging level. Higher values indicate more verbosity.
type Level int

const (
	Error Level = iota - 2
	Warn
	Info
	Debug

	// Allow numeric logging levels up to 9.
	MaxLevel Level = 9
)

// Default level can be changed by environment variable.
var defaultLevel = Info

func parseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "E", "ERROR":
		return Error, nil
	case "W", "WARN":
		return Warn, nil
	case "I", "INFO":
		return Info, nil
	case "D", "DEBUG":
		return Debug, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("Invalid logging level: " + s)
	}
	level := Level(n)
	if level < Error || level > MaxLevel {
		return 0, errors.New("Numeric level out of range: " + s)
	}
	return level, nil
}

func (l Level) letter() byte {
	switch l {
	case Error:
		return 'E'
	case Warn:
		return 'W'
	case Info:
		return 'I'
	case Debug:
		return 'D'
	}
	return byte('0' + l)
}
