// Package logger is the process-wide structured logger. Messages take
// alternating key/value pairs after the message.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/seedcash/seedcash/pkg/utils"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(utils.ZerologConsoleWriter()).With().Timestamp().Logger()
)

// Init configures the global logger. Production writes JSON to stderr,
// any other environment uses the console writer.
func Init(environment string, debug bool) {
	var w io.Writer = os.Stderr
	if environment != "production" {
		w = utils.ZerologConsoleWriter()
	}
	InitWithWriter(w, debug)
}

// InitWithWriter points the global logger at w.
func InitWithWriter(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Get returns the global logger for packages that log with zerolog events
// directly.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func fields(e *zerolog.Event, keyValues []any) *zerolog.Event {
	for i := 0; i < len(keyValues); i += 2 {
		key := fmt.Sprint(keyValues[i])
		if i+1 == len(keyValues) {
			e = e.Interface(key, nil)
			break
		}
		e = e.Interface(key, keyValues[i+1])
	}
	return e
}

func Debug(msg string, keyValues ...any) {
	l := Get()
	fields(l.Debug(), keyValues).Msg(msg)
}

func Info(msg string, keyValues ...any) {
	l := Get()
	fields(l.Info(), keyValues).Msg(msg)
}

func Warn(msg string, keyValues ...any) {
	l := Get()
	fields(l.Warn(), keyValues).Msg(msg)
}

// Error logs msg with err attached. err may be nil.
func Error(msg string, err error, keyValues ...any) {
	l := Get()
	fields(l.Error().Err(err), keyValues).Msg(msg)
}

// Fatal logs msg and exits the process.
func Fatal(msg string, err error, keyValues ...any) {
	l := Get()
	fields(l.Error().Err(err), keyValues).Msg(msg)
	os.Exit(1)
}
