package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type LogLevel = log.Level

const (
	LogLevelDebug = log.DebugLevel
	LogLevelInfo  = log.InfoLevel
	LogLevelWarn  = log.WarnLevel
	LogLevelError = log.ErrorLevel
	LogLevelFatal = log.FatalLevel
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(func() {
		l := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "Engine 🏎️ ",
			CallerOffset:    1,
		})
		l.SetLevel(log.DebugLevel)
		singleton = &logger{l}
	})
	return singleton
}

// Logger returns a child of the engine logger for packages that want a scoped
// instance (`core.Logger().WithPrefix("assets")`). Unlike the LogX helpers it
// is called directly, so it reports its own caller.
func Logger() *log.Logger {
	l := getLogger().With()
	l.SetCallerOffset(0)
	return l
}

func SetLogLevel(level LogLevel) {
	getLogger().SetLevel(level)
}

// SetLogOutput redirects every engine log line, mostly useful in tests.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// ParseLogLevel accepts the names used in the configuration file. Unknown
// names fall back to info.
func ParseLogLevel(name string) LogLevel {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
