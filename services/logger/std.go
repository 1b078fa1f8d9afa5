package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/user"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// StdLogger writes to a standard *log.Logger only; used by the CLIs and tests.
type StdLogger struct {
	std *log.Logger
	min Level
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger, min Level) *StdLogger {
	return &StdLogger{std: std, min: min}
}

func (l StdLogger) Debug(msg string, args ...interface{}) {
	if l.min <= LevelDebug {
		printArgs(l.std, "DEBUG", msg, args)
	}
}

func (l StdLogger) Info(msg string, args ...interface{}) {
	if l.min <= LevelInfo {
		printArgs(l.std, "INFO", msg, args)
	}
}

func (l StdLogger) Warn(msg string, args ...interface{}) {
	if l.min <= LevelWarn {
		printArgs(l.std, "WARN", msg, args)
	}
}

func (l StdLogger) Error(msg string, args ...interface{}) {
	printArgs(l.std, "ERROR", msg, args)
}

func (l StdLogger) Fatal(msg string, args ...interface{}) {
	printArgs(l.std, "FATAL", msg, args)
	l.std.Fatal(msg)
}

func printArgs(std *log.Logger, level, msg string, args []interface{}) {
	std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			std.Printf("%+v\n", a)
		case map[string]interface{}:
			std.Println(formatFields(a))
		case user.User:
			std.Printf("user: %s <%s>\n", a.Username, a.Email)
		default:
			std.Printf("%+v\n", a)
		}
	}
}

func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		_, _ = fmt.Fprint(&b, fields[k])
	}
	return b.String()
}
