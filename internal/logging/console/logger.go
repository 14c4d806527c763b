// Package console is the dependency free logger used by the blog CLI. Each
// entry is one line: "<time> LEVEL [module] message key=value ...", with
// keys sorted and values quoted when they contain spaces or '='.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configuration string onto a Level. Unknown or blank
// values report false.
func ParseLevel(value string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(value))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, candidate := range levelNames {
		if candidate == name {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// Options configures the provider. Entries go to stderr by default so
// command output on stdout stays clean.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
	// OmitTime drops the leading timestamp.
	OmitTime bool
}

type sink struct {
	mu       sync.Mutex
	w        io.Writer
	clock    func() time.Time
	min      Level
	omitTime bool
}

type provider struct {
	sink *sink
}

// NewProvider constructs a line oriented logger provider.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{w: opts.Writer, clock: opts.TimeFunc, min: LevelInfo, omitTime: opts.OmitTime}
	if s.w == nil {
		s.w = os.Stderr
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return &provider{sink: s}
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &logger{sink: p.sink, module: name}
}

type logger struct {
	sink   *sink
	module string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

// WithFields returns a child logger. A "module" field replaces the bracketed
// module name instead of being printed as a field.
func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	child := &logger{sink: l.sink, module: l.module, ctx: l.ctx, fields: maps.Clone(l.fields)}
	if child.fields == nil {
		child.fields = make(map[string]any, len(fields))
	}
	for key, value := range fields {
		if key == "module" {
			child.module = fmt.Sprint(value)
			continue
		}
		child.fields[key] = value
	}
	return child
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{sink: l.sink, module: l.module, fields: l.fields, ctx: ctx}
}

func (l *logger) write(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}
	fields := maps.Clone(l.fields)
	if fields == nil {
		fields = map[string]any{}
	}
	maps.Copy(fields, logging.ContextFields(l.ctx))
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "field_" + strconv.Itoa(i/2)
		}
		fields[key] = args[i+1]
	}

	var b strings.Builder
	if !l.sink.omitTime {
		b.WriteString(l.sink.clock().UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	b.WriteString(level.String())
	if l.module != "" {
		b.WriteString(" [" + l.module + "]")
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(render(fields[key]))
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.w, b.String())
}

func render(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		s = v
	case error:
		s = v.Error()
	case time.Time:
		s = v.UTC().Format(time.RFC3339)
	case time.Duration:
		s = v.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
