// Package logger escribe una línea por evento, en texto key=value o JSON.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{Debug: "debug", Info: "info", Warn: "warn", Error: "error"}

// ParseLevel acepta los nombres de Level y "warning". Cualquier otra cosa es Info.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return Warn
	}
	for lvl, name := range levelNames {
		if name == s {
			return Level(lvl)
		}
	}
	return Info
}

func (l Level) String() string {
	if l < Debug || l > Error {
		return levelNames[Info]
	}
	return levelNames[l]
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string
	Output io.Writer // os.Stdout si es nil
}

// sink es compartido por todos los loggers derivados con With.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

type fieldLogger struct {
	sink   *sink
	fields map[string]any
}

func New(opts Options) Logger {
	s := &sink{out: opts.Output, level: opts.Level, format: opts.Format}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.format != FormatJSON {
		s.format = FormatText
	}

	fields := map[string]any{}
	if app := strings.TrimSpace(opts.App); app != "" {
		fields["app"] = app
	}
	return &fieldLogger{sink: s, fields: fields}
}

type nopLogger struct{}

// Nop descarta todo. Es el default de las dependencias opcionales.
func Nop() Logger { return nopLogger{} }

func (n nopLogger) With(map[string]any) Logger  { return n }
func (nopLogger) Debug(string, map[string]any) {}
func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

func (l *fieldLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &fieldLogger{sink: l.sink, fields: merge(merge(map[string]any{}, l.fields), fields)}
}

func (l *fieldLogger) Debug(msg string, fields map[string]any) { l.write(Debug, msg, fields) }
func (l *fieldLogger) Info(msg string, fields map[string]any)  { l.write(Info, msg, fields) }
func (l *fieldLogger) Warn(msg string, fields map[string]any)  { l.write(Warn, msg, fields) }
func (l *fieldLogger) Error(msg string, fields map[string]any) { l.write(Error, msg, fields) }

func (l *fieldLogger) write(lvl Level, msg string, fields map[string]any) {
	if lvl < l.sink.level {
		return
	}

	entry := merge(merge(map[string]any{}, l.fields), fields)
	entry["ts"] = time.Now().Format(time.RFC3339Nano)
	entry["level"] = lvl.String()
	entry["msg"] = msg

	var line []byte
	if l.sink.format == FormatJSON {
		b, err := json.Marshal(entry)
		if err != nil {
			b = []byte(fmt.Sprintf(`{"level":"error","msg":"log encode failed","error":%q}`, err.Error()))
		}
		line = b
	} else {
		line = []byte(textLine(entry))
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = l.sink.out.Write(append(line, '\n'))
}

// merge copia src en dst ignorando claves vacías.
func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		if strings.TrimSpace(k) != "" {
			dst[k] = v
		}
	}
	return dst
}

// textLine ordena las claves; los valores con espacios van entre comillas.
func textLine(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		v := fmt.Sprint(m[k])
		if strings.ContainsAny(v, " \t\n\"=") {
			v = strconv.Quote(v)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}
