package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a logger.
type Options struct {
	// Filename is the rotated log file. Empty means no file output.
	Filename string
	// Level is a logrus level name (debug, info, warn...).
	Level string
	// Console also writes entries to stderr.
	Console bool
}

// New returns a new well configured logger.
func New(opts Options) *logrus.Logger {
	formatter := new(Formatter)

	l := logrus.New()
	l.SetFormatter(formatter)
	l.SetOutput(io.Discard) // stdout is kept for user output
	if opts.Console {
		l.SetOutput(os.Stderr)
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.Filename != "" {
		l.Hooks.Add(&fileHook{
			out: &lumberjack.Logger{
				Filename:   opts.Filename,
				MaxSize:    20, // megabytes
				MaxBackups: 2,
				MaxAge:     10, //days
			},
			formatter: formatter,
		})
	}

	return l
}

// Discard returns a logger that writes nothing, used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

////////////////////
//                //
// File hook      //
//                //
////////////////////

// Secrets are masked before an entry reaches the log file.
var secrets = map[string]bool{
	"token":         true,
	"password":      true,
	"access_token":  true,
	"session_id":    true,
	"dj_session_id": true,
	"csrf_token":    true,
}

type fileHook struct {
	mu        sync.Mutex
	out       io.Writer
	formatter logrus.Formatter
}

// Fire writes the entry to the rotated file with its secrets masked.
func (h *fileHook) Fire(entry *logrus.Entry) error {
	masked := *entry
	masked.Data = lo.MapValues(entry.Data, func(v any, k string) any {
		if secrets[strings.ToLower(k)] {
			return "********"
		}
		return v
	})

	msg, err := h.formatter.Format(&masked)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.out.Write(msg)
	return err
}

// Levels implements logrus.Hook.
func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

////////////////////
//                //
// Log formatter  //
//                //
////////////////////

// A Formatter renders entries on a single line.
type Formatter struct{}

// Format implements Logrus formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	fields := ""
	if len(entry.Data) > 0 {
		fs := []string{}
		for k, v := range entry.Data {
			fs = append(fs, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(fs)
		fields = fmt.Sprintf(" (%s)", strings.Join(fs, ", "))
	}

	data := fmt.Sprintf("[%s] %+5s: %s%s\n",
		entry.Time.Format(time.RFC3339),
		strings.ToUpper(entry.Level.String()),
		entry.Message,
		fields,
	)
	return []byte(data), nil
}
