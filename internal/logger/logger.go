package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	out    *log.Logger
	debug  bool
	static map[string]any
	now    = time.Now
)

// Init configures JSONL logging into <baseDir>/log/app.log.
// An empty baseDir logs to stdout.
func Init(baseDir string) error {
	if baseDir == "" {
		SetOutput(os.Stdout)
		return nil
	}
	logDir := filepath.Join(baseDir, "log")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	SetOutput(f)
	return nil
}

func SetOutput(w io.Writer) {
	mu.Lock()
	out = log.New(w, "", 0)
	mu.Unlock()
}

func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

// SetStatic attaches fields to every subsequent line (service name, instance id).
func SetStatic(fields map[string]any) {
	mu.Lock()
	static = copyFields(fields)
	mu.Unlock()
}

func Debug(msg string, fields map[string]any) {
	mu.Lock()
	enabled := debug
	mu.Unlock()
	if !enabled {
		return
	}
	write("debug", msg, fields)
}

func Info(msg string, fields map[string]any) {
	write("info", msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write("warn", msg, fields)
}

func Error(msg string, fields map[string]any) {
	write("error", msg, fields)
}

func write(level, msg string, fields map[string]any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		out = log.New(io.Discard, "", 0)
	}
	line := make(map[string]any, len(fields)+len(static)+3)
	for k, v := range static {
		line[k] = v
	}
	for k, v := range fields {
		line[k] = v
	}
	ts := now().UTC().Format(time.RFC3339Nano)
	line["ts"] = ts
	line["level"] = level
	line["msg"] = msg
	enc, err := json.Marshal(line)
	if err != nil {
		out.Printf(`{"ts":"%s","level":"error","msg":"log_marshal_failed","error":%q}`, ts, err.Error())
		return
	}
	out.Println(string(enc))
}

func copyFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return cp
}
