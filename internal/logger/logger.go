package logger

import (
	"bytes"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelSuccess LogLevel = "SUCCESS"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
	LevelDebug   LogLevel = "DEBUG"
)

var (
	mu sync.Mutex

	// console receives the coloured line for every level
	console io.Writer = os.Stdout

	errorLogger  *stdlog.Logger
	errorLogFile *os.File

	// Separate AI logger that doesn't write to the error log
	aiLogger  *stdlog.Logger
	aiLogFile *os.File

	appLogger  *stdlog.Logger
	appLogFile *os.File
)

// Init opens the log files under dataDir. Until it is called only the console is used.
func Init(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	errFile, err := openLog(filepath.Join(dataDir, "error.log"))
	if err != nil {
		return err
	}
	aiFile, err := openLog(filepath.Join(dataDir, "ai.log"))
	if err != nil {
		errFile.Close()
		return err
	}
	appFile, err := openLog(filepath.Join(dataDir, "app.log"))
	if err != nil {
		errFile.Close()
		aiFile.Close()
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	closeFilesLocked()
	errorLogFile, errorLogger = errFile, stdlog.New(errFile, "", 0)
	aiLogFile, aiLogger = aiFile, stdlog.New(aiFile, "", 0)
	appLogFile, appLogger = appFile, stdlog.New(appFile, "", 0)
	return nil
}

func openLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %s: %w", path, err)
	}
	return f, nil
}

// SetConsoleOutput replaces the console writer. Passing io.Discard mutes the
// console while a full-screen UI owns the terminal; file logs are unaffected.
func SetConsoleOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	console = w
}

// CloseLogFile should be called during shutdown to properly close all log files
func CloseLogFile() {
	mu.Lock()
	defer mu.Unlock()
	closeFilesLocked()
}

func closeFilesLocked() {
	for _, f := range []*os.File{errorLogFile, aiLogFile, appLogFile} {
		if f != nil {
			f.Close()
		}
	}
	errorLogFile, aiLogFile, appLogFile = nil, nil, nil
	errorLogger, aiLogger, appLogger = nil, nil, nil
}

var colorMap = map[string]func(a ...interface{}) string{
	string(LevelInfo):    color.New(color.FgBlue).SprintFunc(),
	string(LevelSuccess): color.New(color.FgGreen).SprintFunc(),
	string(LevelWarning): color.New(color.FgYellow).SprintFunc(),
	string(LevelError):   color.New(color.FgRed).SprintFunc(),
	string(LevelDebug):   color.New(color.FgCyan).SprintFunc(),

	"white": color.New(color.FgWhite).SprintFunc(),
}

func GetColorFunc(colorName string) func(a ...interface{}) string {
	if fn, ok := colorMap[colorName]; ok {
		return fn
	}
	return colorMap["white"]
}

func logMessage(level LogLevel, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	mu.Lock()
	defer mu.Unlock()

	colorFunc := GetColorFunc(string(level))
	fmt.Fprintln(console, colorFunc(fmt.Sprintf("[%s] ", level))+message)

	if appLogger != nil {
		appLogger.Printf("[%s] %s: %s", level, timestamp, message)
	}

	// Only errors and warnings go to error.log
	if level == LevelError || level == LevelWarning {
		if errorLogger != nil {
			errorLogger.Printf("[%s] %s: %s", level, timestamp, message)
		}
	}
}

func Infof(format string, args ...interface{}) {
	logMessage(LevelInfo, format, args...)
}

func Successf(format string, args ...interface{}) {
	logMessage(LevelSuccess, format, args...)
}

func Warnf(format string, args ...interface{}) {
	logMessage(LevelWarning, format, args...)
}

func Errorf(format string, args ...interface{}) {
	logMessage(LevelError, format, args...)
}

func Debugf(format string, args ...interface{}) {
	logMessage(LevelDebug, format, args...)
}

// AIDebugf logs model and tool traffic to ai.log instead of error.log
func AIDebugf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	mu.Lock()
	defer mu.Unlock()

	colorFunc := GetColorFunc(string(LevelDebug))
	fmt.Fprintln(console, colorFunc("[AI-DEBUG] ")+message)

	if aiLogger != nil {
		aiLogger.Printf("[DEBUG] %s: %s", timestamp, message)
	}
}

// lineWriter turns each complete line written to it into a debug log entry.
type lineWriter struct {
	prefix string
	mu     sync.Mutex
	buf    bytes.Buffer
}

// Writer returns an io.Writer that logs every line at debug level with prefix.
// Used for subprocess stderr.
func Writer(prefix string) io.Writer {
	return &lineWriter{prefix: prefix}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		if text := strings.TrimRight(line, "\r\n"); text != "" {
			Debugf("[%s] %s", w.prefix, text)
		}
	}
	return len(p), nil
}
