package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type LogType string

const (
	TranscriptLog LogType = "transcripts"
)

var unsafeFilename = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "|", "-",
	"\"", "'", "<", "(", ">", ")",
)

// transcriptLogger writes one file per session and day under
// <root>/transcripts/<session>/<date>.log
type transcriptLogger struct {
	mu    sync.Mutex
	root  string
	day   string
	files map[string]*os.File
}

var chatLog = &transcriptLogger{files: make(map[string]*os.File)}

// SetTranscriptDir enables transcript logs under dir. An empty dir disables them.
func SetTranscriptDir(dir string) {
	chatLog.mu.Lock()
	defer chatLog.mu.Unlock()

	chatLog.closeLocked()
	chatLog.root = dir
}

func sessionDir(session string) string {
	if session == "" {
		return "default"
	}
	return unsafeFilename.Replace(session)
}

func (tl *transcriptLogger) fileFor(session string) (*os.File, error) {
	today := time.Now().Format("2006-01-02")
	if today != tl.day {
		// new day, new files
		tl.closeLocked()
		tl.day = today
	}

	if f, ok := tl.files[session]; ok {
		return f, nil
	}

	dir := filepath.Join(tl.root, string(TranscriptLog), sessionDir(session))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, today+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	tl.files[session] = f
	return f, nil
}

func (tl *transcriptLogger) closeLocked() {
	for session, f := range tl.files {
		f.Close()
		delete(tl.files, session)
	}
}

// LogTranscript appends one "[15:04:05] <speaker> text" line to the
// session's transcript. It does nothing until SetTranscriptDir is called.
func LogTranscript(session, speaker, text string) {
	chatLog.mu.Lock()
	defer chatLog.mu.Unlock()

	if chatLog.root == "" {
		return
	}

	f, err := chatLog.fileFor(session)
	if err != nil {
		Errorf("Transcript log unavailable: %v", err)
		return
	}
	if _, err := fmt.Fprintf(f, "[%s] <%s> %s\n", time.Now().Format("15:04:05"), speaker, text); err != nil {
		Errorf("Failed to write transcript log: %v", err)
	}
}

// CloseAllChatLogs closes all open transcript files
func CloseAllChatLogs() {
	chatLog.mu.Lock()
	defer chatLog.mu.Unlock()
	chatLog.closeLocked()
}
