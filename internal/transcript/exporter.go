package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chat-broker/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Exporter serializes a finished chat session's history to a durable
// artifact and returns its location.
type Exporter interface {
	Export(groupName, sessionID string, messages []models.Message, stoppedAt time.Time) (string, error)
}

// NameResolver maps a username to the display name written on transcript
// lines. A nil resolver or an empty result falls back to the username.
type NameResolver func(username string) string

// FileExporter writes chat logs as plain text files under a base directory.
type FileExporter struct {
	baseDir string
	resolve NameResolver
}

// NewFileExporter constructs a FileExporter rooted at baseDir.
func NewFileExporter(baseDir string, resolve NameResolver) *FileExporter {
	return &FileExporter{baseDir: baseDir, resolve: resolve}
}

// Export writes the session transcript to <group>_<session>.txt and returns
// the file path.
func (e *FileExporter) Export(groupName, sessionID string, messages []models.Message, stoppedAt time.Time) (string, error) {
	if err := os.MkdirAll(e.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(e.baseDir, fmt.Sprintf("%s_%s.txt", groupName, sessionID))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create transcript file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Chat: %s\n", groupName)
	fmt.Fprintf(file, "Chat ID: %s\n", sessionID)
	fmt.Fprintln(file, "----------------------------------------")
	for _, msg := range messages {
		fmt.Fprintf(file, "%s: %s : %s\n", e.displayName(msg.Sender), msg.Content, msg.SentTime.Format(timeLayout))
	}
	fmt.Fprintln(file, "----------------------------------------")
	fmt.Fprintf(file, "Chat stopped at: %s\n", stoppedAt.Format(timeLayout))

	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("flush transcript file: %w", err)
	}
	return path, nil
}

func (e *FileExporter) displayName(username string) string {
	if e.resolve != nil {
		if name := e.resolve(username); name != "" {
			return name
		}
	}
	return username
}
