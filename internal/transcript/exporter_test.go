package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-broker/internal/models"
)

func TestExportWritesTranscriptFile(t *testing.T) {
	dir := t.TempDir()
	nicknames := map[string]string{"alice": "Alice"}
	exporter := NewFileExporter(dir, func(username string) string {
		return nicknames[username]
	})

	group := "team"
	sent := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	stopped := sent.Add(time.Hour)
	messages := []models.Message{
		{ID: 1, Sender: "alice", GroupName: &group, Content: "Alice [alice]: hello", SentTime: sent},
		{ID: 2, Sender: "bob", GroupName: &group, Content: "bob [bob]: hi", SentTime: sent.Add(time.Minute)},
	}

	location, err := exporter.Export("team", "abc123", messages, stopped)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "team_abc123.txt"), location)

	content, err := os.ReadFile(location)
	require.NoError(t, err)
	text := string(content)
	require.Contains(t, text, "Chat: team")
	require.Contains(t, text, "Chat ID: abc123")
	// alice resolves to her nickname, bob falls back to his username
	require.Contains(t, text, "Alice: Alice [alice]: hello : 2026-03-14 15:09:26")
	require.Contains(t, text, "bob: bob [bob]: hi : 2026-03-14 15:10:26")
	require.Contains(t, text, "Chat stopped at: 2026-03-14 16:09:26")
}

func TestExportEmptyHistoryStillWritesHeader(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(dir, nil)

	location, err := exporter.Export("quiet", "s1", nil, time.Now())
	require.NoError(t, err)

	content, err := os.ReadFile(location)
	require.NoError(t, err)
	require.Contains(t, string(content), "Chat: quiet")
}
