package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// TestNew はログ形式とレベルをテストする
func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantLines int
	}{
		{"通常", false, 1},
		{"デバッグ", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.debug)

			logger.Debug("debug message")
			logger.Info("info message", "status", 200)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("出力行数: got %d, want %d\n%s", len(lines), tt.wantLines, buf.String())
			}

			// 端末以外への出力はJSON形式
			var entry map[string]any
			if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
				t.Fatalf("JSONとして解析できません: %v", err)
			}
			if entry["msg"] != "info message" {
				t.Errorf("msg: got %v", entry["msg"])
			}
			if entry["status"] != float64(200) {
				t.Errorf("status: got %v", entry["status"])
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("bytes.Buffer が端末と判定されました")
	}

	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("通常ファイルが端末と判定されました")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("ignored")
	if logger.Enabled(t.Context(), 0) {
		t.Error("Discard のロガーが有効になっています")
	}
}
