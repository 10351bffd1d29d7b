package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fixedform "github.com/soypat/go-fixedform"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want %+v", cfg, Default())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Config
	}{
		0: {
			name:    "fixedform.toml",
			content: "max_depth = 16\nindent_width = 4\ncolor = true\n",
			want:    Config{MaxDepth: 16, IndentWidth: 4, Color: true, LogLevel: "warn", Format: "text"},
		},
		1: {
			name:    "fixedform.yaml",
			content: "max_depth: 8\nlog_level: debug\nformat: yaml\n",
			want:    Config{MaxDepth: 8, IndentWidth: 2, LogLevel: "debug", Format: "yaml"},
		},
		2: {
			name:    "FIXEDFORM.YML",
			content: "indent_width: 0\n",
			want:    Config{MaxDepth: fixedform.DefaultMaxDepth, IndentWidth: 0, LogLevel: "warn", Format: "text"},
		},
		3: {
			name:    "fixedform.conf",
			content: "log_level = \"error\"\n",
			want:    Config{MaxDepth: fixedform.DefaultMaxDepth, IndentWidth: 2, LogLevel: "error", Format: "text"},
		},
	}
	for i, tt := range tests {
		cfg, err := Load(writeFile(t, tt.name, tt.content))
		if err != nil {
			t.Errorf("case %d: %v", i, err)
			continue
		}
		if cfg != tt.want {
			t.Errorf("case %d: got %+v, want %+v", i, cfg, tt.want)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FIXEDFORM_MAX_DEPTH", "3")
	t.Setenv("FIXEDFORM_INDENT", "not a number")
	cfg, err := Load(writeFile(t, "c.toml", "indent_width = 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 3 || cfg.IndentWidth != 5 {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		0: {name: "a.toml", content: "max_depth = \"deep\"", want: "a.toml"},
		1: {name: "b.toml", content: "depth = 3\n", want: `unknown key "depth"`},
		2: {name: "c.yaml", content: "max_depth: [1\n", want: "c.yaml"},
		3: {name: "d.toml", content: "max_depth = 0\n", want: "max_depth must be positive"},
		4: {name: "e.toml", content: "log_level = \"loud\"\n", want: "log_level"},
		5: {name: "f.toml", content: "format = \"json\"\n", want: `unknown report format "json"`},
		6: {name: "g.toml", content: "indent_width = -1\n", want: "negative indent_width"},
	}
	for i, tt := range tests {
		_, err := Load(writeFile(t, tt.name, tt.content))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("case %d: got %v, want %q", i, err, tt.want)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLevel(t *testing.T) {
	for i, tt := range []struct {
		name string
		want slog.Level
	}{
		0: {"debug", slog.LevelDebug},
		1: {"INFO", slog.LevelInfo},
		2: {"warn", slog.LevelWarn},
		3: {"error", slog.LevelError},
	} {
		lvl, err := Config{LogLevel: tt.name}.Level()
		if err != nil || lvl != tt.want {
			t.Errorf("case %d: got %v %v", i, lvl, err)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	if detectFormat("x.yml") != FormatYAML || detectFormat("x.toml") != FormatTOML || detectFormat("x") != FormatTOML {
		t.Error("wrong format detection")
	}
	if FormatYAML.String() != "yaml" || Format(9).String() != "unknown" {
		t.Error("wrong format names")
	}
}
