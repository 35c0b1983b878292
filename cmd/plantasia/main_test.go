package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestPresetsTable(t *testing.T) {
	out := execute(t, "presets")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2+14 {
		t.Fatalf("got %d lines, want header, rule and 14 presets:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "plants ") {
		t.Fatalf("first row = %q", lines[2])
	}
	if !strings.Contains(out, "sin(t/950ms)") {
		t.Fatalf("mushrooms pan policy missing:\n%s", out)
	}
}

func TestPresetsJSONMerge(t *testing.T) {
	file := filepath.Join(t.TempDir(), "extra.json")
	extra := `[{"name":"lichen","scale":[110,220],"color":"#778899","wave":"sine",
		"envelope":{"attack":0.1,"decay":0.1,"sustain":0.5,"release":0.5},
		"detune":[0],"fat":1,"pan":0,"filterType":"lowpass","cutoff":800,
		"resonance":0.3,"drive":0.2,"visual":"dots"}]`
	if err := os.WriteFile(file, []byte(extra), 0o600); err != nil {
		t.Fatal(err)
	}

	out := execute(t, "presets", "--json", "--presets", file)
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 15 || got[14]["name"] != "lichen" {
		t.Fatalf("got %d presets, last %v", len(got), got[len(got)-1]["name"])
	}
}

func TestPlayRejectsBadFlags(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.json")
	for _, args := range [][]string{
		{"play", "--config", cfg, "--bpm", "500"},
		{"play", "--config", cfg, "--reverb", "plate"},
		{"play", "--config", cfg, "--channel", "16"},
	} {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestDefaultLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	if got, want := defaultLogPath(), filepath.Join("/state", "plantasia", "plantasia.log"); got != want {
		t.Fatalf("defaultLogPath = %q, want %q", got, want)
	}
}
