package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBuild_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "production", "info")
	log.Info().Str("id", "42").Msg("patient created")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "patient created" || line["id"] != "42" || line["app"] != "clinic-api" {
		t.Fatalf("unexpected fields %v", line)
	}
}

func TestBuild_Level(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "production", "warn")
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %q", buf.String())
	}

	log = build(&buf, "production", "bogus")
	log.Info().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("unknown level must fall back to info")
	}
}
