package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, Options{Level: slog.LevelDebug, NoColor: true}))

	log.Info("Crime resolved", slog.String("type", "game"), slog.String("player", "p1"))

	got := buf.String()
	for _, want := range []string{"[Gangland]", "[INFO]", "[GAME]", "Crime resolved", "player=p1"} {
		if !strings.Contains(got, want) {
			t.Errorf("line %q is missing %q", got, want)
		}
	}
	if strings.Contains(got, "type=") {
		t.Errorf("line %q prints the type attribute", got)
	}
}

func TestHandlerErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, Options{NoColor: true}))

	log.Error("Failed to persist action",
		slog.String("type", "db"),
		slog.String("error_location", "repo.go:12"),
		slog.String("error", errors.New("connection reset").Error()))

	got := buf.String()
	if !strings.Contains(got, "[DB] Failed to persist action (repo.go:12): connection reset") {
		t.Errorf("line = %q", got)
	}
}

func TestHandlerLevelAndNoise(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, Options{Level: slog.LevelInfo, NoColor: true}))

	log.Debug("hidden")
	log.Info("new request to discord")
	if buf.Len() != 0 {
		t.Errorf("expected nothing, got %q", buf.String())
	}
}

func TestHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, Options{NoColor: true})).With(slog.String("type", "api"))

	log.Warn("Rate limited", slog.String("ip", "10.0.0.1"))

	if got := buf.String(); !strings.Contains(got, "[WARN] [API] Rate limited ip=10.0.0.1") {
		t.Errorf("line = %q", got)
	}
}
