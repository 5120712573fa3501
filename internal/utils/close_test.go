package utils

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

func TestCloseLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := logger.FromZap(zap.New(core))

	CloseLogged(CloserFunc(func() error { return nil }), "ok", log)
	if logs.Len() != 0 {
		t.Fatalf("clean close logged %d entries", logs.Len())
	}

	CloseLogged(CloserFunc(func() error { return errors.New("boom") }), "redis", log)
	entries := logs.All()
	if len(entries) != 1 || entries[0].ContextMap()["component"] != "redis" {
		t.Errorf("unexpected log entries %+v", entries)
	}
}

func TestClose(t *testing.T) {
	called := false
	Close(CloserFunc(func() error { called = true; return errors.New("ignored") }))
	if !called {
		t.Error("Close() did not call the closer")
	}
}
