package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appconfig "github.com/peptidedeals/peptidedeals_api/internal/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host: "db", Port: "5432", User: "peptides", Password: "p@ss:word/1", Name: "history", SSLMode: "require",
	})
	if !strings.HasPrefix(dsn, "postgres://peptides:p%40ss%3Aword%2F1@db:5432/history?") {
		t.Fatalf("dsn = %q", dsn)
	}
	if !strings.HasSuffix(dsn, "sslmode=require") {
		t.Fatalf("dsn = %q", dsn)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
	if backoff(40) != maxDelay {
		t.Fatalf("large attempts must cap")
	}
}

func TestConnectStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := Connect(ctx, &appconfig.DatabaseConfig{
		Host: "127.0.0.1", Port: "1", User: "u", Name: "n", SSLMode: "disable",
		ConnectAttempts: 5, ConnectTimeout: time.Second,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("cancelled connect kept retrying")
	}
}

func TestConnectNilConfig(t *testing.T) {
	if _, err := Connect(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}
