package services

import (
	"testing"

	"github.com/velora-app/velora-backend/internal/platform/logger"
)

func testLocalizer(t *testing.T) Localizer {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return NewLocalizer(log)
}

func TestLocalizerTranslates(t *testing.T) {
	l := testLocalizer(t)
	if got := l.T("de", "notify.match_new", "Anna"); got != "Du hast ein Match mit Anna" {
		t.Fatalf("de translation: %q", got)
	}
	if got := l.T("en", "notify.like_received"); got != "Someone liked you" {
		t.Fatalf("en translation: %q", got)
	}
}

func TestLocalizerFallsBackToEnglish(t *testing.T) {
	l := testLocalizer(t)
	if got := l.T("pt", "notify.like_received"); got != "Someone liked you" {
		t.Fatalf("fallback translation: %q", got)
	}
	if got := l.T("de-DE", "notify.like_received"); got != "Jemand hat dich geliked" {
		t.Fatalf("region variant should resolve to base language: %q", got)
	}
}

func TestLocalizerUnknownKeyReturnsKey(t *testing.T) {
	l := testLocalizer(t)
	if got := l.T("en", "notify.unknown"); got != "notify.unknown" {
		t.Fatalf("unknown key: %q", got)
	}
}
