package service

import (
	"testing"
	"time"
)

type shareCfgStub struct{}

func (shareCfgStub) GetAppBaseURL() string           { return "https://portal.example.com/" }
func (shareCfgStub) GetShareTokenTTL() time.Duration { return 14 * 24 * time.Hour }

func TestShareURL_TrimsTrailingSlash(t *testing.T) {
	svc := &Service{shareCfg: shareCfgStub{}}

	got := svc.shareURL("abc123")
	want := "https://portal.example.com/public/orders/abc123"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGenerateShareToken_HexAndUnique(t *testing.T) {
	first, err := generateShareToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	for _, ch := range first {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			t.Fatalf("unexpected character %q in token", ch)
		}
	}

	second, err := generateShareToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
}
