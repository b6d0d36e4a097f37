package domain

import (
	"testing"
	"time"
)

func TestParseDocumentStatusAcceptsLegacyLiterals(t *testing.T) {
	cases := map[string]DocumentStatus{
		"analyzed":   StatusAnalyzed,
		"complete":   StatusAnalyzed,
		"विश्लेषित":   StatusAnalyzed,
		"प्रगति में":  StatusProcessing,
		" Uploading": StatusUploading,
		"error":      StatusError,
	}
	for raw, want := range cases {
		got, err := ParseDocumentStatus(raw)
		if err != nil {
			t.Fatalf("ParseDocumentStatus(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseDocumentStatus(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseDocumentStatus("उच्च जोखिम"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown literal, got %v", err)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	if StatusAnalyzed.CanAdvanceTo(StatusProcessing) {
		t.Fatalf("analyzed must not revert to processing")
	}
	if StatusProcessing.CanAdvanceTo(StatusUploading) {
		t.Fatalf("processing must not revert to uploading")
	}
	if !StatusUploading.CanAdvanceTo(StatusAnalyzed) {
		t.Fatalf("uploading should advance to analyzed")
	}
	if !StatusAnalyzed.CanAdvanceTo(StatusError) {
		t.Fatalf("error must be reachable from analyzed")
	}
	if !StatusError.CanAdvanceTo(StatusAnalyzed) {
		t.Fatalf("re-analysis should lift error to analyzed")
	}
	if StatusError.CanAdvanceTo(StatusProcessing) {
		t.Fatalf("error must not move back to processing")
	}
	if StatusAnalyzed.CanAdvanceTo(DocumentStatus("done")) {
		t.Fatalf("unknown status must be rejected")
	}
}

func TestRateLimitErrorMatchesSentinel(t *testing.T) {
	err := WrapError(ErrUpload, "upload", &RateLimitError{RetryAfter: DefaultRetryAfter})
	if !IsKind(err, ErrRateLimited) {
		t.Fatalf("expected rate limit sentinel in chain: %v", err)
	}
}

func TestPipelineErrorRetryAfterSecondsRoundsUp(t *testing.T) {
	pe := &PipelineError{Kind: KindRateLimit, Message: "slow down", RetryAfter: 1500 * time.Millisecond}
	if got := pe.RetryAfterSeconds(); got != 2 {
		t.Fatalf("expected 2 seconds, got %d", got)
	}
	if (&PipelineError{}).RetryAfterSeconds() != 0 {
		t.Fatalf("expected zero retry-after without hint")
	}
}
