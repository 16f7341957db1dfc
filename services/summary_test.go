package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestGenerateSummaryTruncatesLongContent(t *testing.T) {
	content := strings.Repeat("a", 400)
	summary := GenerateSummary(content)

	want := strings.Repeat("a", summaryPrefixLen) + summaryMarker
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestGenerateSummaryShortContentUsedWhole(t *testing.T) {
	content := "short post body"
	summary := GenerateSummary(content)

	want := content + summaryMarker
	if summary != want {
		t.Errorf("summary = %q, want %q", summary, want)
	}
}

func TestGenerateSummaryCountsRunesNotBytes(t *testing.T) {
	content := strings.Repeat("é", 200)
	summary := GenerateSummary(content)

	want := strings.Repeat("é", summaryPrefixLen) + summaryMarker
	if summary != want {
		t.Errorf("summary kept %d runes, want %d",
			len([]rune(strings.TrimSuffix(summary, summaryMarker))), summaryPrefixLen)
	}
}

func TestGenerateSummaryNeverSplitsRunes(t *testing.T) {
	content := "ab" + strings.Repeat("日", 200)
	summary := GenerateSummary(content)

	if !utf8.ValidString(summary) {
		t.Fatalf("summary contains invalid UTF-8: %q", summary)
	}

	prefix := strings.TrimSuffix(summary, summaryMarker)
	if got := len([]rune(prefix)); got != summaryPrefixLen {
		t.Errorf("prefix rune length = %d, want %d", got, summaryPrefixLen)
	}
}

func TestGenerateSummaryDeterministic(t *testing.T) {
	content := strings.Repeat("text ", 100)
	first := GenerateSummary(content)
	second := GenerateSummary(content)
	if first != second {
		t.Errorf("reprocessing produced a different summary: %q vs %q", first, second)
	}
}
