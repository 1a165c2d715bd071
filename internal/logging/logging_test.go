package logging

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("json"); got != FormatJSON {
		t.Errorf("ParseFormat(json) = %v", got)
	}
	if got := ParseFormat("text"); got != FormatText {
		t.Errorf("ParseFormat(text) = %v", got)
	}
	if got := ParseFormat("bogus"); got != FormatText {
		t.Errorf("ParseFormat(bogus) = %v", got)
	}
}

func TestInitLogger(t *testing.T) {
	InitLogger(LevelDebug, FormatJSON)
	if GetLogger() == nil {
		t.Fatal("GetLogger returned nil after InitLogger")
	}
	// Restore the default so other tests are unaffected.
	InitLogger(LevelInfo, FormatText)
}
