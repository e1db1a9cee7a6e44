package log

import (
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelTrace + 1, "trace+1"},
		{LevelDebug, "debug"},
		{LevelInfo + 2, "info+2"},
		{LevelError, "error"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

func TestLevel_Text(t *testing.T) {
	t.Parallel()

	var l Level
	if err := l.UnmarshalText([]byte("warn")); err != nil || l != LevelWarn {
		t.Errorf("UnmarshalText(warn) = %v, %v", l, err)
	}

	b, _ := LevelDebug.MarshalText()
	if string(b) != "debug" {
		t.Errorf("MarshalText = %q", b)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var f Format
	if err := f.UnmarshalText([]byte("json")); err != nil || f != FormatJSON {
		t.Errorf("UnmarshalText(json) = %v, %v", f, err)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"json", "text"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelWarn || c.format != FormatJSON || !c.caller || c.pretty {
		t.Errorf("apply produced %+v", c)
	}

	if c.mutex == nil {
		t.Error("options did not allocate a mutex")
	}
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 9, 14, 5, 6, 7_000_000, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-09T14:05:06Z"},
		{"rfc-3339", "2024-03-09T14:05:06Z"},
		{"kitchen", "2:05PM"},
		{"ms", "Mar  9 14:05:06.007"},
		{"2006/01/02", "2024/03/09"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := makeFormatTimeFunc(tt.layout)(at); got != tt.want {
			t.Errorf("layout %q: got %q, want %q", tt.layout, got, tt.want)
		}
	}
}
