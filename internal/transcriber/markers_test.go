package transcriber

import "testing"

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     string
	}{
		{
			name: "one segment per minute",
			segments: []Segment{
				{Start: 0, Text: "Hello"},
				{Start: 65, Text: "World"},
				{Start: 130, Text: "Again"},
			},
			want: "[00:00]\nHello\n[01:00]\nWorld\n[02:00]\nAgain",
		},
		{
			name:     "no segments",
			segments: nil,
			want:     "",
		},
		{
			name: "same minute shares one marker",
			segments: []Segment{
				{Start: 5, Text: "first"},
				{Start: 40, Text: "second"},
			},
			want: "[00:00]\nfirst\nsecond",
		},
		{
			name: "text is trimmed",
			segments: []Segment{
				{Start: 1.5, Text: "  padded text \n"},
			},
			want: "[00:00]\npadded text",
		},
		{
			name: "skipped minutes get no marker",
			segments: []Segment{
				{Start: 10, Text: "a"},
				{Start: 301, Text: "b"},
			},
			want: "[00:00]\na\n[05:00]\nb",
		},
		{
			name: "minute boundary is exact",
			segments: []Segment{
				{Start: 59.999, Text: "a"},
				{Start: 60, Text: "b"},
			},
			want: "[00:00]\na\n[01:00]\nb",
		},
		{
			name: "minutes above 59 keep counting",
			segments: []Segment{
				{Start: 3600, Text: "hour"},
				{Start: 6000, Text: "later"},
			},
			want: "[60:00]\nhour\n[100:00]\nlater",
		},
		{
			name: "out of order input follows visiting order",
			segments: []Segment{
				{Start: 70, Text: "b"},
				{Start: 10, Text: "a"},
				{Start: 75, Text: "c"},
			},
			want: "[01:00]\nb\n[00:00]\na\n[01:00]\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Annotate(tt.segments); got != tt.want {
				t.Errorf("Annotate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMinuteMarker(t *testing.T) {
	if got := MinuteMarker(7); got != "[07:00]" {
		t.Errorf("MinuteMarker(7) = %q", got)
	}
	if got := MinuteMarker(123); got != "[123:00]" {
		t.Errorf("MinuteMarker(123) = %q", got)
	}
}
