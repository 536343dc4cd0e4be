package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "ISO", in: "2023-06-15", want: New(2023, time.June, 15)},
		{name: "lenient single digits", in: "2025-7-1", want: New(2025, time.July, 1)},
		{name: "garbage", in: "yesterday", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseCompact(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "regular closing date", in: "20230615", want: New(2023, time.June, 15)},
		{name: "all-zero marker", in: "00000000", wantErr: true},
		{name: "too short", in: "2023", wantErr: true},
		{name: "not a date", in: "20231345", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCompact(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCompact(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if got != tc.want {
				t.Errorf("ParseCompact(%q) = %v, want %v", tc.in, got, tc.want)
			}
			if got.Year() != 2023 {
				t.Errorf("ParseCompact(%q).Year() = %d, want 2023", tc.in, got.Year())
			}
		})
	}
}

func TestString(t *testing.T) {
	got := New(2023, time.June, 5).String()
	want := "2023-06-05"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAdd(t *testing.T) {
	testCases := []struct {
		name string
		in   Date
		days int
		want Date
	}{
		{"next day", New(2023, time.June, 15), 1, New(2023, time.June, 16)},
		{"month rollover", New(2023, time.January, 31), 1, New(2023, time.February, 1)},
		{"year rollover", New(2023, time.December, 31), 1, New(2024, time.January, 1)},
		{"backwards", New(2024, time.March, 1), -1, New(2024, time.February, 29)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Add(tc.days); got != tc.want {
				t.Errorf("%v.Add(%d) = %v, want %v", tc.in, tc.days, got, tc.want)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2023, time.June, 15)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2023-06-15"` {
		t.Errorf("MarshalJSON() = %s, want %q", b, `"2023-06-15"`)
	}
	var got Date
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON(%s) error = %v", b, err)
	}
	if got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}
