package cmd

import (
	"database/sql"
	"testing"
)

func TestEuros(t *testing.T) {
	testCases := []struct {
		name string
		in   sql.NullString
		want string // "" means nil expected
	}{
		{"integer euros", sql.NullString{String: "123456", Valid: true}, "123456"},
		{"decimal euros", sql.NullString{String: "-50.5", Valid: true}, "-50.5"},
		{"null", sql.NullString{}, ""},
		{"garbage", sql.NullString{String: "n/a", Valid: true}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := euros(tc.in)
			if tc.want == "" {
				if got != nil {
					t.Errorf("euros(%q) = %v, want nil", tc.in.String, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("euros(%q) = nil", tc.in.String)
			}
			if got.Decimal().String() != tc.want {
				t.Errorf("euros(%q) = %s, want %s", tc.in.String, got.Decimal(), tc.want)
			}
		})
	}
}
