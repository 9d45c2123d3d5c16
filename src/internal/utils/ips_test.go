package utils

import "testing"

func TestParsePrefixOrAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "203.0.113.0/24", want: "203.0.113.0/24"},
		{in: "203.0.113.7/24", want: "203.0.113.0/24"},
		{in: "10.0.0.1", want: "10.0.0.1/32"},
		{in: " 2001:db8::1 ", want: "2001:db8::1/128"},
		{in: "2001:db8::/32", want: "2001:db8::/32"},
		{in: "::ffff:192.0.2.1", want: "192.0.2.1/32"},
		{in: "::ffff:192.0.2.0/120", want: "192.0.2.0/24"},
		{in: "not-an-ip", wantErr: true},
		{in: "10.0.0.0/33", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrefixOrAddr(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParsePrefixOrAddr(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
