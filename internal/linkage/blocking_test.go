package linkage

import "testing"

func TestNewBlockingKeys(t *testing.T) {
	cases := []struct {
		author  string
		surname string
		prefix  string
		ok      bool
	}{
		{"Cormac McCarthy", "mccarthy", "mccar", true},
		{"Ursula K. Le Guin", "guin", "guin", true},
		{"Plato", "plato", "plato", true},
		{"  Toni   Morrison  ", "morrison", "morri", true},
		{"Gabriel García Márquez", "márquez", "márqu", true},
		{"", "", "", false},
		{"   ", "", "", false},
	}
	for _, tc := range cases {
		keys, ok := NewBlockingKeys(tc.author)
		if ok != tc.ok {
			t.Fatalf("NewBlockingKeys(%q): ok = %v, want %v", tc.author, ok, tc.ok)
		}
		if keys.Surname != tc.surname || keys.Prefix != tc.prefix {
			t.Fatalf("NewBlockingKeys(%q) = %+v, want surname %q prefix %q",
				tc.author, keys, tc.surname, tc.prefix)
		}
	}
}
