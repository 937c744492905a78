package lit

import "testing"

func TestMagicTableIsComplete(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < MagicCount(); i++ {
		id := MagicStringID(i)
		s := id.String()
		if i != int(MagicEmpty) && s == "" {
			t.Fatalf("magic string %d has no text", i)
		}
		if seen[s] {
			t.Fatalf("duplicate magic string %q", s)
		}
		seen[s] = true
		got, ok := LookupMagic(s)
		if !ok || got != id {
			t.Fatalf("LookupMagic(%q) = %d, %v", s, got, ok)
		}
	}
	if MagicStringID(MagicCount()).Valid() {
		t.Fatal("out of range id reported valid")
	}
	if _, ok := LookupMagic("no such builtin"); ok {
		t.Fatal("unexpected magic string")
	}
}

func TestParseUintNumeral(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false},
		{"99999999999", 0, false},
		{"007", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{" 1", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseUintNumeral(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseUintNumeral(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
		if ok && FormatUintNumeral(got) != tc.in {
			t.Fatalf("numeral %q is not canonical", tc.in)
		}
	}
}
