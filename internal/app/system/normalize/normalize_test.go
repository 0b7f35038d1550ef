package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"host@example.com":        "host@example.com",
		"Host@Example.COM":        "host@example.com",
		"  admin@gatherly.test\n": "admin@gatherly.test",
		"":                        "",
		"   ":                     "",
	}
	for in, want := range cases {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOption(t *testing.T) {
	cases := map[string]string{
		"mongo":      "mongo",
		" Postgres ": "postgres",
		"MEMORY":     "memory",
		"\tall\n":    "all",
		"":           "",
	}
	for in, want := range cases {
		if got := Option(in); got != want {
			t.Errorf("Option(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"inv-ab12cdlx2k9a0f":   "inv-ab12cdlx2k9a0f",
		"INV-AB12CDLX2K9A0F":   "inv-ab12cdlx2k9a0f",
		" inv-ab12cdlx2k9a0f ": "inv-ab12cdlx2k9a0f",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
