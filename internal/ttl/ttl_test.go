package ttl

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse_Units(t *testing.T) {
	cases := map[string]int64{
		"45s": 45,
		"1m":  60,
		"30m": 1800,
		"1h":  3600,
		"6h":  21600,
		"24h": 86400,
		"1d":  86400,
		"7d":  604800,
		"1w":  604800,
		"2w":  1209600,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{
		"", "abc", "10", "h", "0h", "0d", "10x", "-5m",
		" 1h", "1h ", "\t1h", "1h\n", "1.5h", "1 h",
	} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidTTL) {
			t.Fatalf("Parse(%q): expected ErrInvalidTTL, got %v", in, err)
		}
	}
}

func TestParse_Overflow(t *testing.T) {
	for _, in := range []string{"9999999999w", "3000000000s", "99999999999999999999d"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidTTL) {
			t.Fatalf("Parse(%q): expected ErrInvalidTTL, got %v", in, err)
		}
	}

	// 2^31 seconds is the inclusive maximum.
	if _, err := Parse("2147483648s"); err != nil {
		t.Fatalf("Parse at limit: %v", err)
	}
	if _, err := Parse("2147483649s"); !errors.Is(err, ErrInvalidTTL) {
		t.Fatal("expected overflow past 2^31 seconds")
	}
}

// Parsing a duration, rendering it by the same grammar, and re-parsing
// yields the original seconds count.
func TestParse_RenderRoundTrip(t *testing.T) {
	for _, in := range []string{"45s", "30m", "6h", "7d", "2w", "90m", "36h"} {
		secs, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		again, err := Parse(fmt.Sprintf("%ds", secs))
		if err != nil {
			t.Fatalf("re-parse of %q: %v", in, err)
		}
		if again != secs {
			t.Fatalf("round-trip of %q: got %d, want %d", in, again, secs)
		}
	}
}

func TestExpiresAt(t *testing.T) {
	got, err := ExpiresAt(1000, 3600)
	if err != nil {
		t.Fatalf("ExpiresAt: %v", err)
	}
	if got != 4600 {
		t.Fatalf("ExpiresAt = %d, want 4600", got)
	}

	if _, err := ExpiresAt(1<<62, 1<<62); !errors.Is(err, ErrInvalidTTL) {
		t.Fatal("expected overflow error")
	}
}

func TestIsExpired(t *testing.T) {
	expiry := int64(1000)

	if IsExpired(&expiry, 500) {
		t.Fatal("not yet expired at 500")
	}
	if IsExpired(&expiry, 999) {
		t.Fatal("not yet expired at 999")
	}
	if !IsExpired(&expiry, 1000) {
		t.Fatal("expired at exactly 1000")
	}
	if !IsExpired(&expiry, 1001) {
		t.Fatal("expired at 1001")
	}
	if IsExpired(nil, 1<<62) {
		t.Fatal("nil expiry never expires")
	}
}

// is-expired is monotone non-decreasing in now.
func TestIsExpired_Monotonic(t *testing.T) {
	expiry := int64(5000)
	expired := false
	for now := int64(4990); now <= 5010; now++ {
		cur := IsExpired(&expiry, now)
		if expired && !cur {
			t.Fatalf("expiry went backwards at now=%d", now)
		}
		expired = cur
	}
	if !expired {
		t.Fatal("secret never expired")
	}
}

func TestHumanize(t *testing.T) {
	cases := map[int64]string{
		0:      "0s",
		30:     "30s",
		59:     "59s",
		60:     "1m",
		90:     "1m",
		3600:   "1h",
		3660:   "1h 1m",
		86400:  "1d",
		90000:  "1d 1h",
		93780:  "1d 2h 3m",
		604800: "7d",
	}
	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Fatalf("Humanize(%d) = %q, want %q", in, got, want)
		}
	}

	if got := Humanize(-5); got != "0s" {
		t.Fatalf("negative remaining: got %q", got)
	}
}
