package config

import (
	"testing"
	"time"

	kit "gcsbridge/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	adobe := root.Prefix("ADOBE_")
	if got := adobe.key("CLIENT_ID"); got != "ADOBE_CLIENT_ID" {
		t.Fatalf("key() = %q, want %q", got, "ADOBE_CLIENT_ID")
	}
	// nested prefix
	ims := adobe.Prefix("IMS_")
	if got := ims.key("ORG_ID"); got != "ADOBE_IMS_ORG_ID" {
		t.Fatalf("nested key() = %q, want %q", got, "ADOBE_IMS_ORG_ID")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  gcsbridge ")
	if got := c.MustString("NAME"); got != "gcsbridge" {
		t.Fatalf("MustString = %q, want %q", got, "gcsbridge")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_LIMIT", "  10 ")
	if got := c.MustInt("LIMIT"); got != 10 {
		t.Fatalf("MustInt = %d, want %d", got, 10)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustDuration(t *testing.T) {
	c := New().Prefix("D_")
	t.Setenv("D_POLL", "30s")
	if got := c.MustDuration("POLL"); got != 30*time.Second {
		t.Fatalf("MustDuration = %v", got)
	}
	t.Setenv("D_BAD", "thirty")
	kit.MustPanic(t, func() { _ = c.MustDuration("BAD") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://events-va6.adobe.io")
	if got := c.MustURL("BASE"); got.Host != "events-va6.adobe.io" {
		t.Fatalf("MustURL host = %q", got.Host)
	}
	t.Setenv("U_REL", "events-fast/xyz")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("R_")
	t.Setenv("R_A", "1")
	t.Setenv("R_B", "2")
	kit.MustNotPanic(t, func() { c.Require("A", "B") })
	kit.MustPanic(t, func() { c.Require("A", "B", "C") })
}

// May* fall back

func TestMayString(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayString("NOPE", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("M_VAL", " x ")
	if got := c.MayString("VAL", "def"); got != "x" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayIntBoolDuration(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayInt("I", 7); got != 7 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("M_I", "4")
	if got := c.MayInt("I", 7); got != 4 {
		t.Fatalf("MayInt = %d", got)
	}
	t.Setenv("M_I_BAD", "zz")
	if got := c.MayInt("I_BAD", 7); got != 7 {
		t.Fatalf("MayInt invalid should default, got %d", got)
	}

	if c.MayBool("B", true) != true {
		t.Fatalf("MayBool default")
	}
	t.Setenv("M_B", "false")
	if c.MayBool("B", true) != false {
		t.Fatalf("MayBool parse")
	}

	if got := c.MayDuration("DUR", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("M_DUR", "250ms")
	if got := c.MayDuration("DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
}
