package raw

import "testing"

func TestGet(t *testing.T) {
	c := New().Prefix("LOG_")
	if got := c.Get("LEVEL", "info"); got != "info" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("LOG_LEVEL", "  debug ")
	if got := c.Get("LEVEL", "info"); got != "debug" {
		t.Fatalf("Get = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	if c.GetBool("CALLER", false) {
		t.Fatalf("default bool")
	}
	for _, v := range []string{"1", "true", "yes"} {
		t.Setenv("LOG_CALLER", v)
		if !c.GetBool("CALLER", false) {
			t.Fatalf("GetBool(%q) = false", v)
		}
	}
	t.Setenv("LOG_CALLER", "no")
	if c.GetBool("CALLER", true) {
		t.Fatalf("GetBool(no) = true")
	}
}

func TestGetInt(t *testing.T) {
	c := New()
	if got := c.GetInt("N", 3); got != 3 {
		t.Fatalf("default int = %d", got)
	}
	t.Setenv("N", "42")
	if got := c.GetInt("N", 3); got != 42 {
		t.Fatalf("GetInt = %d", got)
	}
	t.Setenv("N", "-1")
	if got := c.GetInt("N", 3); got != 3 {
		t.Fatalf("non-numeric should default, got %d", got)
	}
}
