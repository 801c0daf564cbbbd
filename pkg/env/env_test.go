package env

import "testing"

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("MYCREW_TEST_VALUE", "   ")
	if got := Get("MYCREW_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("MYCREW_TEST_VALUE", "set")
	if got := Get("MYCREW_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("MYCREW_TEST_FLAG", "true")
	if !Bool("MYCREW_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("MYCREW_TEST_FLAG", "nope")
	if !Bool("MYCREW_TEST_FLAG", true) {
		t.Fatalf("expected fallback for invalid value")
	}
}
