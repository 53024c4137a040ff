package country

import "testing"

func TestResolve_CaseInsensitive(t *testing.T) {
	for _, code := range []string{"us", "US", " uS "} {
		resolved, ok := Resolve(code)
		if !ok {
			t.Fatalf("expected %q to resolve", code)
		}
		if resolved.Alpha2 != "US" {
			t.Fatalf("expected canonical US, got %q", resolved.Alpha2)
		}
	}
}

func TestResolve_Unknown(t *testing.T) {
	if _, ok := Resolve("XX"); ok {
		t.Fatalf("expected XX to be unknown")
	}
	if _, ok := Resolve(""); ok {
		t.Fatalf("expected empty code to be unknown")
	}
}
