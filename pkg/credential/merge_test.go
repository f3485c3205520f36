package credential

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc123", "XASSESSIONID=abc123"},
		{"  abc123 ", "XASSESSIONID=abc123"},
		{"XASSESSIONID=abc123", "XASSESSIONID=abc123"},
		{"other=1; XASSESSIONID=2", "other=1; XASSESSIONID=2"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeServerOverridesExternal(t *testing.T) {
	jar := Merge("XASSESSIONID=old; theme=dark", []string{
		"XASSESSIONID=new; Path=/; HttpOnly",
		"XASID=0.42; Path=/",
	})

	if got, _ := jar.Get("XASSESSIONID"); got != "new" {
		t.Errorf("XASSESSIONID = %q, want server value %q", got, "new")
	}
	if got := jar.Header(); got != "XASSESSIONID=new; theme=dark; XASID=0.42" {
		t.Errorf("Header() = %q", got)
	}
}

func TestMergeBareExternal(t *testing.T) {
	jar := Merge("abc123", nil)
	if got := jar.Header(); got != "XASSESSIONID=abc123" {
		t.Errorf("Header() = %q, want XASSESSIONID=abc123", got)
	}
}

func TestMergeServerOnly(t *testing.T) {
	jar := Merge("", []string{"XASSESSIONID=abc123; Path=/; Secure"})
	if got := jar.Header(); got != "XASSESSIONID=abc123" {
		t.Errorf("Header() = %q, want XASSESSIONID=abc123", got)
	}
}

func TestMergeEmpty(t *testing.T) {
	jar := Merge("", nil)
	if jar.Len() != 0 {
		t.Errorf("expected empty jar, got %d cookies", jar.Len())
	}
	if jar.Header() != "" {
		t.Errorf("expected empty header, got %q", jar.Header())
	}
}

func TestMergeKeysAreCaseSensitive(t *testing.T) {
	jar := Merge("session=a", []string{"Session=b"})
	if !reflect.DeepEqual(jar.Names(), []string{"session", "Session"}) {
		t.Errorf("Names() = %v", jar.Names())
	}
}

func TestMergeSkipsAttributesAndGarbage(t *testing.T) {
	jar := Merge("XASSESSIONID=abc; Path=/", []string{"", "; ;"})
	if !reflect.DeepEqual(jar.Names(), []string{"XASSESSIONID"}) {
		t.Errorf("Names() = %v, want [XASSESSIONID]", jar.Names())
	}
}

func TestJarSetKeepsPosition(t *testing.T) {
	jar := NewJar()
	jar.Set("a", "1")
	jar.Set("b", "2")
	jar.Set("a", "3")
	if got := jar.Header(); got != "a=3; b=2" {
		t.Errorf("Header() = %q, want a=3; b=2", got)
	}
}
