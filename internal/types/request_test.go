package types

import "testing"

func TestRequestJobIDRoundTrip(t *testing.T) {
	r, err := NewRequest("https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.JobID(); ok {
		t.Fatal("expected no job id before SetJobID")
	}
	r.SetJobID(7)
	jid, ok := r.JobID()
	if !ok || jid != 7 {
		t.Fatalf("expected job id 7, got %d (ok=%v)", jid, ok)
	}
}

func TestNewRequestInvalidURL(t *testing.T) {
	if _, err := NewRequest("://bad"); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestRequestCloneIsIndependent(t *testing.T) {
	r, _ := NewRequest("https://example.com/")
	r.Meta["k"] = "v"

	clone := r.Clone()
	clone.Meta["k"] = "changed"

	if r.Meta["k"] != "v" {
		t.Errorf("expected original meta unaffected by clone mutation, got %v", r.Meta["k"])
	}
}

func TestRequestDomain(t *testing.T) {
	r, _ := NewRequest("https://sub.example.com/path")
	if got := r.Domain(); got != "sub.example.com" {
		t.Errorf("expected sub.example.com, got %q", got)
	}
}
