package llm

import "testing"

func TestKeyResolutionOrder(t *testing.T) {
	store := NewKeyStore("system-key", nil)

	// No session key: fall back to the system key.
	key, err := store.ResolveKey("s1")
	if err != nil || key != "system-key" {
		t.Fatalf("ResolveKey = %q, %v; want system-key", key, err)
	}

	// Session key overrides.
	store.SetSessionKey("s1", "session-key")
	key, err = store.ResolveKey("s1")
	if err != nil || key != "session-key" {
		t.Fatalf("ResolveKey = %q, %v; want session-key", key, err)
	}

	// Other sessions are unaffected.
	key, _ = store.ResolveKey("s2")
	if key != "system-key" {
		t.Fatalf("ResolveKey(s2) = %q, want system-key", key)
	}

	// Removal restores the fallback.
	store.RemoveSessionKey("s1")
	key, _ = store.ResolveKey("s1")
	if key != "system-key" {
		t.Fatalf("ResolveKey after removal = %q, want system-key", key)
	}
}

func TestKeyResolutionWithoutAnyKey(t *testing.T) {
	store := NewKeyStore("", nil)
	if _, err := store.ResolveKey("s1"); err == nil {
		t.Fatal("expected error when no key is configured")
	}
}
