package core

import "testing"

func TestRegistryLookupUnknownSentinel(t *testing.T) {
	registry := NewRegistry()

	name, status := registry.Lookup("ghost")
	if name != UnknownName || status != StatusOffline {
		t.Fatalf("unexpected sentinel: %q %q", name, status)
	}
}

func TestRegistrySetNameIgnoresUnknownID(t *testing.T) {
	registry := NewRegistry()
	registry.SetName("ghost", "casper") // must not panic or create a record

	if registry.Len() != 0 {
		t.Fatalf("set name created a record: %d", registry.Len())
	}
}

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry()
	alice := NewClient("a")
	registry.Register(alice)

	registry.SetName("a", "alice")
	name, status := registry.Lookup("a")
	if name != "alice" || status != StatusOnline {
		t.Fatalf("unexpected lookup: %q %q", name, status)
	}

	registry.MarkOffline("a")
	if snap := registry.Snapshot(); snap["a"].Status != StatusOffline {
		t.Fatalf("expected offline in snapshot: %+v", snap)
	}

	registry.Remove("a")
	if registry.Len() != 0 {
		t.Fatal("record not removed")
	}
	name, _ = registry.Lookup("a")
	if name != UnknownName {
		t.Fatalf("expected sentinel after removal, got %q", name)
	}
}
