package graft

import "testing"

func TestLoad_LookupParents(t *testing.T) {
	s, err := Load("childsha parent1 parent2\n# comment\n\nsoloroot\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	parents, ok := s.Lookup("childsha")
	if !ok {
		t.Fatal("Lookup(childsha) ok = false, want true")
	}
	if len(parents) != 2 || parents[0] != "parent1" || parents[1] != "parent2" {
		t.Fatalf("Lookup(childsha) = %v, want [parent1 parent2]", parents)
	}
}

func TestLoad_RootCommitHasNoParents(t *testing.T) {
	s, err := Load("soloroot\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	parents, ok := s.Lookup("soloroot")
	if !ok {
		t.Fatal("Lookup(soloroot) ok = false, want true")
	}
	if len(parents) != 0 {
		t.Fatalf("Lookup(soloroot) = %v, want empty", parents)
	}
}

func TestLookup_UnknownChild(t *testing.T) {
	s, err := Load("childsha parent1\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	if _, ok := s.Lookup("nosuchcommit"); ok {
		t.Fatal("Lookup(nosuchcommit) ok = true, want false")
	}
}

func TestLookup_NilStore(t *testing.T) {
	var s *Store
	if _, ok := s.Lookup("anything"); ok {
		t.Fatal("Lookup on a nil *Store should report ok = false")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close on a nil *Store should be a no-op: %v", err)
	}
}
