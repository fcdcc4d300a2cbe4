package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	in := payload{Name: "garment", Count: 3}
	Save(s, "k", in)

	out := Load(s, "k", payload{})
	if out != in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name  string
		setup func()
	}{
		{name: "missing key", setup: func() {}},
		{
			name: "malformed value",
			setup: func() {
				if err := s.Put("k", "{not json"); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			got := Load(s, "k", 42)
			if got != 42 {
				t.Errorf("Expected default 42, got %d", got)
			}
		})
	}
}

func TestSaveEmptyRemovesKey(t *testing.T) {
	tests := []struct {
		name string
		save func(s *Store)
	}{
		{name: "nil pointer", save: func(s *Store) { Save[*int](s, "k", nil) }},
		{name: "nil slice", save: func(s *Store) { Save[[]string](s, "k", nil) }},
		{name: "empty slice", save: func(s *Store) { Save(s, "k", []string{}) }},
		{name: "empty string", save: func(s *Store) { Save(s, "k", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			Save(s, "k", "something")
			if _, ok, _ := s.Get("k"); !ok {
				t.Fatal("Expected key to exist before erasure")
			}

			tt.save(s)

			if _, ok, _ := s.Get("k"); ok {
				t.Error("Expected key to be removed, but it exists")
			}
			got := Load(s, "k", "fallback")
			if got != "fallback" {
				t.Errorf("Expected fallback after erasure, got %q", got)
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	Save(s, "k", []int{1, 2})
	Save(s, "k", []int{3})

	got := Load[[]int](s, "k", nil)
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("Expected [3], got %v", got)
	}
}

func TestKeys(t *testing.T) {
	s := openTestStore(t)

	Save(s, "fitroom:a", 1)
	Save(s, "fitroom:b", 2)
	Save(s, "other", 3)

	keys, err := s.Keys("fitroom:%")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %d: %v", len(keys), keys)
	}
}
