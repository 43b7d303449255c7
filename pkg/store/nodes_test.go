package store

import (
	"testing"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

func TestNodeStorePutReplacesWholesale(t *testing.T) {
	s := NewNodeStore()

	s.Put(models.NodeInfo{Num: 1, ShortName: "AAA", LongName: "Alpha", LastHeard: 100})
	s.Put(models.NodeInfo{Num: 2, ShortName: "BBB", LongName: "Bravo", LastHeard: 200})
	s.Put(models.NodeInfo{Num: 1, ShortName: "AA2", LastHeard: 300})

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	n, ok := s.Get(1)
	if !ok {
		t.Fatal("node 1 not found")
	}
	if n.ShortName != "AA2" {
		t.Errorf("ShortName = %q, want %q", n.ShortName, "AA2")
	}
	// Replacement is wholesale: the old long name must not survive.
	if n.LongName != "" {
		t.Errorf("LongName = %q, want empty after replacement", n.LongName)
	}
	if n.LastHeard != 300 {
		t.Errorf("LastHeard = %d, want 300", n.LastHeard)
	}
}

func TestNodeStoreDisplayName(t *testing.T) {
	s := NewNodeStore()
	s.Put(models.NodeInfo{Num: 7, ShortName: "GW1"})
	s.Put(models.NodeInfo{Num: 8})

	tests := []struct {
		num      uint32
		fallback string
		want     string
	}{
		{7, "!00000007", "GW1"},
		{8, "!00000008", "!00000008"}, // known but unnamed
		{9, "!00000009", "!00000009"}, // unknown
	}

	for _, tt := range tests {
		if got := s.DisplayName(tt.num, tt.fallback); got != tt.want {
			t.Errorf("DisplayName(%d) = %q, want %q", tt.num, got, tt.want)
		}
	}
}
