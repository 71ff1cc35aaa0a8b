package repository

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func TestTreap_InOrderTraversal(t *testing.T) {
	var root *inode

	// Insert timestamps out of order.
	timestamps := []int64{50, 10, 90, 30, 70, 20, 80}
	for i, ts := range timestamps {
		root = insert(root, ts, uint64(i+1), rand.Uint64())
	}

	var got []int64
	collectRange(root, 0, 100, func(seq uint64) {
		got = append(got, timestamps[seq-1])
	})

	if len(got) != len(timestamps) {
		t.Fatalf("expected %d keys, got %d", len(timestamps), len(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }) {
		t.Errorf("traversal not in timestamp order: %v", got)
	}
}

func TestTreap_EqualTimestampsKeepAppendOrder(t *testing.T) {
	var root *inode

	const ts = int64(42)
	for seq := uint64(1); seq <= 10; seq++ {
		root = insert(root, ts, seq, rand.Uint64())
	}

	var got []uint64
	collectRange(root, ts, ts, func(seq uint64) {
		got = append(got, seq)
	})

	if len(got) != 10 {
		t.Fatalf("expected 10 keys, got %d", len(got))
	}
	for i, seq := range got {
		if seq != uint64(i+1) {
			t.Fatalf("append order broken at index %d: %v", i, got)
		}
	}
}

func TestTreap_RangePruning(t *testing.T) {
	var root *inode

	for seq := uint64(1); seq <= 100; seq++ {
		root = insert(root, int64(seq*10), seq, rand.Uint64())
	}

	tests := []struct {
		name       string
		start, end int64
		want       int
	}{
		{"full window", 0, 2000, 100},
		{"interior window", 105, 495, 39},
		{"inclusive bounds", 100, 500, 41},
		{"single key", 330, 330, 1},
		{"before first", -100, 5, 0},
		{"after last", 1500, 2000, 0},
		{"inverted window", 500, 100, 0},
	}

	for _, tt := range tests {
		count := 0
		collectRange(root, tt.start, tt.end, func(uint64) { count++ })
		if count != tt.want {
			t.Errorf("%s: expected %d keys, got %d", tt.name, tt.want, count)
		}
	}
}

func TestTreap_SizeMaintained(t *testing.T) {
	var root *inode

	for seq := uint64(1); seq <= 1000; seq++ {
		root = insert(root, rand.Int64N(1_000_000), seq, rand.Uint64())
	}

	if isize(root) != 1000 {
		t.Errorf("expected size 1000, got %d", isize(root))
	}

	// The heap property must hold everywhere or lookups lose balance.
	var check func(n *inode)
	check = func(n *inode) {
		if n == nil {
			return
		}
		if n.left != nil && n.left.prio > n.prio {
			t.Fatal("heap property violated on left child")
		}
		if n.right != nil && n.right.prio > n.prio {
			t.Fatal("heap property violated on right child")
		}
		check(n.left)
		check(n.right)
	}
	check(root)
}
