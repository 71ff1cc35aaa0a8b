package repository

// Treap-based timestamp index shared by the event and research logs.
//
// Ordering: insert timestamp ASC, then sequence number ASC. Sequence numbers
// are assigned at append time, so in-order traversal yields chronological
// order and ties between equal timestamps resolve to append order. Range
// scans prune whole subtrees outside the window, so a window query costs
// O(log n + k) rather than a full-store scan.

// inode is one treap node keying a stored record by (timestamp, sequence).
type inode struct {
	ts    int64 // unix nanoseconds
	seq   uint64
	prio  uint64
	left  *inode
	right *inode
	size  int
}

func isize(n *inode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func ifix(n *inode) {
	if n != nil {
		n.size = 1 + isize(n.left) + isize(n.right)
	}
}

// before reports whether (aTS, aSeq) orders before (bTS, bSeq).
func before(aTS int64, aSeq uint64, bTS int64, bSeq uint64) bool {
	if aTS != bTS {
		return aTS < bTS
	}
	return aSeq < bSeq
}

func rotateRight(y *inode) *inode {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	ifix(y)
	ifix(x)
	return x
}

func rotateLeft(x *inode) *inode {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	ifix(x)
	ifix(y)
	return y
}

// insert adds a key with the given heap priority, rebalancing by rotation.
func insert(n *inode, ts int64, seq uint64, prio uint64) *inode {
	if n == nil {
		return &inode{ts: ts, seq: seq, prio: prio, size: 1}
	}
	if before(ts, seq, n.ts, n.seq) {
		n.left = insert(n.left, ts, seq, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, ts, seq, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	ifix(n)
	return n
}

// collectRange visits sequence numbers of keys with startTS <= ts <= endTS in
// chronological order, pruning subtrees wholly outside the window.
func collectRange(n *inode, startTS, endTS int64, visit func(seq uint64)) {
	if n == nil {
		return
	}
	if n.ts >= startTS {
		collectRange(n.left, startTS, endTS, visit)
	}
	if n.ts >= startTS && n.ts <= endTS {
		visit(n.seq)
	}
	if n.ts <= endTS {
		collectRange(n.right, startTS, endTS, visit)
	}
}
