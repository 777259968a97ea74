// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// Hash, hash-chain, and binary-tree match tables, window-position indexed,
// shared by the match-finder strategy family. Generalized from a single
// rolling window to the (lowLimit, dictLimit, nextSrc) model in window.go,
// and from a single next-match chase to chain/tree search depths.

// hash4/hash3/hash6/hash8 are multiplicative hashes over the low N bytes of
// a little-endian read, each using a distinct odd prime so the same input
// bytes don't collide identically across table kinds.
const (
	hashPrime3 = 506832829
	hashPrime4 = 2654435761
	hashPrime5 = 889523592379
	hashPrime6 = 227718039650203
	hashPrime8 = 0xCF1BBCDCB7A56463
)

func hash3(data []byte, log uint) uint32 {
	v := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	return (v * hashPrime3) >> (32 - log)
}

func hash4(data []byte, log uint) uint32 {
	v := getUint32LE(data)
	return (v * hashPrime4) >> (32 - log)
}

func hash5(data []byte, log uint) uint32 {
	v := uint64(getUint32LE(data)) | uint64(data[4])<<32
	return uint32((v * hashPrime5) >> (64 - log))
}

func hash6(data []byte, log uint) uint32 {
	v := uint64(getUint32LE(data)) | uint64(data[4])<<32 | uint64(data[5])<<40
	return uint32((v * hashPrime6) >> (64 - log))
}

func hash8(data []byte, log uint) uint32 {
	v := getUint64LE(data)
	return uint32((v * hashPrime8) >> (64 - log))
}

// hashOfLen dispatches to the matching hash width. No strategy calls it;
// every match finder hashes 4 bytes with hash4 (and dfast also hash3).
func hashOfLen(data []byte, log uint, n int) uint32 {
	switch n {
	case 3:
		return hash3(data, log)
	case 4:
		return hash4(data, log)
	case 5:
		return hash5(data, log)
	case 6:
		return hash6(data, log)
	default:
		return hash8(data, log)
	}
}

// hashTable is the single-candidate table used by the fast strategy: one
// slot per hash bucket holding only the most recent position.
type hashTable struct {
	log   uint
	slots []uint32
}

func newHashTable(log uint) *hashTable {
	return &hashTable{log: log, slots: make([]uint32, 1<<log)}
}

func (h *hashTable) lookup(hv uint32) uint32 { return h.slots[hv] }
func (h *hashTable) insert(hv uint32, pos uint32) { h.slots[hv] = pos }
func (h *hashTable) reset() {
	for i := range h.slots {
		h.slots[i] = 0
	}
}

// chainTable adds a singly-linked history per bucket on top of hashTable:
// insert(pos) records prev[pos & mask] = current head before overwriting the
// head, so callers can walk backward through same-hash positions up to a
// caller-supplied search depth. Used by greedy/lazy/lazy2 and by the
// btlazy2/btopt/btultra/btultra2 family.
type chainTable struct {
	hashLog  uint
	chainLog uint
	heads    []uint32
	prev     []uint32 // indexed by pos & (1<<chainLog - 1)
}

func newChainTable(hashLog, chainLog uint) *chainTable {
	return &chainTable{
		hashLog:  hashLog,
		chainLog: chainLog,
		heads:    make([]uint32, 1<<hashLog),
		prev:     make([]uint32, 1<<chainLog),
	}
}

func (c *chainTable) chainMask() uint32 { return uint32(1)<<c.chainLog - 1 }

// insert records pos as the new head for hv, chaining the old head.
func (c *chainTable) insert(hv uint32, pos uint32) {
	c.prev[pos&c.chainMask()] = c.heads[hv]
	c.heads[hv] = pos
}

// next walks one step back in the chain from pos, returning 0 (an invalid,
// pre-window position) once the chain is exhausted by the caller's lowLimit
// check — callers must stop once the returned position is below lowLimit.
func (c *chainTable) next(pos uint32) uint32 { return c.prev[pos&c.chainMask()] }

func (c *chainTable) head(hv uint32) uint32 { return c.heads[hv] }

func (c *chainTable) reset() {
	for i := range c.heads {
		c.heads[i] = 0
	}
	for i := range c.prev {
		c.prev[i] = 0
	}
}

// binaryTree is an ordered search structure per hash bucket: a binary search
// tree over suffixes, keyed by lexicographic order of the bytes following
// each position. left/right are indexed by pos & mask, mirroring
// chainTable's layout but carrying two links instead of one. Contexts using
// btlazy2 and above allocate one, but no match finder inserts into or
// searches it; those strategies search the chain table instead.
type binaryTree struct {
	hashLog uint
	treeLog uint
	heads   []uint32
	left    []uint32
	right   []uint32
}

func newBinaryTree(hashLog, treeLog uint) *binaryTree {
	return &binaryTree{
		hashLog: hashLog,
		treeLog: treeLog,
		heads:   make([]uint32, 1<<hashLog),
		left:    make([]uint32, 1<<treeLog),
		right:   make([]uint32, 1<<treeLog),
	}
}

func (t *binaryTree) mask() uint32 { return uint32(1)<<t.treeLog - 1 }

func (t *binaryTree) reset() {
	for i := range t.heads {
		t.heads[i] = 0
	}
	for i := range t.left {
		t.left[i] = 0
		t.right[i] = 0
	}
}

// insert walks the tree rooted at hv's head, comparing the suffix at pos
// against each visited node via cmp (a caller-supplied byte-suffix
// comparator closing over the window), rotating the visited node's
// now-shorter branch onto the new node so the tree stays a valid BST over
// the insertion order, then attaches pos as the new head. cmp(a, b) returns
// the common-prefix length and whether a's suffix sorts before b's.
func (t *binaryTree) insert(hv uint32, pos uint32, lowLimit uint32, cmp func(a, b uint32) (int, bool)) {
	cur := t.heads[hv]
	var smallerParent, largerParent uint32
	smallerSet, largerSet := false, false
	for cur != 0 && cur >= lowLimit {
		common, less := cmp(pos, cur)
		_ = common
		if less {
			t.left[pos&t.mask()] = 0
			if largerSet {
				t.left[largerParent&t.mask()] = cur
			}
			largerParent = cur
			largerSet = true
			cur = t.left[cur&t.mask()]
		} else {
			t.right[pos&t.mask()] = 0
			if smallerSet {
				t.right[smallerParent&t.mask()] = cur
			}
			smallerParent = cur
			smallerSet = true
			cur = t.right[cur&t.mask()]
		}
	}
	if largerSet {
		t.left[largerParent&t.mask()] = 0
	}
	if smallerSet {
		t.right[smallerParent&t.mask()] = 0
	}
	t.heads[hv] = pos
}

func (t *binaryTree) head(hv uint32) uint32 { return t.heads[hv] }
func (t *binaryTree) leftOf(pos uint32) uint32 { return t.left[pos&t.mask()] }
func (t *binaryTree) rightOf(pos uint32) uint32 { return t.right[pos&t.mask()] }

// hash3Table is the auxiliary short-match table used by strategies that also
// probe 3-byte matches for cheap literal-run shortening (spec's "hash3
// auxiliary table"); structurally identical to hashTable but kept distinct
// so callers can size and clear it independently of the main match table.
type hash3Table struct {
	*hashTable
}

func newHash3Table(log uint) *hash3Table { return &hash3Table{newHashTable(log)} }
