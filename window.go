// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// window is the logical byte sequence backing match search: three monotone
// 32-bit indices {lowLimit <= dictLimit <= nextSrc} over two segments,
// addressed through two slices rather than the reference implementation's
// two base pointers (the §9 "extDict dual-segment window" layout).
type window struct {
	base     []byte // current-segment bytes; base[dictLimit:nextSrc] is addressable
	dictBase []byte // ext-dict-segment bytes; dictBase[lowLimit:dictLimit] is addressable

	lowLimit  uint32
	dictLimit uint32
	nextSrc   uint32
}

// overflowMargin is the safety margin kept below 2^31 before a rebase is
// forced (§4.4.6).
const overflowMargin = 1 << 20

// windowOverflowThreshold is "2^31 - margin" from §4.4.6.
const windowOverflowThreshold = uint32(1<<31) - overflowMargin

// needsOverflowCorrection reports whether current-base has grown close
// enough to 2^31 that positions must be rebased.
func (w *window) needsOverflowCorrection(current uint32) bool {
	return current > windowOverflowThreshold
}

// byteAt resolves a window position to its byte value, choosing the current
// segment or the ext-dict segment by comparing against dictLimit, per the
// design note's "two slices and one threshold" model.
func (w *window) byteAt(pos uint32) byte {
	if pos >= w.dictLimit {
		return w.base[pos-w.dictLimit]
	}
	// dictBase holds exactly the [lowLimit, dictLimit) range.
	return w.dictBase[pos-w.lowLimit]
}

// segmentFor returns the slice and base-position a window position lives in.
func (w *window) segmentFor(pos uint32) (seg []byte, segBase uint32) {
	if pos >= w.dictLimit {
		return w.base, w.dictLimit
	}
	return w.dictBase, w.lowLimit
}

// validPosition reports whether pos is a legal, non-absent table entry:
// either 0 ("absent", per §3 invariant) or >= lowLimit.
func validPosition(pos, lowLimit uint32) bool {
	return pos == 0 || pos >= lowLimit
}

// matchLength returns the common-prefix length of the bytes starting at cur
// and match (cur is always in the current segment; match may be in either
// segment), capped at maxLen. Takes the fast byte-slice path when both
// positions share the current segment, falling back to byteAt otherwise.
func (w *window) matchLength(cur, match uint32, maxLen uint32) uint32 {
	if match >= w.dictLimit {
		a := w.base[cur-w.dictLimit:]
		b := w.base[match-w.dictLimit:]
		n := maxLen
		if uint32(len(a)) < n {
			n = uint32(len(a))
		}
		if uint32(len(b)) < n {
			n = uint32(len(b))
		}
		var i uint32
		for i < n && a[i] == b[i] {
			i++
		}
		return i
	}
	var i uint32
	for i < maxLen && w.byteAt(cur+i) == w.byteAt(match+i) {
		i++
	}
	return i
}

// bytesAt returns up to n bytes starting at pos as a slice when the run lies
// entirely within the current segment (the common case used for hashing the
// bytes about to be inserted into a match table), and ok=false otherwise so
// callers can fall back to byteAt.
func (w *window) bytesAt(pos uint32, n uint32) (b []byte, ok bool) {
	if pos < w.dictLimit || pos+n > w.nextSrc {
		return nil, false
	}
	off := pos - w.dictLimit
	return w.base[off : off+n], true
}

// correctOverflow rebases every surviving table entry: each non-absent u32
// position has `correction` subtracted with a saturating floor at zero, and
// base/nextSrc/dictLimit/lowLimit shift down by the same amount, preserving
// each entry's referent byte (testable property 6).
func correctOverflow(tables [][]uint32, w *window, correction uint32) {
	for _, t := range tables {
		for i, p := range t {
			if p == 0 {
				continue
			}
			if p <= correction {
				t[i] = 0
			} else {
				t[i] = p - correction
			}
		}
	}
	if w.lowLimit > correction {
		w.lowLimit -= correction
	} else {
		w.lowLimit = 0
	}
	if w.dictLimit > correction {
		w.dictLimit -= correction
	} else {
		w.dictLimit = 0
	}
	w.nextSrc -= correction
}
