// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// Long-distance matching (§4.5): a coarse rolling-hash pre-pass over the
// full window that finds matches far outside the main strategy's chain/tree
// reach, producing a sparse sequence of raw (offset, length) hits the main
// match finder then treats as mandatory splice points.

const (
	ldmDefaultHashLog  = 20
	ldmDefaultMinMatch = 64
	ldmHashEvery       = 8 // sample one position in this many, per the bucket table
)

// ldmTable is a bucket hash table: each bucket holds only the single most
// recent position whose sampled hash landed there, and a newer position
// overwrites it (one entry per bucket; there is no multi-way bucket or
// round-robin slot choice, so one bucket miss just skips an opportunity).
type ldmTable struct {
	log   uint
	minMatch uint32
	slots []uint32
}

func newLDMTable(log uint, minMatch uint32) *ldmTable {
	return &ldmTable{log: log, minMatch: minMatch, slots: make([]uint32, 1<<log)}
}

func (t *ldmTable) reset() {
	for i := range t.slots {
		t.slots[i] = 0
	}
}

// ldmHit is one splice point the LDM pre-scan found.
type ldmHit struct {
	matchPos  uint32
	curPos    uint32
	length    uint32
}

// prescan samples every ldmHashEvery-th position in [start, end), looking up
// and then overwriting its bucket, recording a hit whenever the bucket held
// a valid earlier position whose byte run actually matches for at least
// t.minMatch bytes (the hash alone doesn't guarantee a true match).
func (t *ldmTable) prescan(w *window, start, end uint32) []ldmHit {
	var hits []ldmHit
	if end < start+t.minMatch {
		return nil
	}
	for pos := start; pos+t.minMatch <= end; pos += ldmHashEvery {
		buf, ok := w.bytesAt(pos, 8)
		if !ok {
			continue
		}
		hv := hash8(buf, t.log)
		cand := t.slots[hv]
		t.slots[hv] = pos
		if cand == 0 || cand < w.lowLimit || cand >= pos {
			continue
		}
		l := w.matchLength(pos, cand, end-pos)
		if l >= t.minMatch {
			hits = append(hits, ldmHit{matchPos: cand, curPos: pos, length: l})
		}
	}
	return mergeOverlappingHits(hits)
}

// mergeOverlappingHits drops or trims hits that overlap a previous, already
// accepted hit's span, keeping the scan's output a non-overlapping,
// position-ascending splice list the main strategy can apply in one pass.
func mergeOverlappingHits(hits []ldmHit) []ldmHit {
	var out []ldmHit
	var lastEnd uint32
	for _, h := range hits {
		if h.curPos < lastEnd {
			continue
		}
		out = append(out, h)
		lastEnd = h.curPos + h.length
	}
	return out
}

// applyLDM runs the given strategy function over [start,end) but splices in
// the LDM hits as forced sequences, running the regular match finder only
// over the literal gaps between them. This keeps the main strategy's table
// state consistent (it still sees and indexes every byte) while guaranteeing
// the long-distance matches are not missed.
func applyLDM(ctx *mfContext, start, end uint32, hits []ldmHit, inner func(ctx *mfContext, s, e uint32)) {
	cur := start
	for _, h := range hits {
		if h.curPos < cur {
			continue
		}
		litLen := uint32(0)
		if h.curPos > cur {
			inner(ctx, cur, h.curPos)
			// If inner() ended [cur,h.curPos) with a trailing-literals marker
			// sequence, drop it since a real sequence follows immediately and
			// the literals it gathered become this sequence's litLength.
			if n := len(ctx.seq.sequences); n > 0 {
				if last := ctx.seq.sequences[n-1]; last.offsetCode == trailingLiteralsMarker && last.matchLen == 0 {
					litLen = last.litLength
					ctx.seq.sequences = ctx.seq.sequences[:n-1]
				}
			}
		}
		offset := h.curPos - h.matchPos
		code := ctx.rep.encodeOffset(offset, litLen)
		ctx.seq.appendSequence(litLen, h.length-3, code)
		for p := h.curPos + 1; p < h.curPos+h.length; p++ {
			insertPosition(ctx, p)
		}
		cur = h.curPos + h.length
	}
	if cur < end {
		inner(ctx, cur, end)
	}
}
