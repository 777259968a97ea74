// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// CCtx is a reusable compression context: one cwksp arena, one set of match
// tables sized for the context's current parameters, and the per-frame
// state (window, sequence store, repeat offsets, entropy-table carryover)
// that must survive across the blocks of one frame. Table slices are kept as
// native Go slices rather than routed through cwksp's raw byte arena, since
// type safety for []uint32-shaped tables isn't worth an unsafe cast here. The
// arena still tracks the same budget and sticky-failure discipline described
// in workspace.go.
type CCtx struct {
	ws *cwksp

	params cParams
	window window

	mf   mfContext
	seq  *seqStore
	rep  *repOffsets
	tbl  blockEncodeTables

	ldm       *ldmTable
	useLDM    bool
	checksum  bool
	dict      *CDict
}

// estimatedWorkspaceSize approximates the bytes a context with these
// parameters would need, for the object-zone reservation cwksp accounting
// expects at construction (§3).
func estimatedWorkspaceSize(p cParams) int {
	hashBytes := (1 << p.hashLog) * 4
	chainBytes := (1 << p.cycleLog()) * 4 * 2
	return hashBytes + chainBytes + 1<<20
}

// NewCCtx builds a context for one compression level/size pair. Real
// pooling/reuse across many compressions is the caller's concern (a
// Writer's CStream keeps one CCtx alive for the whole frame it writes);
// this constructor always builds fresh tables sized for the given
// parameters.
func NewCCtx(level int, srcSizeHint uint64, dict *CDict) *CCtx {
	params := paramsForLevel(level, srcSizeHint)
	if dict != nil {
		if dict.forceLoad {
			params = paramsForLevel(level, uint64(len(dict.content)))
		} else {
			params = dict.cParams
		}
	}
	ws := newCwksp(estimatedWorkspaceSize(params))
	ws.reserveObject(64) // the context header itself

	ctx := &CCtx{
		ws:     ws,
		params: params,
		seq:    newSeqStore(),
		rep:    newRepOffsets(),
		dict:   dict,
	}
	ctx.allocTables()
	if params.windowLog >= ldmDefaultHashLog && srcSizeHint > uint64(1)<<22 {
		ctx.useLDM = true
		ctx.ldm = newLDMTable(ldmDefaultHashLog, ldmDefaultMinMatch)
	}
	return ctx
}

func (c *CCtx) allocTables() {
	c.ws.resetTables()
	switch c.params.strategy {
	case stratFast:
		c.mf.hash = newHashTable(c.params.hashLog)
	case stratDFast:
		c.mf.hash = newHashTable(c.params.hashLog)
		c.mf.hash3 = newHash3Table(minHashLog)
	default:
		c.mf.chain = newChainTable(c.params.hashLog, c.params.cycleLog())
		if c.params.strategy >= stratBTLazy2 {
			c.mf.tree = newBinaryTree(c.params.hashLog, c.params.cycleLog())
		}
	}
	c.ws.markClean()
}

// resetWindow points the context's window at src for a fresh one-shot
// compression, optionally seeding the ext-dict segment from an attached
// CDict (§5's attach policy).
func (c *CCtx) resetWindow(src []byte) {
	c.window = window{base: src, lowLimit: 0, dictLimit: 0, nextSrc: uint32(len(src))}
	c.mf.w = &c.window
	c.mf.params = c.params
	c.mf.seq = c.seq
	c.mf.rep = c.rep
	c.seq.reset()
	*c.rep = *newRepOffsets()

	if c.dict != nil {
		if shouldAttach(uint64(len(src)), c.params.strategy) {
			dw := &window{base: c.dict.content, lowLimit: 0, dictLimit: uint32(len(c.dict.content)), nextSrc: uint32(len(c.dict.content))}
			c.mf.dictWindow = dw
			if c.mf.chain != nil {
				c.mf.dictChain = newChainTable(c.params.hashLog, c.params.cycleLog())
				indexWindow(c.mf.dictChain, dw, 0, uint32(len(c.dict.content)))
			}
			c.rep.rep = c.dict.rep
		} else {
			merged := append(append([]byte{}, c.dict.content...), src...)
			c.window = window{base: merged, lowLimit: 0, dictLimit: 0, nextSrc: uint32(len(merged))}
			c.mf.w = &c.window
			c.rep.rep = c.dict.rep
		}
	}
}

// indexWindow inserts every position in [start,end) into chain, used to
// pre-populate an attached dictionary's table once per CDict use.
func indexWindow(chain *chainTable, w *window, start, end uint32) {
	for p := start; p+4 <= end; p++ {
		buf, ok := w.bytesAt(p, 8)
		if !ok {
			buf, ok = w.bytesAt(p, 4)
			if !ok {
				continue
			}
		}
		chain.insert(hash4(buf, chain.hashLog), p)
	}
}

// compressOneShot installs src as the context's current segment (via
// resetWindow) and compresses the whole of it into a full frame.
func (c *CCtx) compressOneShot(src []byte) []byte {
	c.resetWindow(src)
	dst := writeFrameHeader(nil, c.params.windowLog, dictIDOf(c.dict), uint64(len(src)), true, c.checksum)

	dictOffset := uint32(0)
	if c.dict != nil && !shouldAttach(uint64(len(src)), c.params.strategy) {
		dictOffset = uint32(len(c.dict.content))
	}
	start := dictOffset
	end := dictOffset + uint32(len(src))

	var hits []ldmHit
	if c.useLDM {
		hits = c.ldm.prescan(&c.window, start, end)
	}

	var hasher *runningChecksum
	if c.checksum {
		hasher = newRunningChecksum()
		hasher.write(src)
	}

	pos := start
	for pos < end {
		blockEnd := pos + maxBlockSize
		if blockEnd > end {
			blockEnd = end
		}
		if blk := c.window.base[pos:blockEnd]; allSameByte(blk) {
			// A block of one repeated byte is stored as an RLE block.
			dst = append(dst, writeBlockHeader(nil, blockEnd >= end, blockRLE, len(blk))...)
			dst = append(dst, blk[0])
			pos = blockEnd
			continue
		}
		c.seq.reset()
		if len(hits) > 0 {
			applyLDM(&c.mf, pos, blockEnd, windowedHits(hits, pos, blockEnd), func(ctx *mfContext, s, e uint32) { compressBlock(ctx, s, e) })
		} else {
			compressBlock(&c.mf, pos, blockEnd)
		}
		last := blockEnd >= end
		dst = append(dst, encodeBlock(c.seq, last, &c.tbl)...)
		pos = blockEnd
	}
	if end == start {
		// Empty input still needs exactly one (empty, raw) block.
		dst = append(dst, writeBlockHeader(nil, true, blockRaw, 0)...)
	}

	if c.checksum {
		dst = putUint32LE(dst, hasher.sum32())
	}
	return dst
}

func windowedHits(hits []ldmHit, start, end uint32) []ldmHit {
	var out []ldmHit
	for _, h := range hits {
		if h.curPos >= start && h.curPos+h.length <= end {
			out = append(out, h)
		}
	}
	return out
}

func dictIDOf(d *CDict) uint32 {
	if d == nil {
		return 0
	}
	return d.id
}
