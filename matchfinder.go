// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// The LZ77 match-finder strategy family (§4.4): fast, dfast, greedy, lazy,
// lazy2, btlazy2, btopt, btultra, btultra2, dispatched by compressBlock on
// the strategy alone (no dispatch consults dictMode). Each strategy shares
// the same output contract: append
// sequences and literal runs to a seqStore while advancing a cursor over a
// window. Prefix-only and ext-dict modes are both already modeled by
// window's two-segment addressing (see window.go); dictMatchState mode adds
// a second, read-only table/window pair searched alongside the main one.
//
// btopt/btultra/btultra2 share one optimalParse engine parameterized by a
// refinementPasses count (1/2/3) rather than three independent
// implementations: the three strategies differ only in how much
// lookahead-cost refinement they spend, not in kind.

type dictMode int

const (
	dictModeNone dictMode = iota
	dictModePrefix
	dictModeMatchState
	dictModeExtDict
)

// mfContext bundles everything a strategy function needs: the active
// window, optional attached-dictionary window/tables (dictMatchState mode),
// the match tables for the current segment, output sequence store, and the
// rolling repeat-offset state.
type mfContext struct {
	w      *window
	params cParams
	seq    *seqStore
	rep    *repOffsets

	hash  *hashTable  // fast, dfast
	hash3 *hash3Table // dfast short-match aux
	chain *chainTable // greedy/lazy/lazy2 and the bt* family
	tree  *binaryTree // allocated for btlazy2 and above; never searched (bt* search the chain)

	dictWindow *window
	dictChain  *chainTable
	dictHash3  *hash3Table
}

const maxSearchCandidates = 256

// findBestInChain walks chain starting at its head for hv, comparing each
// candidate's suffix against the bytes at cur, keeping the longest match
// found within depth candidates.
func findBestInChain(w *window, chain *chainTable, hv uint32, cur uint32, lowLimit uint32, depth int, maxLen uint32) (bestPos uint32, bestLen uint32) {
	pos := chain.head(hv)
	for i := 0; i < depth && pos != 0 && pos >= lowLimit && pos < cur; i++ {
		l := w.matchLength(cur, pos, maxLen)
		if l > bestLen {
			bestLen, bestPos = l, pos
		}
		pos = chain.next(pos)
	}
	return bestPos, bestLen
}

// emitLiteralRun flushes the pending literal bytes [litStart, matchStart)
// into the sequence store as the litLength of the sequence about to be
// appended; offsetCode must already be pre-biased via rep.encodeOffset.
func emitLiteralRun(ctx *mfContext, litStart, matchStart uint32, matchLen uint32, offsetCode uint32) {
	var lits []byte
	for p := litStart; p < matchStart; p++ {
		lits = append(lits, ctx.w.byteAt(p))
	}
	ctx.seq.appendLiterals(lits)
	ctx.seq.appendSequence(matchStart-litStart, matchLen-3, offsetCode)
}

func insertPosition(ctx *mfContext, pos uint32) {
	buf, ok := ctx.w.bytesAt(pos, 8)
	if !ok {
		return
	}
	if ctx.hash != nil {
		ctx.hash.insert(hash4(buf, ctx.hash.log), pos)
	}
	if ctx.chain != nil {
		ctx.chain.insert(hash4(buf, ctx.chain.hashLog), pos)
	}
	if ctx.hash3 != nil {
		ctx.hash3.insert(hash3(buf, ctx.hash3.log), pos)
	}
}

// compressFast implements the single-candidate hash-table strategy.
func compressFast(ctx *mfContext, start, end uint32) {
	cur := start
	litStart := start
	minMatch := uint32(ctx.params.minMatch)
	for cur+minMatch <= end {
		buf, ok := ctx.w.bytesAt(cur, 4)
		if !ok {
			break
		}
		hv := hash4(buf, ctx.hash.log)
		cand := ctx.hash.lookup(hv)
		ctx.hash.insert(hv, cur)
		if cand != 0 && cand >= ctx.w.lowLimit && cand < cur {
			l := ctx.w.matchLength(cur, cand, end-cur)
			if l >= minMatch {
				offset := cur - cand
				code := ctx.rep.encodeOffset(offset, cur-litStart)
				emitLiteralRun(ctx, litStart, cur, l, code)
				cur += l
				litStart = cur
				continue
			}
		}
		cur++
	}
	flushTrailingLiterals(ctx, litStart, end)
}

// compressDFast adds a 3-byte auxiliary table to catch short matches the
// main 4-byte table would miss, otherwise identical to compressFast.
func compressDFast(ctx *mfContext, start, end uint32) {
	cur := start
	litStart := start
	minMatch := uint32(ctx.params.minMatch)
	for cur+minMatch <= end {
		buf4, ok := ctx.w.bytesAt(cur, 4)
		if !ok {
			break
		}
		hv := hash4(buf4, ctx.hash.log)
		cand := ctx.hash.lookup(hv)
		ctx.hash.insert(hv, cur)

		var h3cand uint32
		if buf3, ok := ctx.w.bytesAt(cur, 3); ok {
			hv3 := hash3(buf3, ctx.hash3.log)
			h3cand = ctx.hash3.lookup(hv3)
			ctx.hash3.insert(hv3, cur)
		}

		bestPos, bestLen := uint32(0), uint32(0)
		if cand != 0 && cand >= ctx.w.lowLimit && cand < cur {
			if l := ctx.w.matchLength(cur, cand, end-cur); l > bestLen {
				bestLen, bestPos = l, cand
			}
		}
		if h3cand != 0 && h3cand >= ctx.w.lowLimit && h3cand < cur {
			if l := ctx.w.matchLength(cur, h3cand, end-cur); l > bestLen {
				bestLen, bestPos = l, h3cand
			}
		}
		if bestLen >= minMatch {
			offset := cur - bestPos
			code := ctx.rep.encodeOffset(offset, cur-litStart)
			emitLiteralRun(ctx, litStart, cur, bestLen, code)
			cur += bestLen
			litStart = cur
			continue
		}
		cur++
	}
	flushTrailingLiterals(ctx, litStart, end)
}

// greedyLazyFamily implements greedy (lazySteps==0), lazy (1), and lazy2 (2):
// at each candidate match, look ahead lazySteps positions and only commit if
// no later start yields a strictly longer match.
func greedyLazyFamily(ctx *mfContext, start, end uint32, lazySteps int) {
	cur := start
	litStart := start
	minMatch := uint32(ctx.params.minMatch)
	depth := 1 << ctx.params.searchLog
	if depth > maxSearchCandidates {
		depth = maxSearchCandidates
	}
	for cur+minMatch <= end {
		buf, ok := ctx.w.bytesAt(cur, 4)
		if !ok {
			break
		}
		hv := hash4(buf, ctx.chain.hashLog)
		bestPos, bestLen := findBestInChain(ctx.w, ctx.chain, hv, cur, ctx.w.lowLimit, depth, end-cur)
		if ctx.dictChain != nil && bestLen < ctx.params.targetLength {
			if dp, dl := searchDictChain(ctx, cur, depth, end-cur); dl > bestLen {
				bestPos, bestLen = dp, dl
			}
		}
		ctx.chain.insert(hv, cur)

		if bestLen >= minMatch {
			step := 1
			for s := 1; s <= lazySteps && cur+uint32(s)+minMatch <= end; s++ {
				nbuf, ok := ctx.w.bytesAt(cur+uint32(s), 4)
				if !ok {
					break
				}
				nhv := hash4(nbuf, ctx.chain.hashLog)
				np, nl := findBestInChain(ctx.w, ctx.chain, nhv, cur+uint32(s), ctx.w.lowLimit, depth, end-cur-uint32(s))
				if nl > bestLen {
					// Insert the skipped position's hash before moving on so
					// later searches can still find it, then defer to the
					// later, better match.
					ctx.chain.insert(nhv, cur+uint32(s))
					bestPos, bestLen = np, nl
					cur += uint32(s)
					break
				}
			}
			if bestLen >= minMatch {
				offset := cur - bestPos
				code := ctx.rep.encodeOffset(offset, cur-litStart)
				emitLiteralRun(ctx, litStart, cur, bestLen, code)
				for p := cur + 1; p < cur+bestLen; p++ {
					insertPosition(ctx, p)
				}
				cur += bestLen
				litStart = cur
				continue
			}
			cur += uint32(step)
			continue
		}
		cur++
	}
	flushTrailingLiterals(ctx, litStart, end)
}

func searchDictChain(ctx *mfContext, cur uint32, depth int, maxLen uint32) (uint32, uint32) {
	buf, ok := ctx.w.bytesAt(cur, 4)
	if !ok {
		return 0, 0
	}
	hv := hash4(buf, ctx.dictChain.hashLog)
	return findBestInChain(ctx.dictWindow, ctx.dictChain, hv, cur, ctx.dictWindow.lowLimit, depth, maxLen)
}

// optimalParse is the shared engine behind btlazy2/btopt/btultra/btultra2: at
// each position it searches the chain table at cur and at the next
// refinementPasses positions, and emits the candidate with the highest
// match length minus its shift from cur. It has no literal/match price model
// and does no dynamic programming over the horizon; refinementPasses only
// widens that lookahead.
func optimalParse(ctx *mfContext, start, end uint32, refinementPasses int) {
	const horizon = 512
	minMatch := uint32(ctx.params.minMatch)
	depth := 1 << ctx.params.searchLog
	if depth > maxSearchCandidates {
		depth = maxSearchCandidates
	}

	cur := start
	litStart := start
	for cur < end {
		limit := cur + horizon
		if limit > end {
			limit = end
		}
		// Gather the best candidate match at cur and at each of the next
		// refinementPasses positions, picking whichever start/length pair
		// has the best length-minus-shift score within the horizon.
		bestPos, bestLen, bestStart := uint32(0), uint32(0), cur
		lookaheadSteps := refinementPasses
		for s := 0; s <= lookaheadSteps && cur+uint32(s)+minMatch <= limit; s++ {
			p := cur + uint32(s)
			buf, ok := ctx.w.bytesAt(p, 4)
			if !ok {
				break
			}
			hv := hash4(buf, ctx.chain.hashLog)
			cp, cl := findBestInChain(ctx.w, ctx.chain, hv, p, ctx.w.lowLimit, depth, end-p)
			if ctx.dictChain != nil {
				if dp, dl := searchDictChain(ctx, p, depth, end-p); dl > cl {
					cp, cl = dp, dl
				}
			}
			ctx.chain.insert(hv, p)
			score := int64(cl) - int64(s)
			bestScore := int64(bestLen) - int64(bestStart-cur)
			if cl >= minMatch && score > bestScore {
				bestPos, bestLen, bestStart = cp, cl, p
			}
		}
		if bestLen >= minMatch {
			for p := cur + 1; p < bestStart; p++ {
				insertPosition(ctx, p)
			}
			offset := bestStart - bestPos
			code := ctx.rep.encodeOffset(offset, bestStart-litStart)
			emitLiteralRun(ctx, litStart, bestStart, bestLen, code)
			for p := bestStart + 1; p < bestStart+bestLen; p++ {
				insertPosition(ctx, p)
			}
			cur = bestStart + bestLen
			litStart = cur
			continue
		}
		insertPosition(ctx, cur)
		cur++
	}
	flushTrailingLiterals(ctx, litStart, end)
}

func flushTrailingLiterals(ctx *mfContext, litStart, end uint32) {
	if litStart >= end {
		return
	}
	var lits []byte
	for p := litStart; p < end; p++ {
		lits = append(lits, ctx.w.byteAt(p))
	}
	ctx.seq.appendLiterals(lits)
	// A trailing literal-only run with no following sequence is represented
	// by the block encoder folding it into the last sequence's litLength, or
	// (if the block has no sequences at all) as a literals-only block; seq
	// carries it via a zero-length, zero-offset marker sequence the encoder
	// recognizes and special-cases.
	ctx.seq.appendSequence(end-litStart, 0, trailingLiteralsMarker)
}

// trailingLiteralsMarker is an offsetCode value no real sequence can
// produce (encodeOffset never returns 0), used by flushTrailingLiterals and
// recognized by the block encoder to mean "literals only, no match".
const trailingLiteralsMarker = 0

// compressBlock dispatches to the strategy family named by params.strategy.
func compressBlock(ctx *mfContext, start, end uint32) {
	switch ctx.params.strategy {
	case stratFast:
		compressFast(ctx, start, end)
	case stratDFast:
		compressDFast(ctx, start, end)
	case stratGreedy:
		greedyLazyFamily(ctx, start, end, 0)
	case stratLazy:
		greedyLazyFamily(ctx, start, end, 1)
	case stratLazy2:
		greedyLazyFamily(ctx, start, end, 2)
	case stratBTLazy2:
		optimalParse(ctx, start, end, 0)
	case stratBTOpt:
		optimalParse(ctx, start, end, 1)
	case stratBTUltra:
		optimalParse(ctx, start, end, 2)
	case stratBTUltra2:
		optimalParse(ctx, start, end, 3)
	default:
		compressGenericFallback(ctx, start, end)
	}
}

// compressGenericFallback covers any strategy value outside the known
// family (defensive only; every strategy in the level table is in range).
func compressGenericFallback(ctx *mfContext, start, end uint32) {
	greedyLazyFamily(ctx, start, end, 0)
}
