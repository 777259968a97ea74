// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "sync"

// compressConcurrent splits src into at most numJobs roughly equal segments
// of at least maxBlockSize bytes each (segment boundaries need not fall on
// multiples of maxBlockSize) and compresses each independently across the
// worker pool (§5),
// then concatenates their block streams into one frame. Each job gets its
// own window, match tables, sequence store and entropy-table carryover, so
// no match can reach across a job boundary and no job's first block can
// reuse a sibling job's repeat-mode tables — the same ratio-for-parallelism
// trade the reference's multithreaded mode makes.
func (c *CCtx) compressConcurrent(src []byte, numJobs int) []byte {
	if numJobs < 2 || len(src) == 0 {
		return c.compressOneShot(src)
	}

	jobSize := (len(src) + numJobs - 1) / numJobs
	if jobSize < maxBlockSize {
		jobSize = maxBlockSize
	}

	var starts, ends []int
	for off := 0; off < len(src); off += jobSize {
		end := off + jobSize
		if end > len(src) {
			end = len(src)
		}
		starts = append(starts, off)
		ends = append(ends, end)
	}
	n := len(starts)

	results := make([][]byte, n)
	p := newPool(numJobs, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		start, end := starts[i], ends[i]
		p.Add(func() {
			defer wg.Done()
			results[i] = c.compressJobBlocks(src[start:end], start == 0, end == len(src))
		})
	}
	wg.Wait()
	p.Shutdown()

	dst := writeFrameHeader(nil, c.params.windowLog, dictIDOf(c.dict), uint64(len(src)), true, c.checksum)
	for _, r := range results {
		dst = append(dst, r...)
	}
	if c.checksum {
		h := newRunningChecksum()
		h.write(src)
		dst = putUint32LE(dst, h.sum32())
	}
	return dst
}

// compressJobBlocks compresses one independent segment into raw block bytes
// (no frame header or checksum trailer — compressConcurrent supplies
// those), using private match tables and sequence state so it shares
// nothing mutable with sibling jobs running on other pool workers.
func (c *CCtx) compressJobBlocks(seg []byte, firstJob, lastJob bool) []byte {
	var mf mfContext
	mf.params = c.params
	switch c.params.strategy {
	case stratFast:
		mf.hash = newHashTable(c.params.hashLog)
	case stratDFast:
		mf.hash = newHashTable(c.params.hashLog)
		mf.hash3 = newHash3Table(minHashLog)
	default:
		mf.chain = newChainTable(c.params.hashLog, c.params.cycleLog())
		if c.params.strategy >= stratBTLazy2 {
			mf.tree = newBinaryTree(c.params.hashLog, c.params.cycleLog())
		}
	}

	w := window{base: seg, lowLimit: 0, dictLimit: 0, nextSrc: uint32(len(seg))}
	mf.w = &w
	seq := newSeqStore()
	mf.seq = seq
	mf.rep = newRepOffsets()
	if !firstJob {
		// The decoder carries repeat offsets over from the previous job's
		// blocks, which this job cannot see. Zero slots never match a real
		// offset, so no repeat code refers to a slot the two sides disagree on.
		mf.rep.rep = [3]uint32{}
	}
	var tbl blockEncodeTables

	end := uint32(len(seg))
	if end == 0 {
		return writeBlockHeader(nil, lastJob, blockRaw, 0)
	}

	var dst []byte
	pos := uint32(0)
	for pos < end {
		blockEnd := pos + maxBlockSize
		if blockEnd > end {
			blockEnd = end
		}
		seq.reset()
		compressBlock(&mf, pos, blockEnd)
		last := lastJob && blockEnd >= end
		dst = append(dst, encodeBlock(seq, last, &tbl)...)
		pos = blockEnd
	}
	return dst
}
