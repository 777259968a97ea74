// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// Streaming buffer state machine (§4.10): init -> load -> flush, looping
// back to load until the frame closes into a terminal created state. Unlike
// the one-shot path (compressOneShot, which slices a whole known buffer),
// the window here grows incrementally as input arrives — match tables index
// each new span as it's compiled into a block, so later spans can still
// reference earlier ones exactly as a single large buffer would allow.
// Window-overflow rebasing (the nextSrc-base approaching 2^31 case) is not
// implemented: every realistic stream this package will see fits well inside
// a 32-bit span, and rebasing a live incremental window is involved enough
// to deserve its own pass if a caller ever needs multi-gigabyte streams.

type endDirective int

const (
	directiveContinue endDirective = iota
	directiveFlush
	directiveEnd
)

type streamStage int

const (
	stageInit streamStage = iota
	stageLoad
	stageFlush
	stageCreated
)

// inBuffer mirrors the reference ZSTD_inBuffer contract: src is the
// caller's input, pos is how much of it this call has already consumed.
type inBuffer struct {
	src []byte
	pos int
}

// outBuffer mirrors ZSTD_outBuffer: dst is the caller's output slice sized
// to its capacity, pos is how much this call (and prior calls for the same
// pending payload) has already written.
type outBuffer struct {
	dst []byte
	pos int
}

// compressBound returns a safe worst-case output size for a srcSize-byte
// input: the input itself plus per-block raw-fallback overhead, generalized
// from the reference ZSTD_COMPRESSBOUND macro.
func compressBound(srcSize int) int {
	extraBlocks := srcSize/maxBlockSize + 1
	return srcSize + extraBlocks*(3+compressBoundBlockOverhead) + frameHeaderMaxSize + 4
}

const compressBoundBlockOverhead = 4
const frameHeaderMaxSize = 4 + 1 + 1 + 4 + 8 // magic + descriptor + windowLogByte + dictID + fcs, worst case

// CStream is the streaming compression FSM a Writer drives. It owns one
// CCtx and the growing input buffer that backs that context's window.
type CStream struct {
	ctx   *CCtx
	stage streamStage

	inAcc     []byte
	inTarget  int
	pending   []byte
	pendingAt int
	lastSent  bool

	frameHeaderPending bool
	hasher             *runningChecksum
	checksum           bool

	hint int
}

// NewCStream builds a streaming compressor for one frame at the given level,
// optionally bound to a dictionary. srcSizeHint, when nonzero, sizes the
// parameter table the same way a one-shot compression would; streams whose
// total size is unknown up front should pass 0.
func NewCStream(level int, srcSizeHint uint64, dict *CDict, checksum bool) *CStream {
	ctx := NewCCtx(level, srcSizeHint, dict)
	cs := &CStream{
		ctx:                ctx,
		stage:              stageInit,
		inTarget:           maxBlockSize,
		frameHeaderPending: true,
		checksum:           checksum,
	}
	return cs
}

func (cs *CStream) init() {
	cs.ctx.window = window{}
	cs.ctx.mf.w = &cs.ctx.window
	cs.ctx.mf.params = cs.ctx.params
	cs.ctx.mf.seq = cs.ctx.seq
	cs.ctx.mf.rep = cs.ctx.rep
	cs.ctx.seq.reset()
	*cs.ctx.rep = *newRepOffsets()
	cs.ctx.checksum = cs.checksum

	if cs.ctx.dict != nil {
		dict := cs.ctx.dict
		dw := &window{base: dict.content, lowLimit: 0, dictLimit: uint32(len(dict.content)), nextSrc: uint32(len(dict.content))}
		cs.ctx.mf.dictWindow = dw
		if cs.ctx.mf.chain != nil {
			cs.ctx.mf.dictChain = newChainTable(cs.ctx.params.hashLog, cs.ctx.params.cycleLog())
			indexWindow(cs.ctx.mf.dictChain, dw, 0, uint32(len(dict.content)))
		}
		cs.ctx.rep.rep = dict.rep
	}

	if cs.checksum {
		cs.hasher = newRunningChecksum()
	}
}

// compileBlock appends chunk to the context's window, runs the configured
// strategy over just the new span, and returns the block's wire bytes
// (prefixed with the frame header on the very first call).
func (cs *CStream) compileBlock(chunk []byte, last bool) []byte {
	var dst []byte
	if cs.frameHeaderPending {
		dst = writeFrameHeader(nil, cs.ctx.params.windowLog, dictIDOf(cs.ctx.dict), 0, false, cs.checksum)
		cs.frameHeaderPending = false
	}

	start := cs.ctx.window.nextSrc
	if len(chunk) > 0 {
		cs.ctx.window.base = append(cs.ctx.window.base, chunk...)
		cs.ctx.window.nextSrc = uint32(len(cs.ctx.window.base))
		if cs.hasher != nil {
			cs.hasher.write(chunk)
		}
	}
	end := cs.ctx.window.nextSrc

	cs.ctx.seq.reset()
	if end > start {
		compressBlock(&cs.ctx.mf, start, end)
	}
	dst = append(dst, encodeBlock(cs.ctx.seq, last, &cs.ctx.tbl)...)

	if last && cs.checksum {
		dst = putUint32LE(dst, cs.hasher.sum32())
	}
	return dst
}

// compressStream2 is the core state-machine step named in §4.10: it copies
// as much of in as the current stage allows into out, looping internally
// until either buffer is exhausted or the frame reaches its terminal state.
// The return value hints how many more input bytes the caller should
// provide before the next call is likely to make progress, or 0 once the
// frame has been fully emitted under directiveEnd.
func (cs *CStream) compressStream2(out *outBuffer, in *inBuffer, directive endDirective) (int, error) {
	for {
		switch cs.stage {
		case stageCreated:
			return 0, nil

		case stageInit:
			cs.init()
			cs.stage = stageLoad

		case stageFlush:
			if cs.pendingAt < len(cs.pending) {
				n := copy(out.dst[out.pos:], cs.pending[cs.pendingAt:])
				out.pos += n
				cs.pendingAt += n
				if cs.pendingAt < len(cs.pending) {
					return 1, nil // out buffer full; caller must drain and call again
				}
			}
			cs.pending, cs.pendingAt = nil, 0
			if cs.lastSent {
				cs.stage = stageCreated
				return 0, nil
			}
			cs.stage = stageLoad

		case stageLoad:
			// Shortcut: the whole remaining input still fits directly into
			// out in one pass, and nothing has been buffered yet.
			if directive == directiveEnd && len(cs.inAcc) == 0 {
				remaining := len(in.src) - in.pos
				need := compressBound(remaining) // already includes frame-header worst case
				if out.size()-out.pos >= need {
					frame := cs.compileBlock(in.src[in.pos:], true)
					in.pos = len(in.src)
					n := copy(out.dst[out.pos:], frame)
					out.pos += n
					cs.lastSent = true
					if n < len(frame) {
						cs.pending, cs.pendingAt = frame, n
						cs.stage = stageFlush
						continue
					}
					cs.stage = stageCreated
					return 0, nil
				}
			}

			if room := cs.inTarget - len(cs.inAcc); room > 0 && in.pos < len(in.src) {
				n := room
				if avail := len(in.src) - in.pos; avail < n {
					n = avail
				}
				cs.inAcc = append(cs.inAcc, in.src[in.pos:in.pos+n]...)
				in.pos += n
			}

			full := len(cs.inAcc) >= cs.inTarget
			wantFlush := directive != directiveContinue && len(cs.inAcc) > 0
			wantEnd := directive == directiveEnd && in.pos >= len(in.src)

			if !full && !wantFlush && !wantEnd {
				return cs.inTarget - len(cs.inAcc), nil
			}

			last := directive == directiveEnd && in.pos >= len(in.src) && len(cs.inAcc) < cs.inTarget
			cs.pending = cs.compileBlock(cs.inAcc, last)
			cs.inAcc = cs.inAcc[:0]
			cs.pendingAt = 0
			cs.lastSent = last
			cs.stage = stageFlush
		}
	}
}

func (b *outBuffer) size() int { return len(b.dst) }
