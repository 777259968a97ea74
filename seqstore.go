// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// seqStore accumulates the (litLength, matchLength, offsetCode) triples a
// match finder emits for one block, plus the raw literal bytes they
// reference, until the block encoder projects them into wire codes (§4.6).
//
// Repeat-offset handling follows the reference rule: three offsets (rep[0],
// rep[1], rep[2]) are carried across sequences within a block. A literal
// offset value is stored pre-biased (offsetValue = trueOffset+3) so that
// codes 1-3 can mean "repeat slot N" without colliding with any real
// distance; for a sequence whose litLength==0 the repeat codes shift by one
// slot (code 1 names rep[1], code 2 names rep[2], code 3 names rep[0]-1),
// per the spec's legality rule for repeat codes in a zero-literal sequence.
type sequence struct {
	litLength  uint32
	matchLen   uint32 // match length minus 3, subtracted by the caller
	offsetCode uint32 // pre-biased: 1-3 mean repeat slots, else trueOffset+3
}

type seqStore struct {
	literals  []byte
	sequences []sequence

	// longLengthID/longLengthPos mark the single sequence (if any) whose
	// litLength or matchLength overflowed the 16-bit wire representation
	// and must be carried as a side channel (§4.6 edge case).
	longLengthID  int // 0 = none, 1 = litLength, 2 = matchLength
	longLengthPos int
}

func newSeqStore() *seqStore {
	return &seqStore{}
}

func (s *seqStore) reset() {
	s.literals = s.literals[:0]
	s.sequences = s.sequences[:0]
	s.longLengthID = 0
	s.longLengthPos = 0
}

// appendLiterals copies lits into the store's literal buffer.
func (s *seqStore) appendLiterals(lits []byte) {
	s.literals = append(s.literals, lits...)
}

// appendSequence records one sequence, flagging a long-length overflow if
// either field exceeds the 16-bit code space used by the default LL/ML
// baseline tables.
func (s *seqStore) appendSequence(litLength, matchLen, offsetCode uint32) {
	idx := len(s.sequences)
	if litLength > 0xFFFF {
		s.longLengthID = 1
		s.longLengthPos = idx
	}
	if matchLen > 0xFFFF {
		s.longLengthID = 2
		s.longLengthPos = idx
	}
	s.sequences = append(s.sequences, sequence{litLength: litLength, matchLen: matchLen, offsetCode: offsetCode})
}

// repOffsets carries the three repeat-offset slots across sequences within a
// block (and, for the first block, across blocks per §4.6's dictionary/
// repeat-offset seeding).
type repOffsets struct {
	rep [3]uint32
}

func newRepOffsets() *repOffsets {
	return &repOffsets{rep: [3]uint32{1, 4, 8}}
}

// encodeOffset converts a true match distance plus the sequence's litLength
// into the pre-biased offsetCode the sequence store keeps, checking the
// three repeat slots first and rotating them per the reference rule.
func (r *repOffsets) encodeOffset(trueOffset uint32, litLength uint32) uint32 {
	if litLength == 0 {
		// With litLength==0 the repeat codes shift by one slot: code 1
		// names rep[1], code 2 names rep[2], code 3 names rep[0]-1.
		if trueOffset == r.rep[1] {
			r.rep[1] = r.rep[0]
			r.rep[0] = trueOffset
			return 1
		}
		if trueOffset == r.rep[2] {
			r.rep[2] = r.rep[1]
			r.rep[1] = r.rep[0]
			r.rep[0] = trueOffset
			return 2
		}
		if r.rep[0] > 0 && trueOffset == r.rep[0]-1 {
			r.rep[2] = r.rep[1]
			r.rep[1] = r.rep[0]
			r.rep[0] = trueOffset
			return 3
		}
	} else {
		if trueOffset == r.rep[0] {
			return 1
		}
		if trueOffset == r.rep[1] {
			r.rep[1] = r.rep[0]
			r.rep[0] = trueOffset
			return 2
		}
		if trueOffset == r.rep[2] {
			r.rep[2] = r.rep[1]
			r.rep[1] = r.rep[0]
			r.rep[0] = trueOffset
			return 3
		}
	}
	r.rep[2] = r.rep[1]
	r.rep[1] = r.rep[0]
	r.rep[0] = trueOffset
	return trueOffset + 3
}

// decodeOffset is the decoder-side inverse: given a wire offsetCode and the
// sequence's litLength, resolves the true distance and updates rep state the
// same way the encoder did.
func (r *repOffsets) decodeOffset(offsetCode uint32, litLength uint32) uint32 {
	if offsetCode > 3 {
		trueOffset := offsetCode - 3
		r.rep[2] = r.rep[1]
		r.rep[1] = r.rep[0]
		r.rep[0] = trueOffset
		return trueOffset
	}
	idx := offsetCode
	if litLength == 0 {
		idx++ // same one-slot shift as encodeOffset
	}
	var trueOffset uint32
	switch idx {
	case 1:
		trueOffset = r.rep[0]
	case 2:
		trueOffset = r.rep[1]
		r.rep[1] = r.rep[0]
		r.rep[0] = trueOffset
	case 3:
		trueOffset = r.rep[2]
		r.rep[2] = r.rep[1]
		r.rep[1] = r.rep[0]
		r.rep[0] = trueOffset
	default: // idx==4 only arises from the litLength==0 case of code 3
		trueOffset = r.rep[0] - 1
		r.rep[2] = r.rep[1]
		r.rep[1] = r.rep[0]
		r.rep[0] = trueOffset
	}
	return trueOffset
}

