// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// fseEncoder drives symbol-at-a-time FSE encoding with a bitWriter. Sequences
// are encoded in reverse order (last sequence first) since this is a
// backward bitstream read by the decoder starting from the final state.
//
// The encode-side "state" value is deliberately carried in the doubled range
// [tableSize, 2*tableSize) rather than [0, tableSize): buildCTable's
// stateTable stores size+i instead of i, which lets encodeSymbol take the
// low nbBitsOut bits of state directly (tableSize contributes no bits below
// bit tableLog) without a separate masking step, matching the classic FSE
// construction.
type fseEncoder struct {
	ct    *fseCTable
	state uint32
}

func newFSEEncoder(ct *fseCTable) *fseEncoder {
	return &fseEncoder{ct: ct}
}

// init seeds state from the first symbol encoded (i.e. the last sequence in
// forward order).
func (e *fseEncoder) init(symbol byte) {
	tt := e.ct.symbolTT[symbol]
	nbBitsOut := (tt.deltaNbBits + (1 << 15)) >> 16
	value := (nbBitsOut << 16) - tt.deltaNbBits
	idx := int32(value>>nbBitsOut) + tt.deltaFindState
	e.state = uint32(e.ct.stateTable[idx])
}

// encodeSymbol writes the bits needed to transition from the current state
// given the next symbol to encode, then advances state.
func (e *fseEncoder) encodeSymbol(bw *bitWriter, symbol byte) {
	tt := e.ct.symbolTT[symbol]
	nbBitsOut := (uint32(e.state) + tt.deltaNbBits) >> 16
	bw.addBits16(uint16(e.state), uint(nbBitsOut))
	idx := int32(e.state>>nbBitsOut) + tt.deltaFindState
	e.state = uint32(e.ct.stateTable[idx])
}

// flush writes the encoder's final state: the low tableLog bits of state
// equal the true table index (since state stays in the doubled range), read
// first by the decoder's newFSEDecoder.
func (e *fseEncoder) flush(bw *bitWriter) {
	bw.addBits16(uint16(e.state), e.ct.tableLog)
}
