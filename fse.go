// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// FSE (tANS) normalized-count I/O, table build, and symbol encode/decode
// (§4.2). Grounded on original_source/zstd_compress.c's encoding-type
// selection and NCount routines; table layout follows the "step
// permutation" described in §4.2 directly.

const (
	// fseMaxTableLog is kept well under 16 so that built-table state values
	// (which range up to 2*2^tableLog - 1 on the encode side) always fit the
	// uint16 slots used throughout this file.
	fseMaxTableLog    = 15
	fseMinTableLog    = 5
	fseDefaultLLLog   = 6
	fseDefaultMLLog   = 6
	fseDefaultOffLog  = 5
	fseMaxSymbolValue = 255
)

// fseDTableEntry is one decode-table slot per §4.2.
type fseDTableEntry struct {
	nextStateBase uint16
	symbol        uint8
	nbBits        uint8
}

// fseDTable is a built decode table plus its fastMode flag.
type fseDTable struct {
	tableLog uint
	fastMode bool
	entries  []fseDTableEntry
}

// buildDTable lays symbols into 2^tableLog slots via the step permutation,
// skipping the high-probability area reserved for low-prob (-1 count)
// symbols, per §4.2.
func buildDTable(norm []int16, tableLog uint, maxSymbolValue int) (*fseDTable, error) {
	if tableLog > fseMaxTableLog {
		return nil, ErrTableLogTooLarge
	}
	if maxSymbolValue > fseMaxSymbolValue {
		return nil, ErrMaxSymbolValueTooLarge
	}
	size := uint32(1) << tableLog
	table := &fseDTable{tableLog: tableLog, entries: make([]fseDTableEntry, size)}

	// symbolNext tracks, per symbol, the next "nextOccurrence" count used to
	// derive nbBits/nextStateBase once all slots are placed.
	symbolNext := make([]uint16, maxSymbolValue+1)

	highThreshold := size - 1
	// Place low-probability symbols (-1 counts) at the top of the table.
	for s, c := range norm {
		if c == -1 {
			table.entries[highThreshold].symbol = uint8(s)
			highThreshold--
			symbolNext[s] = 1
		} else if c >= 0 {
			symbolNext[s] = uint16(c)
		}
	}

	// Spread the remaining symbols using the step permutation.
	step := (size >> 1) + (size >> 3) + 3
	mask := size - 1
	pos := uint32(0)
	for s, c := range norm {
		if c <= 0 {
			continue
		}
		for i := 0; i < int(c); i++ {
			table.entries[pos].symbol = uint8(s)
			pos = (pos + step) & mask
			for pos > highThreshold {
				pos = (pos + step) & mask
			}
		}
	}
	if pos != 0 {
		return nil, ErrCorruptionDetected
	}

	// Build nbBits/nextStateBase per slot based on per-symbol occurrence order.
	cumul := make([]uint16, len(symbolNext))
	copy(cumul, symbolNext)
	for i := uint32(0); i < size; i++ {
		sym := table.entries[i].symbol
		nextState := cumul[sym]
		cumul[sym]++
		nbBits := tableLog - uint(highbit(uint32(nextState)))
		table.entries[i].nbBits = uint8(nbBits)
		table.entries[i].nextStateBase = uint16((uint32(nextState) << nbBits) - size)
	}

	table.fastMode = true
	for _, e := range table.entries {
		if e.nbBits == 0 {
			table.fastMode = false
			break
		}
	}
	return table, nil
}

// fseDecoder holds decode-loop state: a state index into the built table.
type fseDecoder struct {
	table *fseDTable
	state uint32
}

func newFSEDecoder(t *fseDTable, br *bitReader) fseDecoder {
	d := fseDecoder{table: t}
	d.state = uint32(br.readBits(t.tableLog))
	return d
}

// decodeSymbol emits the current state's symbol and transitions state by
// consuming nbBits from br, per §4.2 decode-symbol.
func (d *fseDecoder) decodeSymbol(br *bitReader) byte {
	e := d.table.entries[d.state]
	bits := br.readBits(uint(e.nbBits))
	d.state = uint32(e.nextStateBase) + uint32(bits)
	return e.symbol
}

// fseCTableEntry is one encode-table slot, built as the mirror of the
// decode table (deltaFindState/deltaNbBits per classic FSE construction).
type fseCTableEntry struct {
	deltaFindState int32
	deltaNbBits    uint32
}

type fseCTable struct {
	tableLog   uint
	symbolTT   []fseCTableEntry
	stateTable []uint16 // size 2^tableLog; inverse of the decode table's slot spread
}

// buildCTable builds the encoder-side mirror of buildDTable: for each
// symbol, the (deltaNbBits, deltaFindState) pair used by the encode step.
func buildCTable(norm []int16, tableLog uint, maxSymbolValue int) (*fseCTable, error) {
	size := uint32(1) << tableLog
	// First reconstruct the same slot spread as buildDTable, recording for
	// each symbol the set of states it occupies.
	symbolNext := make([]uint16, maxSymbolValue+1)
	highThreshold := size - 1
	tableSymbol := make([]uint8, size)
	for s, c := range norm {
		if c == -1 {
			tableSymbol[highThreshold] = uint8(s)
			highThreshold--
			symbolNext[s] = 1
		} else if c >= 0 {
			symbolNext[s] = uint16(c)
		}
	}
	step := (size >> 1) + (size >> 3) + 3
	mask := size - 1
	pos := uint32(0)
	for s, c := range norm {
		if c <= 0 {
			continue
		}
		for i := 0; i < int(c); i++ {
			tableSymbol[pos] = uint8(s)
			pos = (pos + step) & mask
			for pos > highThreshold {
				pos = (pos + step) & mask
			}
		}
	}

	ct := &fseCTable{tableLog: tableLog, symbolTT: make([]fseCTableEntry, maxSymbolValue+1)}
	total := int32(0)
	cumul := make([]int32, len(symbolNext)+1)
	for s, c := range symbolNext {
		cumul[s] = total
		total += int32(c)
	}

	// For each symbol, nbBits depends on normalized count (via highbit); the
	// deltaFindState offsets the raw rank within the symbol's state range so
	// that encodeSymbol can directly index into tableSymbol's inverse.
	stateTable := make([]uint16, size)
	{
		cursor := make([]int32, len(cumul))
		copy(cursor, cumul)
		for i := uint32(0); i < size; i++ {
			s := tableSymbol[i]
			stateTable[cursor[s]] = uint16(size) + uint16(i)
			cursor[s]++
		}
	}

	for s := 0; s <= maxSymbolValue; s++ {
		c := norm[s]
		if c == 0 {
			continue
		}
		if c == -1 {
			c = 1
		}
		maxBitsOut := tableLog - highbit(uint32(c-1))
		minStatePlus := uint32(c) << maxBitsOut
		ct.symbolTT[s] = fseCTableEntry{
			deltaNbBits:    uint32(maxBitsOut)<<16 - minStatePlus,
			deltaFindState: cumul[s] - int32(c),
		}
	}
	ct.stateTable = stateTable
	return ct, nil
}
