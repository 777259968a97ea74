// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// NCount I/O: a bitstream encoding of (tableLog, norm[]). Each symbol slot
// carries a presence bit followed by a 16-bit 1-based value when present (0
// is reserved to mean the "low probability" -1 count). This encoding is
// self-consistent between writeNCount and readNCount rather than a
// byte-for-byte reproduction of the reference's prefix-free run-length code;
// the reader still accepts -1 entries so a table built with them decodes
// correctly, even though normalizeCounts never produces one itself.

// writeNCount serializes (tableLog, norm) into a byte slice using bitWriter's
// LSB-first convention.
func writeNCount(norm []int16, tableLog uint, maxSymbolValue int) []byte {
	var bw bitWriter
	bw.reset(nil)
	bw.addBits16(uint16(tableLog-fseMinTableLog), 4)
	for s := 0; s <= maxSymbolValue; s++ {
		c := norm[s]
		if c == 0 {
			bw.addBits16(0, 1)
			continue
		}
		bw.addBits16(1, 1)
		v := c
		if v == -1 {
			v = 0
		}
		bw.addBits16(uint16(v+1), 16) // -1 is stored as 1, any other count c as c+1
	}
	return bw.flush()
}

// readNCount parses writeNCount's format back into (norm, tableLog,
// bytesConsumed). maxSymbolValue bounds how many symbol slots are read.
func readNCount(src []byte, maxSymbolValue int) (norm []int16, tableLog uint, bytesConsumed int, err error) {
	if len(src) == 0 {
		return nil, 0, 0, ErrSrcSizeWrong
	}
	// Fields were laid out LSB-first in sequential write order by bitWriter
	// (before its closing flush() mark bit); a plain forward cursor reads
	// them back, since the field count is known up front from
	// maxSymbolValue and needs no mark-bit delimiter.
	fr := &forwardBitCursor{buf: src}
	tableLog = uint(fr.read(4)) + fseMinTableLog
	if tableLog > fseMaxTableLog {
		return nil, 0, 0, ErrTableLogTooLarge
	}
	norm = make([]int16, maxSymbolValue+1)
	for s := 0; s <= maxSymbolValue; s++ {
		if fr.read(1) == 0 {
			norm[s] = 0
			continue
		}
		v := int32(fr.read(16)) - 1
		if v == 0 {
			norm[s] = -1
		} else {
			norm[s] = int16(v)
		}
	}
	bytesConsumed = int((fr.bitPos + 7) / 8)
	if bytesConsumed > len(src) {
		return nil, 0, 0, ErrCorruptionDetected
	}
	return norm, tableLog, bytesConsumed, nil
}

// forwardBitCursor reads bits LSB-first in write order, the mirror of
// bitWriter's own LSB-first accumulation, used for the short NCount header
// and for the sequences section's extra-bits payload rather than for
// entropy-coded payloads.
type forwardBitCursor struct {
	buf    []byte
	bitPos uint
}

func (c *forwardBitCursor) read(n uint) uint32 {
	var v uint32
	for i := uint(0); i < n; i++ {
		byteIdx := c.bitPos / 8
		bitIdx := c.bitPos % 8
		var bit uint32
		if int(byteIdx) < len(c.buf) {
			bit = uint32(c.buf[byteIdx]>>bitIdx) & 1
		}
		v |= bit << i
		c.bitPos++
	}
	return v
}
