// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// Block format (§4): a 3-byte little-endian header
// (lastBlock | blockType<<1 | blockSize<<3) followed by a literals section
// and, for compressed blocks, a sequences section. Raw and RLE blocks carry
// no sequences section at all.

type blockType int

const (
	blockRaw blockType = iota
	blockRLE
	blockCompressed
	blockReserved
)

const maxBlockSize = 128 << 10

// writeBlockHeader appends the 3-byte block header.
func writeBlockHeader(dst []byte, lastBlock bool, bt blockType, size int) []byte {
	h := uint32(size) << 3
	h |= uint32(bt) << 1
	if lastBlock {
		h |= 1
	}
	return append(dst, byte(h), byte(h>>8), byte(h>>16))
}

// readBlockHeader parses the 3-byte header.
func readBlockHeader(src []byte) (lastBlock bool, bt blockType, size int, err error) {
	if len(src) < 3 {
		return false, 0, 0, ErrSrcSizeWrong
	}
	h := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
	lastBlock = h&1 != 0
	bt = blockType((h >> 1) & 3)
	size = int(h >> 3)
	return lastBlock, bt, size, nil
}

// literalsSectionType mirrors blockType's raw/rle/compressed triplet but
// scoped to the literals section alone (§4.3).
type literalsSectionType int

const (
	litRaw literalsSectionType = iota
	litRLE
	litCompressed
)

// blockEncodeTables threads repeat-mode FSE/Huffman state across blocks
// within one frame: a block that chooses modeRepeat reuses the previous
// block's table outright, and every block's actually-used tables become the
// next block's candidate for reuse.
type blockEncodeTables struct {
	ll, ml, of                *fseCTable
	llValid, mlValid, ofValid bool
	huffTable                 *huffCTable
	huffValid                 bool
}

// blockDecodeTables is blockEncodeTables' decode-side mirror, caching built
// decode tables instead of encode tables for modeRepeat.
type blockDecodeTables struct {
	ll, ml, of                *fseDTable
	llValid, mlValid, ofValid bool
	huffTable                 *huffDTableX1
	huffValid                 bool
}

// encodeBlock serializes one block's seqStore into wire bytes, choosing
// block type and literals/sequences encodings, and updates tables in place
// for the next block's repeat-mode candidates.
func encodeBlock(ss *seqStore, lastBlock bool, tables *blockEncodeTables) []byte {
	seqs := ss.sequences
	if n := len(seqs); n > 0 {
		last := seqs[n-1]
		if last.offsetCode == trailingLiteralsMarker && last.matchLen == 0 {
			seqs = seqs[:n-1]
		}
	}

	if len(seqs) == 0 && allSameByte(ss.literals) {
		return append(writeBlockHeader(nil, lastBlock, blockRLE, len(ss.literals)), ss.literals[0])
	}

	litPayload, litUsedHuff, ct := encodeLiteralsSection(ss.literals, tables)
	if litUsedHuff {
		tables.huffTable, tables.huffValid = ct, true
	}

	seqPayload := encodeSequencesSection(ss, seqs, tables)

	body := append(append([]byte{}, litPayload...), seqPayload...)
	if len(body) >= len(ss.literals) && len(seqs) == 0 {
		// Nothing compressed and no sequences: a pure raw block is both
		// simpler and never larger, so prefer it.
		return append(writeBlockHeader(nil, lastBlock, blockRaw, len(ss.literals)), ss.literals...)
	}
	return append(writeBlockHeader(nil, lastBlock, blockCompressed, len(body)), body...)
}

// encodeLiteralsSection picks raw/RLE/Huffman per §4.3's fallback rule:
// Huffman is used only when it actually shrinks the payload versus raw.
// A fresh Huffman table is built and sent for every block; the previous
// block's table is never reused (there is no Huffman repeat mode).
func encodeLiteralsSection(lits []byte, tables *blockEncodeTables) (out []byte, usedHuff bool, ct *huffCTable) {
	n := len(lits)
	if n == 0 {
		return append([]byte{byte(litRaw)}, putUint32LE(nil, 0)...), false, nil
	}
	if allSameByte(lits) {
		out = append([]byte{byte(litRLE)}, putUint32LE(nil, uint32(n))...)
		out = append(out, lits[0])
		return out, false, nil
	}

	var freq [256]uint32
	for _, b := range lits {
		freq[b]++
	}
	maxSymbol := 0
	for s := 255; s >= 0; s-- {
		if freq[s] > 0 {
			maxSymbol = s
			break
		}
	}
	built, err := buildHuffCTable(freq[:], maxSymbol, huffMaxBits)
	if err != nil {
		out = append([]byte{byte(litRaw)}, putUint32LE(nil, uint32(n))...)
		out = append(out, lits...)
		return out, false, nil
	}
	useFour := n >= 4*256
	payload := huffmanEncodeLiterals(lits, built, useFour)
	weights := weightsFromLengths(built.length, built.maxBits())
	weightBytes := encodeWeights(weights, maxSymbol)

	header := []byte{byte(litCompressed)}
	header = putUint32LE(header, uint32(n))
	header = append(header, boolByte(useFour))
	header = putUint32LE(header, uint32(len(weightBytes)))
	header = append(header, weightBytes...)
	full := append(header, payload...)

	if len(full) >= n+1 {
		out = append([]byte{byte(litRaw)}, putUint32LE(nil, uint32(n))...)
		out = append(out, lits...)
		return out, false, nil
	}
	return full, true, built
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func allSameByte(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, v := range b[1:] {
		if v != b[0] {
			return false
		}
	}
	return true
}

// decodeLiteralsSection is encodeLiteralsSection's inverse. fastPath comes
// from the decompression context's capabilities and only affects which
// Huffman decode table flavor is built, never the bytes produced.
func decodeLiteralsSection(src []byte, fastPath bool) (literals []byte, bytesConsumed int, err error) {
	if len(src) < 1 {
		return nil, 0, ErrSrcSizeWrong
	}
	typ := literalsSectionType(src[0])
	switch typ {
	case litRaw:
		if len(src) < 5 {
			return nil, 0, ErrSrcSizeWrong
		}
		n := int(getUint32LE(src[1:5]))
		if 5+n > len(src) {
			return nil, 0, ErrCorruptionDetected
		}
		return append([]byte{}, src[5:5+n]...), 5 + n, nil
	case litRLE:
		if len(src) < 6 {
			return nil, 0, ErrSrcSizeWrong
		}
		n := int(getUint32LE(src[1:5]))
		b := src[5]
		out := make([]byte, n)
		for i := range out {
			out[i] = b
		}
		return out, 6, nil
	case litCompressed:
		if len(src) < 10 {
			return nil, 0, ErrSrcSizeWrong
		}
		n := int(getUint32LE(src[1:5]))
		useFour := src[5] != 0
		wlen := int(getUint32LE(src[6:10]))
		off := 10
		if off+wlen > len(src) {
			return nil, 0, ErrCorruptionDetected
		}
		weights, maxSymbol, _, err := decodeWeights(src[off : off+wlen])
		if err != nil {
			return nil, 0, err
		}
		off += wlen
		lengths, _, err := lengthsFromWeights(weights, maxSymbol)
		if err != nil {
			return nil, 0, err
		}
		payload := src[off:]
		var out []byte
		if selectHuffDecoder(n, fastPath) {
			dt, err := buildHuffDTableX2(lengths, maxSymbol)
			if err != nil {
				return nil, 0, err
			}
			out, err = huffmanDecodeLiteralsX2(payload, dt, n, useFour)
			if err != nil {
				return nil, 0, err
			}
		} else {
			dt, err := buildHuffDTableX1(lengths, maxSymbol)
			if err != nil {
				return nil, 0, err
			}
			out, err = huffmanDecodeLiteralsX1(payload, dt, n, useFour)
			if err != nil {
				return nil, 0, err
			}
		}
		return out, len(src), nil
	default:
		return nil, 0, ErrCorruptionDetected
	}
}

// encodeSequencesSection builds the §4.6 sequences section: nbSeq, three
// mode bytes, any dynamic NCount payloads or RLE symbols, then the three
// fields' independently-coded streams (this package keeps LL/ML/OF as three
// separate backward-read bitstreams instead of fusing them into one
// interleaved stream).
func encodeSequencesSection(ss *seqStore, seqs []sequence, tables *blockEncodeTables) []byte {
	nbSeq := len(seqs)
	out := putUint32LE(nil, uint32(nbSeq))
	if nbSeq == 0 {
		return out
	}

	// A litLength or matchLength that overflows the LL/ML code tables' 16-bit
	// extra-bit capacity (§4.6's "longLength" edge case) can't be carried
	// through the normal per-sequence extra-bits stream, so that one
	// sequence's true value rides a small side channel instead; the code
	// table still gets the field's max code so the bitstream stays
	// self-describing.
	longLenID, longLenPos := ss.longLengthID, ss.longLengthPos
	if longLenID != 0 && longLenPos >= nbSeq {
		longLenID = 0 // the flagged sequence was the trailing-literals marker, already stripped
	}

	llCodes, mlCodes, ofCodes, llExtra, mlExtra, ofExtra := projectSlice(ss, seqs)
	if longLenID == 1 {
		llCodes[longLenPos] = maxLLCode
		llExtra[longLenPos] = 0
	} else if longLenID == 2 {
		mlCodes[longLenPos] = maxMLCode
		mlExtra[longLenPos] = 0
	}

	llMode, llNorm, llLog, llRLESym := chooseFieldMode(llCodes, maxLLCode, tables.ll, tables.llValid)
	mlMode, mlNorm, mlLog, mlRLESym := chooseFieldMode(mlCodes, maxMLCode, tables.ml, tables.mlValid)
	ofMode, ofNorm, ofLog, ofRLESym := chooseFieldMode(ofCodes, maxOFCode, tables.of, tables.ofValid)

	out = append(out, byte(llMode), byte(mlMode), byte(ofMode))

	llCT := fieldTable(llMode, llNorm, llLog, maxLLCode, defaultLLNorm, fseDefaultLLLog, tables.ll, llRLESym)
	mlCT := fieldTable(mlMode, mlNorm, mlLog, maxMLCode, defaultMLNorm, fseDefaultMLLog, tables.ml, mlRLESym)
	ofCT := fieldTable(ofMode, ofNorm, ofLog, maxOFCode, defaultOFNorm, fseDefaultOffLog, tables.of, ofRLESym)

	out = appendFieldHeader(out, llMode, llNorm, llLog, maxLLCode, llRLESym)
	out = appendFieldHeader(out, mlMode, mlNorm, mlLog, maxMLCode, mlRLESym)
	out = appendFieldHeader(out, ofMode, ofNorm, ofLog, maxOFCode, ofRLESym)

	tables.ll, tables.llValid = llCT, true
	tables.ml, tables.mlValid = mlCT, true
	tables.of, tables.ofValid = ofCT, true

	out = appendCodeStream(out, llCT, llCodes)
	out = appendCodeStream(out, mlCT, mlCodes)
	out = appendCodeStream(out, ofCT, ofCodes)

	var ebw bitWriter
	ebw.reset(nil)
	for i := 0; i < nbSeq; i++ {
		ebw.addBits16(uint16(llExtra[i]), uint(llExtraBits[llCodes[i]]))
		ebw.addBits16(uint16(mlExtra[i]), uint(mlExtraBits[mlCodes[i]]))
		writeWideExtra(&ebw, ofExtra[i], uint(ofCodes[i]))
	}
	extraBytes := ebw.flush()
	out = putUint32LE(out, uint32(len(extraBytes)))
	out = append(out, extraBytes...)

	out = append(out, byte(longLenID))
	if longLenID != 0 {
		out = putUint32LE(out, uint32(longLenPos))
		var actual uint32
		if longLenID == 1 {
			actual = seqs[longLenPos].litLength
		} else {
			actual = seqs[longLenPos].matchLen
		}
		out = putUint32LE(out, actual)
	}
	return out
}

// writeWideExtra handles offset extra-bit counts above 16, which addBits16
// alone can't carry in one call.
func writeWideExtra(bw *bitWriter, v uint32, bitsNeeded uint) {
	for bitsNeeded > 16 {
		bw.addBits16(uint16(v), 16)
		v >>= 16
		bitsNeeded -= 16
	}
	bw.addBits16(uint16(v), bitsNeeded)
}

func readWideExtra(br *bitReader, bitsNeeded uint) uint32 {
	var v uint32
	var shift uint
	for bitsNeeded > 16 {
		v |= uint32(br.readBits(16)) << shift
		shift += 16
		bitsNeeded -= 16
	}
	v |= uint32(br.readBits(bitsNeeded)) << shift
	return v
}

func projectSlice(ss *seqStore, seqs []sequence) (llCodes, mlCodes, ofCodes []uint8, llExtra, mlExtra, ofExtra []uint32) {
	n := len(seqs)
	llCodes, mlCodes, ofCodes = make([]uint8, n), make([]uint8, n), make([]uint8, n)
	llExtra, mlExtra, ofExtra = make([]uint32, n), make([]uint32, n), make([]uint32, n)
	for i, sq := range seqs {
		llc := llCodeFor(sq.litLength)
		mlc := mlCodeFor(sq.matchLen + 3) // ML codes cover the true length (baseline 3)
		ofc := ofCodeFor(sq.offsetCode)
		llCodes[i], mlCodes[i], ofCodes[i] = llc, mlc, ofc
		llExtra[i] = sq.litLength - llBaseline[llc]
		mlExtra[i] = sq.matchLen + 3 - mlBaseline[mlc]
		if ofc > 0 {
			ofExtra[i] = sq.offsetCode - (uint32(1) << ofc)
		} else {
			ofExtra[i] = sq.offsetCode
		}
	}
	return
}

func chooseFieldMode(codes []uint8, maxCode int, prev *fseCTable, prevValid bool) (mode fseTableMode, norm []int16, tableLog uint, rleSym uint8) {
	var counts [256]uint32
	for _, c := range codes {
		counts[c]++
		// The previous table is only reusable if it can encode every code:
		// a symbol absent from it has a zero symbolTT entry.
		if prevValid && (prev == nil || int(c) >= len(prev.symbolTT) || prev.symbolTT[c] == (fseCTableEntry{})) {
			prevValid = false
		}
	}
	mode = chooseMode(counts[:maxCode+1], len(codes), maxCode, prevValid)
	if mode == modeRLE {
		rleSym = codes[0]
		return
	}
	if mode == modeDynamic {
		tableLog = pickTableLog(maxCode, len(codes))
		norm = normalizeCounts(counts[:maxCode+1], tableLog, maxCode)
	}
	return
}

func pickTableLog(maxCode, nbSeq int) uint {
	tl := uint(highbit(uint32(nbSeq))) + 2
	if tl < fseMinTableLog {
		tl = fseMinTableLog
	}
	if tl > fseMaxTableLog {
		tl = fseMaxTableLog
	}
	return tl
}

func fieldTable(mode fseTableMode, norm []int16, tableLog uint, maxCode int, defaultNorm []int16, defaultLog uint, prev *fseCTable, rleSym uint8) *fseCTable {
	switch mode {
	case modeRepeat:
		return prev
	case modePredefined:
		ct, _ := buildCTable(defaultNorm, defaultLog, maxCode)
		return ct
	case modeRLE:
		n := make([]int16, maxCode+1)
		n[rleSym] = 1
		ct, _ := buildCTable(n, 0, maxCode)
		return ct
	default: // dynamic
		ct, _ := buildCTable(norm, tableLog, maxCode)
		return ct
	}
}

func appendFieldHeader(out []byte, mode fseTableMode, norm []int16, tableLog uint, maxCode int, rleSym uint8) []byte {
	switch mode {
	case modeRLE:
		return append(out, rleSym)
	case modeDynamic:
		nc := writeNCount(norm, tableLog, maxCode)
		out = putUint32LE(out, uint32(len(nc)))
		return append(out, nc...)
	default:
		return out
	}
}

func appendCodeStream(out []byte, ct *fseCTable, codes []uint8) []byte {
	var bw bitWriter
	bw.reset(nil)
	enc := newFSEEncoder(ct)
	n := len(codes)
	enc.init(codes[n-1])
	for i := n - 2; i >= 0; i-- {
		enc.encodeSymbol(&bw, codes[i])
	}
	enc.flush(&bw)
	payload := bw.flush()
	out = putUint32LE(out, uint32(len(payload)))
	return append(out, payload...)
}

// decodeSequencesSection is encodeSequencesSection's inverse, reconstructing
// each sequence's (litLength, matchLength, trueOffset) via rep.
func decodeSequencesSection(src []byte, tables *blockDecodeTables, rep *repOffsets) (seqs []sequence, consumed int, err error) {
	if len(src) < 4 {
		return nil, 0, ErrSrcSizeWrong
	}
	nbSeq := int(getUint32LE(src[:4]))
	off := 4
	if nbSeq == 0 {
		return nil, off, nil
	}
	if off+3 > len(src) {
		return nil, 0, ErrSrcSizeWrong
	}
	llMode := fseTableMode(src[off])
	mlMode := fseTableMode(src[off+1])
	ofMode := fseTableMode(src[off+2])
	off += 3

	llDT, n, err := readFieldHeader(src[off:], llMode, maxLLCode, defaultLLNorm, fseDefaultLLLog, tables.ll)
	if err != nil {
		return nil, 0, err
	}
	off += n
	mlDT, n, err := readFieldHeader(src[off:], mlMode, maxMLCode, defaultMLNorm, fseDefaultMLLog, tables.ml)
	if err != nil {
		return nil, 0, err
	}
	off += n
	ofDT, n, err := readFieldHeader(src[off:], ofMode, maxOFCode, defaultOFNorm, fseDefaultOffLog, tables.of)
	if err != nil {
		return nil, 0, err
	}
	off += n

	llCodes, n, err := readCodeStream(src[off:], llDT, nbSeq)
	if err != nil {
		return nil, 0, err
	}
	off += n
	mlCodes, n, err := readCodeStream(src[off:], mlDT, nbSeq)
	if err != nil {
		return nil, 0, err
	}
	off += n
	ofCodes, n, err := readCodeStream(src[off:], ofDT, nbSeq)
	if err != nil {
		return nil, 0, err
	}
	off += n

	if off+4 > len(src) {
		return nil, 0, ErrSrcSizeWrong
	}
	elen := int(getUint32LE(src[off : off+4]))
	off += 4
	if off+elen > len(src) {
		return nil, 0, ErrCorruptionDetected
	}
	br := &forwardBitCursor{buf: src[off : off+elen]}
	off += elen

	seqs = make([]sequence, nbSeq)
	for i := 0; i < nbSeq; i++ {
		llExtra := br.read(uint(llExtraBits[llCodes[i]]))
		mlExtra := br.read(uint(mlExtraBits[mlCodes[i]]))
		ofExtra := readWideExtraForward(br, uint(ofCodes[i]))
		ll := llValue(llCodes[i], llExtra)
		ml := mlValue(mlCodes[i], mlExtra) - 3 // back to the stored length-minus-3 form
		ofRaw := ofValue(ofCodes[i], ofExtra)
		trueOffset := rep.decodeOffset(ofRaw, ll)
		seqs[i] = sequence{litLength: ll, matchLen: ml, offsetCode: trueOffset}
	}

	if off >= len(src) {
		return nil, 0, ErrSrcSizeWrong
	}
	longLenID := src[off]
	off++
	if longLenID != 0 {
		if off+8 > len(src) {
			return nil, 0, ErrSrcSizeWrong
		}
		pos := int(getUint32LE(src[off : off+4]))
		actual := getUint32LE(src[off+4 : off+8])
		off += 8
		if pos >= nbSeq {
			return nil, 0, ErrCorruptionDetected
		}
		if longLenID == 1 {
			seqs[pos].litLength = actual
		} else if longLenID == 2 {
			seqs[pos].matchLen = actual
		} else {
			return nil, 0, ErrCorruptionDetected
		}
	}

	tables.ll, tables.llValid = llDT, true
	tables.ml, tables.mlValid = mlDT, true
	tables.of, tables.ofValid = ofDT, true

	return seqs, off, nil
}

func readWideExtraForward(c *forwardBitCursor, bitsNeeded uint) uint32 {
	var v uint32
	var shift uint
	for bitsNeeded > 16 {
		v |= c.read(16) << shift
		shift += 16
		bitsNeeded -= 16
	}
	v |= c.read(bitsNeeded) << shift
	return v
}

func readFieldHeader(src []byte, mode fseTableMode, maxCode int, defaultNorm []int16, defaultLog uint, prev *fseDTable) (*fseDTable, int, error) {
	switch mode {
	case modeRLE:
		if len(src) < 1 {
			return nil, 0, ErrSrcSizeWrong
		}
		norm := make([]int16, maxCode+1)
		norm[src[0]] = 1
		dt, err := buildDTable(norm, 0, maxCode)
		return dt, 1, err
	case modeDynamic:
		if len(src) < 4 {
			return nil, 0, ErrSrcSizeWrong
		}
		nlen := int(getUint32LE(src[:4]))
		if 4+nlen > len(src) {
			return nil, 0, ErrCorruptionDetected
		}
		norm, tableLog, _, err := readNCount(src[4:4+nlen], maxCode)
		if err != nil {
			return nil, 0, err
		}
		dt, err := buildDTable(norm, tableLog, maxCode)
		return dt, 4 + nlen, err
	case modePredefined:
		dt, err := buildDTable(defaultNorm, defaultLog, maxCode)
		return dt, 0, err
	case modeRepeat:
		if prev == nil {
			return nil, 0, ErrCorruptionDetected
		}
		return prev, 0, nil
	default:
		return nil, 0, ErrCorruptionDetected
	}
}

func readCodeStream(src []byte, dt *fseDTable, nbSeq int) ([]uint8, int, error) {
	if len(src) < 4 {
		return nil, 0, ErrSrcSizeWrong
	}
	plen := int(getUint32LE(src[:4]))
	if 4+plen > len(src) {
		return nil, 0, ErrCorruptionDetected
	}
	payload := src[4 : 4+plen]
	br, err := initBitReader(payload)
	if err != nil {
		return nil, 0, err
	}
	dec := newFSEDecoder(dt, br)
	out := make([]uint8, nbSeq)
	for i := 0; i < nbSeq; i++ {
		out[i] = dec.decodeSymbol(br)
	}
	return out, 4 + plen, nil
}
