// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "sort"

// Huffman entropy coding for the literals section (§4.3): weight-table I/O,
// CTable build with depth-limited rebalancing, and the two decoder flavors
// (X1 single-symbol, X2 double-symbol).
//
// Weight I/O always uses a direct representation (a header byte holding
// maxSymbol, then a 4-bit weight nibble per symbol, last symbol implied);
// the weight vector is never FSE-compressed, which removes an entire FSE
// round-trip from the highest-risk subsystem in this codec.

const huffMaxBits = 11

// huffCTable is a built encode table: per-symbol (code, length).
type huffCTable struct {
	maxSymbol int
	length    []uint8
	code      []uint16
}

// buildHuffCTable computes code lengths via a classic Huffman merge, then
// depth-limits to maxNbBits using the standard overflow/bl_count rebalance
// (§4.3's overflow/downgrade-deepest-leaves/upgrade-shortest rule), then
// assigns canonical codes.
func buildHuffCTable(freq []uint32, maxSymbol int, maxNbBits uint) (*huffCTable, error) {
	type node struct {
		freq   uint64
		parent int
	}
	present := 0
	for s := 0; s <= maxSymbol; s++ {
		if freq[s] > 0 {
			present++
		}
	}
	lengths := make([]uint8, maxSymbol+1)
	if present == 0 {
		return &huffCTable{maxSymbol: maxSymbol, length: lengths, code: make([]uint16, maxSymbol+1)}, nil
	}
	if present == 1 {
		for s := 0; s <= maxSymbol; s++ {
			if freq[s] > 0 {
				lengths[s] = 1
			}
		}
		return assignCanonicalCodes(maxSymbol, lengths), nil
	}

	// active holds indices into nodes of currently-unmerged trees, kept
	// sorted by freq ascending (n <= 256, so a simple sorted slice is fine).
	nodes := make([]node, 0, 2*present)
	active := make([]int, 0, present)
	symbolOfNode := make(map[int]int, present)
	for s := 0; s <= maxSymbol; s++ {
		if freq[s] == 0 {
			continue
		}
		idx := len(nodes)
		nodes = append(nodes, node{freq: uint64(freq[s]), parent: -1})
		symbolOfNode[idx] = s
		active = append(active, idx)
	}
	sort.Slice(active, func(i, j int) bool { return nodes[active[i]].freq < nodes[active[j]].freq })

	for len(active) > 1 {
		a, b := active[0], active[1]
		rest := append([]int{}, active[2:]...)
		parentIdx := len(nodes)
		nodes = append(nodes, node{freq: nodes[a].freq + nodes[b].freq, parent: -1})
		nodes[a].parent = parentIdx
		nodes[b].parent = parentIdx
		// insert parentIdx into rest, keeping ascending freq order.
		pos := sort.Search(len(rest), func(i int) bool { return nodes[rest[i]].freq >= nodes[parentIdx].freq })
		rest = append(rest, 0)
		copy(rest[pos+1:], rest[pos:])
		rest[pos] = parentIdx
		active = rest
	}

	depth := make([]int, len(nodes))
	maxDepth := 0
	for i := range nodes {
		d := 0
		for p := nodes[i].parent; p != -1; p = nodes[p].parent {
			d++
		}
		depth[i] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	// bl_count[len] = number of leaves at that length, capping overflow at
	// maxNbBits and counting how many leaves were capped.
	blCount := make([]int, maxDepth+2)
	overflow := 0
	for idx, s := range symbolOfNode {
		d := depth[idx]
		if d == 0 {
			d = 1 // a single merge level minimum for any real leaf
		}
		if uint(d) > maxNbBits {
			overflow++
			d = int(maxNbBits)
		}
		lengths[s] = uint8(d)
		blCount[d]++
	}

	for overflow > 0 {
		bits := int(maxNbBits) - 1
		for bits > 0 && blCount[bits] == 0 {
			bits--
		}
		if bits == 0 {
			break // degenerate: nothing left to borrow from, accept as-is
		}
		blCount[bits]--
		blCount[bits+1] += 2
		blCount[int(maxNbBits)]--
		overflow -= 2
	}

	// Reassign lengths from blCount: higher-frequency symbols get shorter
	// codes, a simplification of the reference's exact heap-pop order.
	type fs struct {
		sym  int
		freq uint32
	}
	present2 := make([]fs, 0, present)
	for s := 0; s <= maxSymbol; s++ {
		if freq[s] > 0 {
			present2 = append(present2, fs{s, freq[s]})
		}
	}
	sort.Slice(present2, func(i, j int) bool { return present2[i].freq > present2[j].freq })
	i := 0
	for length := 1; length <= int(maxNbBits); length++ {
		for c := 0; c < blCount[length] && i < len(present2); c++ {
			lengths[present2[i].sym] = uint8(length)
			i++
		}
	}
	for ; i < len(present2); i++ {
		lengths[present2[i].sym] = uint8(maxNbBits)
	}

	return assignCanonicalCodes(maxSymbol, lengths), nil
}

// assignCanonicalCodes builds canonical Huffman codes from a length array:
// symbols sorted by (length, symbol) ascending get consecutive codes,
// extended by left-shift whenever length increases.
func assignCanonicalCodes(maxSymbol int, lengths []uint8) *huffCTable {
	type sl struct {
		sym int
		len uint8
	}
	list := make([]sl, 0, maxSymbol+1)
	for s := 0; s <= maxSymbol; s++ {
		if lengths[s] > 0 {
			list = append(list, sl{s, lengths[s]})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].len != list[j].len {
			return list[i].len < list[j].len
		}
		return list[i].sym < list[j].sym
	})
	codes := make([]uint16, maxSymbol+1)
	var code uint16
	prevLen := uint8(0)
	for _, e := range list {
		if prevLen != 0 {
			code <<= uint(e.len - prevLen)
		}
		codes[e.sym] = code
		code++
		prevLen = e.len
	}
	return &huffCTable{maxSymbol: maxSymbol, length: lengths, code: codes}
}

// encode writes symbol's canonical code. Huffman streams pack codes
// MSB-first of the code value, matching the bitWriter/bitReader convention
// used elsewhere (codes are emitted via addBits16 like any other field).
func (t *huffCTable) encode(bw *bitWriter, symbol byte) {
	bw.addBits16(t.code[symbol], uint(t.length[symbol]))
}

func (t *huffCTable) maxBits() uint {
	var m uint8
	for _, l := range t.length {
		if l > m {
			m = l
		}
	}
	return uint(m)
}

// --- weight table I/O (direct 4-bit representation) ---

// weightsFromLengths converts code lengths to zstd's weight convention:
// weight = maxBits+1-length for present symbols, 0 for absent; the last
// present symbol's weight is implied on the wire.
func weightsFromLengths(lengths []uint8, maxBits uint) []uint8 {
	w := make([]uint8, len(lengths))
	for s, l := range lengths {
		if l == 0 {
			w[s] = 0
			continue
		}
		w[s] = uint8(maxBits) + 1 - l
	}
	return w
}

// lengthsFromWeights is the inverse of weightsFromLengths. By convention
// (enforced by callers and encodeWeights) maxSymbol is always the highest
// symbol actually present, so its weight is exactly the one left implied on
// the wire; this function fills it in before computing maxBits.
func lengthsFromWeights(weights []uint8, maxSymbol int) (lengths []uint8, maxBits uint, err error) {
	var partial uint32
	for s := 0; s < maxSymbol; s++ {
		if weights[s] > 0 {
			partial += uint32(1) << (weights[s] - 1)
		}
	}
	if partial == 0 && maxSymbol == 0 {
		weights[0] = 1
	} else {
		p := highbit(partial) + 1
		total := uint32(1) << p
		if total <= partial {
			p++
			total = uint32(1) << p
		}
		remainder := total - partial
		weights[maxSymbol] = uint8(highbit(remainder) + 1)
		maxBits = uint(p)
	}
	if maxBits == 0 {
		maxBits = 1
	}

	lengths = make([]uint8, maxSymbol+1)
	for s := 0; s <= maxSymbol; s++ {
		w := weights[s]
		if w == 0 {
			continue
		}
		lengths[s] = uint8(maxBits) + 1 - w
	}
	return lengths, maxBits, nil
}

// encodeWeights serializes a weight vector using 4-bit nibbles, header byte
// maxSymbol (the highest present symbol, whose weight is then implied and
// omitted from the payload — see lengthsFromWeights).
func encodeWeights(weights []uint8, maxSymbol int) []byte {
	out := []byte{byte(maxSymbol)}
	var nibble byte
	half := false
	for s := 0; s < maxSymbol; s++ {
		w := weights[s] & 0xF
		if !half {
			nibble = w << 4
			half = true
		} else {
			out = append(out, nibble|w)
			half = false
		}
	}
	if half {
		out = append(out, nibble)
	}
	return out
}

// decodeWeights parses encodeWeights' format. The returned weights slice has
// length maxSymbol+1 with index maxSymbol left at zero, to be filled in by
// lengthsFromWeights.
func decodeWeights(src []byte) (weights []uint8, maxSymbol int, bytesConsumed int, err error) {
	if len(src) < 1 {
		return nil, 0, 0, ErrSrcSizeWrong
	}
	maxSymbol = int(src[0])
	weights = make([]uint8, maxSymbol+1)
	nExplicit := maxSymbol
	nBytes := (nExplicit + 1) / 2
	if 1+nBytes > len(src) {
		return nil, 0, 0, ErrCorruptionDetected
	}
	idx := 0
	for i := 0; i < nBytes && idx < nExplicit; i++ {
		b := src[1+i]
		weights[idx] = b >> 4
		idx++
		if idx < nExplicit {
			weights[idx] = b & 0xF
			idx++
		}
	}
	return weights, maxSymbol, 1 + nBytes, nil
}

// --- X1 decoder: one symbol per table slot ---

type huffDEntry1 struct {
	symbol byte
	nbBits uint8
}

type huffDTableX1 struct {
	tableLog uint
	entries  []huffDEntry1
}

// buildHuffDTableX1 fills a 2^tableLog slot table: a symbol with canonical
// code c of length l occupies the contiguous range
// [c<<(tableLog-l), (c+1)<<(tableLog-l)), matching how lookBits(tableLog)
// reproduces readBits(l)'s value in its top l bits (see bitReader.lookBits).
func buildHuffDTableX1(lengths []uint8, maxSymbol int) (*huffDTableX1, error) {
	ct := assignCanonicalCodes(maxSymbol, lengths)
	tableLog := ct.maxBits()
	if tableLog == 0 {
		tableLog = 1
	}
	if tableLog > huffMaxBits {
		return nil, ErrTableLogTooLarge
	}
	size := uint32(1) << tableLog
	dt := &huffDTableX1{tableLog: tableLog, entries: make([]huffDEntry1, size)}
	for s := 0; s <= maxSymbol; s++ {
		l := lengths[s]
		if l == 0 {
			continue
		}
		start := uint32(ct.code[s]) << (tableLog - uint(l))
		count := uint32(1) << (tableLog - uint(l))
		for i := uint32(0); i < count; i++ {
			dt.entries[start+i] = huffDEntry1{symbol: byte(s), nbBits: l}
		}
	}
	return dt, nil
}

func (dt *huffDTableX1) decodeOne(br *bitReader) byte {
	e := dt.entries[br.lookBits(dt.tableLog)]
	br.skipBits(uint(e.nbBits))
	return e.symbol
}

// --- X2 decoder: table slots may carry two symbols at once ---

type huffDEntry2 struct {
	sym1, sym2 byte
	nbSymbols  uint8 // 1 or 2
	nbBits     uint8
}

type huffDTableX2 struct {
	tableLog uint
	entries  []huffDEntry2
}

// buildHuffDTableX2 starts from the same single-symbol fill as X1, then
// refines the range belonging to any symbol whose own code is at most half
// of tableLog by further splitting it per second symbol, giving those slots
// a 2-symbols-per-decode payload. Symbols with longer codes keep their plain
// single-symbol range. Restricting the doubling to short first-codes avoids
// needing the reference's full rank-based two-level construction while
// remaining a strict refinement of a valid table.
func buildHuffDTableX2(lengths []uint8, maxSymbol int) (*huffDTableX2, error) {
	ct := assignCanonicalCodes(maxSymbol, lengths)
	tableLog := ct.maxBits()
	if tableLog == 0 {
		tableLog = 1
	}
	if tableLog > huffMaxBits {
		return nil, ErrTableLogTooLarge
	}
	size := uint32(1) << tableLog
	dt := &huffDTableX2{tableLog: tableLog, entries: make([]huffDEntry2, size)}
	for s := 0; s <= maxSymbol; s++ {
		l := lengths[s]
		if l == 0 {
			continue
		}
		start := uint32(ct.code[s]) << (tableLog - uint(l))
		count := uint32(1) << (tableLog - uint(l))
		for i := uint32(0); i < count; i++ {
			dt.entries[start+i] = huffDEntry2{sym1: byte(s), nbSymbols: 1, nbBits: l}
		}
	}
	half := tableLog / 2
	for s1 := 0; s1 <= maxSymbol; s1++ {
		l1 := lengths[s1]
		if l1 == 0 || uint(l1) > half {
			continue
		}
		for s2 := 0; s2 <= maxSymbol; s2++ {
			l2 := lengths[s2]
			if l2 == 0 || uint(l1)+uint(l2) > tableLog {
				continue
			}
			combined := (uint32(ct.code[s1]) << uint(l2)) | uint32(ct.code[s2])
			combinedLen := uint(l1) + uint(l2)
			start := combined << (tableLog - combinedLen)
			count := uint32(1) << (tableLog - combinedLen)
			for i := uint32(0); i < count; i++ {
				dt.entries[start+i] = huffDEntry2{
					sym1: byte(s1), sym2: byte(s2), nbSymbols: 2, nbBits: uint8(combinedLen),
				}
			}
		}
	}
	return dt, nil
}

// decode emits up to two bytes into out, returning how many were written;
// callers must stop after exactly the literal count they expect rather than
// relying on stream exhaustion, since the last decode may overshoot by one
// symbol when nbSymbols==2.
func (dt *huffDTableX2) decode(br *bitReader, out []byte) int {
	e := dt.entries[br.lookBits(dt.tableLog)]
	br.skipBits(uint(e.nbBits))
	out[0] = e.sym1
	if e.nbSymbols == 2 {
		out[1] = e.sym2
		return 2
	}
	return 1
}

// --- whole-literals-block helpers: single-stream and 4-stream framing ---

// huffmanEncodeLiterals Huffman-encodes literals with ctable, splitting into
// 4 independent streams when useFourStreams is set (§4.3's parallel decode
// layout) or a single stream otherwise. The 4-stream header is 3 uint16 LE
// lengths for streams 1-3; stream 4's length is implied by the remainder.
// Each stream is written last symbol first, since bitReader consumes a
// stream from its end.
func huffmanEncodeLiterals(literals []byte, ctable *huffCTable, useFourStreams bool) []byte {
	if !useFourStreams {
		var bw bitWriter
		bw.reset(nil)
		for i := len(literals) - 1; i >= 0; i-- {
			ctable.encode(&bw, literals[i])
		}
		return bw.flush()
	}
	n := len(literals)
	chunk := (n + 3) / 4
	bounds := [4][2]int{
		{0, min(chunk, n)},
	}
	for i := 1; i < 4; i++ {
		start := bounds[i-1][1]
		end := min(start+chunk, n)
		bounds[i] = [2]int{start, end}
	}
	out := make([]byte, 6)
	var streamLens [4]int
	for i := 0; i < 4; i++ {
		var bw bitWriter
		bw.reset(nil)
		seg := literals[bounds[i][0]:bounds[i][1]]
		for j := len(seg) - 1; j >= 0; j-- {
			ctable.encode(&bw, seg[j])
		}
		enc := bw.flush()
		streamLens[i] = len(enc)
		out = append(out, enc...)
	}
	out[0], out[1] = byte(streamLens[0]), byte(streamLens[0]>>8)
	out[2], out[3] = byte(streamLens[1]), byte(streamLens[1]>>8)
	out[4], out[5] = byte(streamLens[2]), byte(streamLens[2]>>8)
	return out
}

// huffDecoderX2Threshold is the literal count at and above which the
// double-symbol X2 table's larger build cost is worth paying for its faster
// decode loop; below it, X1's single-symbol table is cheaper overall.
// huffDecoderX2ThresholdFast is the lower threshold used when the context's
// capabilities report a BMI2-accelerated decode loop, since the faster inner
// loop pays back the table-build cost sooner.
const (
	huffDecoderX2Threshold     = 512
	huffDecoderX2ThresholdFast = 128
)

// selectHuffDecoder reports whether a literals block of this size should use
// the X2 (double-symbol) decode table instead of X1.
func selectHuffDecoder(nbLiterals int, fastPath bool) bool {
	if fastPath {
		return nbLiterals >= huffDecoderX2ThresholdFast
	}
	return nbLiterals >= huffDecoderX2Threshold
}

// huffmanDecodeLiteralsX1 is huffmanEncodeLiterals' inverse for the
// single-symbol table, producing exactly nbLiterals bytes.
func huffmanDecodeLiteralsX1(src []byte, dt *huffDTableX1, nbLiterals int, useFourStreams bool) ([]byte, error) {
	out := make([]byte, 0, nbLiterals)
	if !useFourStreams {
		br, err := initBitReader(src)
		if err != nil {
			return nil, err
		}
		for i := 0; i < nbLiterals; i++ {
			out = append(out, dt.decodeOne(br))
		}
		return out, nil
	}
	if len(src) < 6 {
		return nil, ErrSrcSizeWrong
	}
	l0 := int(src[0]) | int(src[1])<<8
	l1 := int(src[2]) | int(src[3])<<8
	l2 := int(src[4]) | int(src[5])<<8
	body := src[6:]
	if l0+l1+l2 > len(body) {
		return nil, ErrCorruptionDetected
	}
	s0, s1, s2, s3 := body[:l0], body[l0:l0+l1], body[l0+l1:l0+l1+l2], body[l0+l1+l2:]
	perStream := (nbLiterals + 3) / 4
	counts := [4]int{perStream, perStream, perStream, nbLiterals - 3*perStream}
	if counts[3] < 0 {
		counts[3] = 0
	}
	streams := [4][]byte{s0, s1, s2, s3}
	for i := 0; i < 4; i++ {
		if counts[i] == 0 {
			continue
		}
		br, err := initBitReader(streams[i])
		if err != nil {
			return nil, err
		}
		for j := 0; j < counts[i]; j++ {
			out = append(out, dt.decodeOne(br))
		}
	}
	return out, nil
}

// huffmanDecodeLiteralsX2 is huffmanEncodeLiterals' inverse for the
// double-symbol table. Each decode step can emit two bytes at once; the
// final step of a stream may overshoot by one symbol, so each stream is
// truncated back to its exact expected count once decoded.
func huffmanDecodeLiteralsX2(src []byte, dt *huffDTableX2, nbLiterals int, useFourStreams bool) ([]byte, error) {
	out := make([]byte, 0, nbLiterals+1)
	decodeInto := func(br *bitReader, want int) {
		var pair [2]byte
		got := 0
		for got < want {
			n := dt.decode(br, pair[:])
			out = append(out, pair[:n]...)
			got += n
		}
	}

	if !useFourStreams {
		br, err := initBitReader(src)
		if err != nil {
			return nil, err
		}
		decodeInto(br, nbLiterals)
		return out[:nbLiterals], nil
	}

	if len(src) < 6 {
		return nil, ErrSrcSizeWrong
	}
	l0 := int(src[0]) | int(src[1])<<8
	l1 := int(src[2]) | int(src[3])<<8
	l2 := int(src[4]) | int(src[5])<<8
	body := src[6:]
	if l0+l1+l2 > len(body) {
		return nil, ErrCorruptionDetected
	}
	s0, s1, s2, s3 := body[:l0], body[l0:l0+l1], body[l0+l1:l0+l1+l2], body[l0+l1+l2:]
	perStream := (nbLiterals + 3) / 4
	counts := [4]int{perStream, perStream, perStream, nbLiterals - 3*perStream}
	if counts[3] < 0 {
		counts[3] = 0
	}
	streams := [4][]byte{s0, s1, s2, s3}
	for i := 0; i < 4; i++ {
		if counts[i] == 0 {
			continue
		}
		br, err := initBitReader(streams[i])
		if err != nil {
			return nil, err
		}
		before := len(out)
		decodeInto(br, counts[i])
		out = out[:before+counts[i]]
	}
	return out, nil
}
