// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// llCode/mlCode/ofCode projection, predefined default distributions, and
// encoding-type selection (§4.2/§4.6). The code/extra-bit breakpoints follow
// the standard Zstandard wire format's §4.6 "standard piecewise tables".

const (
	maxLLCode = 35
	maxMLCode = 52
	maxOFCode = 31 // practical ceiling; real encoder emits up to windowLog
)

var llBaseline = [maxLLCode + 1]uint32{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 18, 20, 22, 24, 28, 32, 40, 48, 64, 128, 256, 512, 1024, 2048, 4096,
	8192, 16384, 32768, 65536,
}
var llExtraBits = [maxLLCode + 1]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 6, 7, 8, 9, 10, 11, 12,
	13, 14, 15, 16,
}

var mlBaseline = [maxMLCode + 1]uint32{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18,
	19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34,
	35, 37, 39, 41, 43, 47, 51, 59, 67, 83, 99, 131, 259, 515, 1027, 2051,
	4099, 8195, 16387, 32771, 65539,
}
var mlExtraBits = [maxMLCode + 1]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 7, 8, 9, 10, 11,
	12, 13, 14, 15, 16,
}

// llCodeFor/mlCodeFor find the code whose [baseline, baseline+2^extra) range
// contains v, by linear scan from the top (both tables are short).
func llCodeFor(v uint32) uint8 {
	for c := maxLLCode; c > 0; c-- {
		if v >= llBaseline[c] {
			return uint8(c)
		}
	}
	return 0
}

func mlCodeFor(v uint32) uint8 {
	for c := maxMLCode; c > 0; c-- {
		if v >= mlBaseline[c] {
			return uint8(c)
		}
	}
	return 0
}

// ofCodeFor returns highbit(offsetValue), the offset code per §4.6.
func ofCodeFor(offsetValue uint32) uint8 { return uint8(highbit(offsetValue)) }

// llValue/mlValue/ofValue reconstruct the original value from a code and its
// extra bits, read from the bitstream by the decoder.
func llValue(code uint8, extra uint32) uint32 { return llBaseline[code] + extra }
func mlValue(code uint8, extra uint32) uint32 { return mlBaseline[code] + extra }
func ofValue(code uint8, extra uint32) uint32 {
	if code == 0 {
		return extra
	}
	return (uint32(1) << code) + extra
}

// fseTableMode is the encoding-type selector for one of {LL, ML, OF} (§4.2).
type fseTableMode int

const (
	modeRaw fseTableMode = iota
	modeRLE
	modePredefined
	modeDynamic
	modeRepeat
)

// defaultLLNorm/defaultMLNorm/defaultOFNorm are the predefined normalized
// counts used whenever a block selects modePredefined for a field: fixed
// probability distributions tuned for typical sequence statistics rather
// than anything computed from this package's own data. A -1 entry marks a
// symbol given "less than 1" probability; its table slot still counts as 1
// toward the sum that must equal 2^tableLog.
var defaultLLNorm = []int16{
	4, 3, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2,
	2, 3, 2, 1, 1, 1, 1, 1,
	-1, -1, -1, -1,
}

var defaultMLNorm = []int16{
	1, 4, 3, 2, 2, 2, 2, 2,
	2, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, -1, -1,
	-1, -1, -1, -1, -1,
}

// The reference table only defines offset symbols up to 28 (sum of abs
// values 32, accuracy log 5); symbols 29-31 exist here only because this
// package's maxOFCode reaches higher, and they carry a 0 count. No block
// produces them: windowLog is at most 27 in the level table, so offset
// codes stay at or below 27. chooseMode itself does not check for them.
var defaultOFNorm = []int16{
	1, 1, 1, 1, 1, 1, 2, 2,
	2, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1,
	-1, -1, -1, -1, -1, 0, 0, 0,
}

// normalizeCounts converts raw symbol frequency counts into a normalized
// table summing to 2^tableLog, scaling down proportionally and guaranteeing
// every symbol with count>0 keeps at least normalized count 1 (§4.2).
func normalizeCounts(counts []uint32, tableLog uint, maxSymbol int) []int16 {
	size := int64(1) << tableLog
	var total int64
	for s := 0; s <= maxSymbol; s++ {
		total += int64(counts[s])
	}
	norm := make([]int16, maxSymbol+1)
	if total == 0 {
		norm[0] = int16(size)
		return norm
	}
	var assigned int64
	largest := 0
	for s := 0; s <= maxSymbol; s++ {
		if counts[s] == 0 {
			continue
		}
		c := int64(counts[s]) * size / total
		if c < 1 {
			c = 1
		}
		norm[s] = int16(c)
		assigned += c
		if counts[s] > counts[largest] {
			largest = s
		}
	}
	norm[largest] += int16(size - assigned)
	return norm
}

// chooseMode implements §4.2's rule set for one sequence-code table:
// rle iff the most frequent symbol accounts for every sequence; repeat iff
// the previous table is valid and reusing it is cheap enough; predefined
// for short sequence counts; otherwise dynamic.
func chooseMode(counts []uint32, nbSeq int, maxSymbol int, prevValid bool) fseTableMode {
	if nbSeq == 0 {
		return modePredefined
	}
	mostFrequent, mostFrequentCount := 0, uint32(0)
	for s := 0; s <= maxSymbol; s++ {
		if counts[s] > mostFrequentCount {
			mostFrequent, mostFrequentCount = s, counts[s]
		}
	}
	if int(mostFrequentCount) == nbSeq {
		return modeRLE
	}
	if prevValid && nbSeq < 64 {
		return modeRepeat
	}
	if nbSeq < 32 {
		return modePredefined
	}
	return modeDynamic
}
