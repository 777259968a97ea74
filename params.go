// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// strategy is the match-finder family selector (§4.4), ordered exactly as
// the parameter enumeration in §6.
type strategy int

const (
	stratFast strategy = iota + 1
	stratDFast
	stratGreedy
	stratLazy
	stratLazy2
	stratBTLazy2
	stratBTOpt
	stratBTUltra
	stratBTUltra2
)

// cParams is the seven-field compression-parameter tuple (§3/glossary).
type cParams struct {
	windowLog    uint
	hashLog      uint
	chainLog     uint
	searchLog    uint
	minMatch     uint
	targetLength uint
	strategy     strategy
}

// cycleLog derives the effective chain/BT table index width: strategies at
// or above btlazy2 reuse half the chain table as a binary tree (§3).
func (p cParams) cycleLog() uint {
	if p.strategy >= stratBTLazy2 {
		return p.chainLog - 1
	}
	return p.chainLog
}

// Parameter bounds, §6.
const (
	minWindowLog = 10
	maxWindowLog32 = 27
	maxWindowLog64 = 30
	minHashLog     = 6
	minChainLog    = 6
	minSearchLog   = 1
	maxSearchLog   = 30
	minMinMatch    = 3
	maxMinMatch    = 7
	minTargetLen   = 0
	maxTargetLen   = 131072
	minStrategy    = int(stratFast)
	maxStrategy    = int(stratBTUltra2)
	minLevel       = -(1 << 17)
	maxLevel       = 22
)

// maxWindowLog returns the platform-appropriate window-log ceiling. The
// library targets 64-bit hosts; 32-bit is modeled for parameter validation
// only.
func maxWindowLog(is32Bit bool) uint {
	if is32Bit {
		return maxWindowLog32
	}
	return maxWindowLog64
}

// validateCParams checks (without clamping) a cParams tuple against §6's
// bounds, returning ErrParameterOutOfBound on violation. The compression
// paths do not call it; their cParams come straight from the level table.
func validateCParams(p cParams, is32Bit bool) error {
	wMax := maxWindowLog(is32Bit)
	switch {
	case p.windowLog < minWindowLog || p.windowLog > wMax:
		return ErrParameterOutOfBound
	case p.hashLog < minHashLog || p.hashLog > p.windowLog:
		return ErrParameterOutOfBound
	case p.chainLog < minChainLog || p.chainLog > p.windowLog+1:
		return ErrParameterOutOfBound
	case p.searchLog < minSearchLog || p.searchLog > maxSearchLog:
		return ErrParameterOutOfBound
	case p.minMatch < minMinMatch || p.minMatch > maxMinMatch:
		return ErrParameterOutOfBound
	case p.targetLength > maxTargetLen:
		return ErrParameterOutOfBound
	case int(p.strategy) < minStrategy || int(p.strategy) > maxStrategy:
		return ErrParameterOutOfBound
	}
	return nil
}

// sizeClass buckets a source size into one of the level table's four rows
// per §3: sizeClass = 3 - (<=16KiB) - (<=128KiB) - (<=256KiB).
func sizeClass(srcSize uint64) int {
	c := 3
	if srcSize <= 16<<10 {
		c--
	}
	if srcSize <= 128<<10 {
		c--
	}
	if srcSize <= 256<<10 {
		c--
	}
	if c < 0 {
		c = 0
	}
	return c
}

// levelRow holds one (sizeClass, level) cell of the 4x23 level table.
type levelRow = cParams

// levelTable is indexed [sizeClass][level], level in [0,22]; level 0 selects
// row 0's default (level 3 equivalent) per §3.
var levelTable [4][23]levelRow

func init() {
	// Row 3: large inputs (> 256 KiB), the reference "general purpose" row.
	base := [23]levelRow{
		{}, // level 0 unused directly; resolved to level 3 by caller
		{windowLog: 19, hashLog: 13, chainLog: 14, searchLog: 1, minMatch: 7, targetLength: 6, strategy: stratFast},
		{windowLog: 20, hashLog: 15, chainLog: 16, searchLog: 1, minMatch: 6, targetLength: 8, strategy: stratFast},
		{windowLog: 21, hashLog: 16, chainLog: 17, searchLog: 1, minMatch: 5, targetLength: 8, strategy: stratDFast},
		{windowLog: 21, hashLog: 18, chainLog: 18, searchLog: 1, minMatch: 5, targetLength: 8, strategy: stratDFast},
		{windowLog: 21, hashLog: 18, chainLog: 18, searchLog: 1, minMatch: 5, targetLength: 8, strategy: stratGreedy},
		{windowLog: 21, hashLog: 18, chainLog: 19, searchLog: 3, minMatch: 5, targetLength: 8, strategy: stratLazy},
		{windowLog: 21, hashLog: 19, chainLog: 19, searchLog: 3, minMatch: 5, targetLength: 8, strategy: stratLazy},
		{windowLog: 21, hashLog: 19, chainLog: 19, searchLog: 3, minMatch: 5, targetLength: 8, strategy: stratLazy2},
		{windowLog: 22, hashLog: 20, chainLog: 20, searchLog: 3, minMatch: 5, targetLength: 8, strategy: stratLazy2},
		{windowLog: 22, hashLog: 21, chainLog: 21, searchLog: 4, minMatch: 5, targetLength: 16, strategy: stratLazy2},
		{windowLog: 22, hashLog: 21, chainLog: 22, searchLog: 4, minMatch: 5, targetLength: 16, strategy: stratLazy2},
		{windowLog: 22, hashLog: 22, chainLog: 23, searchLog: 5, minMatch: 5, targetLength: 32, strategy: stratBTLazy2},
		{windowLog: 22, hashLog: 22, chainLog: 22, searchLog: 4, minMatch: 5, targetLength: 32, strategy: stratBTOpt},
		{windowLog: 23, hashLog: 23, chainLog: 22, searchLog: 5, minMatch: 4, targetLength: 32, strategy: stratBTOpt},
		{windowLog: 23, hashLog: 23, chainLog: 22, searchLog: 6, minMatch: 4, targetLength: 48, strategy: stratBTOpt},
		{windowLog: 24, hashLog: 24, chainLog: 23, searchLog: 6, minMatch: 4, targetLength: 64, strategy: stratBTOpt},
		{windowLog: 25, hashLog: 25, chainLog: 24, searchLog: 7, minMatch: 4, targetLength: 96, strategy: stratBTUltra},
		{windowLog: 26, hashLog: 26, chainLog: 25, searchLog: 8, minMatch: 4, targetLength: 128, strategy: stratBTUltra},
		{windowLog: 26, hashLog: 26, chainLog: 25, searchLog: 9, minMatch: 4, targetLength: 192, strategy: stratBTUltra2},
		{windowLog: 27, hashLog: 27, chainLog: 26, searchLog: 10, minMatch: 4, targetLength: 256, strategy: stratBTUltra2},
		{windowLog: 27, hashLog: 27, chainLog: 26, searchLog: 10, minMatch: 3, targetLength: 512, strategy: stratBTUltra2},
		{windowLog: 27, hashLog: 28, chainLog: 28, searchLog: 10, minMatch: 3, targetLength: 999, strategy: stratBTUltra2},
	}
	levelTable[3] = base

	// Rows 0-2 (<=16KiB, <=128KiB, <=256KiB) scale windowLog/hashLog/chainLog
	// down for the smaller size classes, keeping strategy/searchLog/minMatch.
	shrink := [3]uint{6, 2, 1}
	for row := 0; row < 3; row++ {
		for lvl := 1; lvl < 23; lvl++ {
			p := base[lvl]
			d := shrink[row]
			if p.windowLog > minWindowLog+d {
				p.windowLog -= d
			} else {
				p.windowLog = minWindowLog
			}
			if p.hashLog > minHashLog+d {
				p.hashLog -= d
			} else {
				p.hashLog = minHashLog
			}
			if p.chainLog > minChainLog+d {
				p.chainLog -= d
			} else {
				p.chainLog = minChainLog
			}
			levelTable[row][lvl] = p
		}
	}
}

// paramsForLevel resolves a (srcSize, level) pair to a concrete cParams,
// per §3's level table and negative-level fast-mode acceleration rule.
func paramsForLevel(level int, srcSize uint64) cParams {
	if level > maxLevel {
		level = maxLevel
	}
	if level == 0 {
		level = 3
	}
	row := sizeClass(srcSize)
	if level < 0 {
		p := levelTable[row][1]
		p.targetLength = uint(-level)
		return p
	}
	if level < minLevel {
		level = minLevel
	}
	return levelTable[row][level]
}
