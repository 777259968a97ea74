// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// CDict is a digested dictionary (§5): the dictionary content, its ID,
// initial repeat offsets and the cParams derived from it, reusable across
// many compressions. It holds no match tables, so nothing is indexed once
// and shared between compressions. Dictionary *training*
// ("COVER" et al.) is out of scope here; CDict only consumes
// already-produced dictionary bytes (raw content, or the standard
// magic+entropy-tables+content format emitted by a trainer).
type CDict struct {
	id       uint32
	content  []byte
	rep      [3]uint32
	cParams  cParams
	forceLoad bool
}

const dictMagic = 0xEC30A437

// dictBuildLevel is the reference compression level used to derive a fresh
// CDict's own cParams (§4.9's "CDict's cParams" an ordinary load inherits).
// forceLoad mode ignores this and recomputes against the caller's actual
// level instead (see NewCCtx).
const dictBuildLevel = 3

// NewCDict digests raw dictionary bytes: if they carry the standard
// magic-number header the content after it is used verbatim. The entropy
// tables in that header are not separately replayed; this package always
// rebuilds fresh FSE/Huffman tables per block. A byte slice without the
// magic number is treated as raw content instead, and its ID is derived
// from the content with dictID.
func NewCDict(dictBytes []byte) (*CDict, error) {
	if len(dictBytes) == 0 {
		return nil, ErrDictionaryCorrupted
	}
	d := &CDict{rep: [3]uint32{1, 4, 8}}
	content := dictBytes
	if len(dictBytes) >= 8 && getUint32LE(dictBytes[:4]) == dictMagic {
		d.id = getUint32LE(dictBytes[4:8])
		content = dictBytes[8:]
		if len(content) == 0 {
			return nil, ErrDictionaryCorrupted
		}
	} else {
		d.id = dictID(content)
	}
	d.content = content
	d.cParams = paramsForLevel(dictBuildLevel, uint64(len(content)))
	return d, nil
}

// NewCDictForceLoad is NewCDict plus forceLoad set: the context built from
// this CDict re-runs the level table using the dictionary's size as the
// size hint instead of inheriting cParams below, per §4.9.
func NewCDictForceLoad(dictBytes []byte) (*CDict, error) {
	d, err := NewCDict(dictBytes)
	if err != nil {
		return nil, err
	}
	d.forceLoad = true
	return d, nil
}

// attachCutoffBytes is the per-strategy pledgedSrcSize ceiling below which a
// CDict is attached rather than copied into the working buffer (§4.9's
// cutoff table, named in KiB there).
func attachCutoffBytes(strat strategy) uint64 {
	switch strat {
	case stratFast:
		return 8 << 10
	case stratDFast:
		return 16 << 10
	case stratBTUltra, stratBTUltra2:
		return 8 << 10
	default: // greedy, lazy, lazy2, btlazy2, btopt
		return 32 << 10
	}
}

// shouldAttach implements the attach-vs-copy policy: attach (search the
// dictionary as a second, read-only table) whenever the size of the data
// being compressed is small enough that the strategy-dependent cutoff isn't
// worth paying the copy cost for; copy otherwise so the strategy searches a
// single contiguous segment.
func shouldAttach(pledgedSrcSize uint64, strat strategy) bool {
	return pledgedSrcSize <= attachCutoffBytes(strat)
}
