// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "github.com/cespare/xxhash/v2"

// contentChecksum computes the frame checksum trailer: the low 32 bits of
// xxh64(content), little-endian on the wire (§4.8, testable property 4).
func contentChecksum(content []byte) uint32 {
	return uint32(xxhash.Sum64(content))
}

// runningChecksum accumulates a checksum across streamed chunks without
// buffering the whole content, used by the streaming FSM when checksumFlag
// is set.
type runningChecksum struct {
	h *xxhash.Digest
}

func newRunningChecksum() *runningChecksum {
	return &runningChecksum{h: xxhash.New()}
}

func (r *runningChecksum) write(p []byte) { _, _ = r.h.Write(p) }

func (r *runningChecksum) sum32() uint32 { return uint32(r.h.Sum64()) }

// dictID derives the dictionary identifier used in CDict identity and the
// frame's optional DictID field: the low 32 bits of xxh64 over the raw
// dictionary content, consistent with contentChecksum's convention.
func dictID(raw []byte) uint32 {
	return uint32(xxhash.Sum64(raw))
}
