// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "github.com/cespare/xxhash/v2"

// DCtx is a reusable decompression context: the output buffer under
// construction plus the repeat-offset and FSE/Huffman table carryover that
// must persist across a frame's blocks.
type DCtx struct {
	rep  *repOffsets
	tbl  blockDecodeTables
	dict *CDict
	caps capabilities
}

// NewDCtx builds a fresh decompression context, optionally bound to a
// dictionary that must match the frame's dictID (§5).
func NewDCtx(dict *CDict) *DCtx {
	return &DCtx{rep: newRepOffsets(), dict: dict, caps: detectCapabilities()}
}

// DecompressOptions configures Decompress and NewReader. opts may be nil,
// equivalent to &DecompressOptions{}.
type DecompressOptions struct {
	// Dict attaches a digested dictionary; required if the frame was
	// compressed with one (the frame's dictID must match).
	Dict *CDict
}

// Decompress is the one-shot inverse of Compress: parses a single frame
// (magic, header, blocks, optional checksum) and returns its decoded
// content.
func Decompress(src []byte, opts *DecompressOptions) ([]byte, error) {
	var dict *CDict
	if opts != nil {
		dict = opts.Dict
	}
	return NewDCtx(dict).DecompressFrame(src)
}

// DecompressFrame runs one frame through this context, consuming exactly
// the bytes that frame occupies and ignoring any trailing bytes (callers
// doing multi-frame concatenation drive this repeatedly, advancing by the
// returned consumed count via DecompressFrameN).
func (d *DCtx) DecompressFrame(src []byte) ([]byte, error) {
	out, _, err := d.DecompressFrameN(src)
	return out, err
}

func (d *DCtx) DecompressFrameN(src []byte) (out []byte, consumed int, err error) {
	fh, off, err := readFrameHeader(src)
	if err != nil {
		return nil, 0, err
	}
	if fh.hasDictID && (d.dict == nil || d.dict.id != fh.dictID) {
		return nil, 0, ErrDictionaryWrong
	}

	*d.rep = *newRepOffsets()
	if d.dict != nil {
		d.rep.rep = d.dict.rep
	}
	d.tbl = blockDecodeTables{}

	var outBuf []byte
	if fh.hasFCS {
		outBuf = make([]byte, 0, fh.frameContentSize)
	}

	var dictContent []byte
	if d.dict != nil {
		dictContent = d.dict.content
	}

	for {
		lastBlock, bt, size, err := readBlockHeader(src[off:])
		if err != nil {
			return nil, 0, err
		}
		off += 3
		bodyLen := size
		if bt == blockRLE {
			bodyLen = 1 // an RLE block's size field is its regenerated length
		}
		if off+bodyLen > len(src) {
			return nil, 0, ErrSrcSizeWrong
		}
		body := src[off : off+bodyLen]
		off += bodyLen

		switch bt {
		case blockRaw:
			outBuf = append(outBuf, body...)
		case blockRLE:
			// One literal byte repeated size times.
			if len(body) < 1 {
				return nil, 0, ErrCorruptionDetected
			}
			n := size
			for i := 0; i < n; i++ {
				outBuf = append(outBuf, body[0])
			}
		case blockCompressed:
			outBuf, err = decodeCompressedBlock(body, outBuf, d, dictContent)
			if err != nil {
				return nil, 0, err
			}
		default:
			return nil, 0, ErrCorruptionDetected
		}

		if lastBlock {
			break
		}
	}

	if fh.checksumFlag {
		if off+4 > len(src) {
			return nil, 0, ErrSrcSizeWrong
		}
		want := getUint32LE(src[off : off+4])
		off += 4
		got := uint32(xxhash.Sum64(outBuf))
		if got != want {
			return nil, 0, ErrChecksumWrong
		}
	}

	return outBuf, off, nil
}

// decodeCompressedBlock decodes one compressed block's literals and
// sequences sections and executes the sequences against outBuf (already
// containing every prior block's bytes, so back-references may reach into
// earlier blocks exactly as the window model allows).
func decodeCompressedBlock(body []byte, outBuf []byte, d *DCtx, dictContent []byte) ([]byte, error) {
	literals, n, err := decodeLiteralsSection(body, d.caps.fastEntropyPath())
	if err != nil {
		return nil, err
	}
	body = body[n:]

	seqs, _, err := decodeSequencesSection(body, &d.tbl, d.rep)
	if err != nil {
		return nil, err
	}

	litPos := 0
	for _, sq := range seqs {
		if litPos+int(sq.litLength) > len(literals) {
			return nil, ErrCorruptionDetected
		}
		outBuf = append(outBuf, literals[litPos:litPos+int(sq.litLength)]...)
		litPos += int(sq.litLength)

		matchLen := int(sq.matchLen) + 3 // matchLen is stored minus 3, the smallest match length
		trueOffset := sq.offsetCode
		srcStart := len(outBuf) - int(trueOffset)
		if srcStart < 0 {
			// Reaches before outBuf's start: resolve against the attached
			// dictionary's tail, per §5's cross-segment back-reference rule.
			dictStart := len(dictContent) + srcStart
			if dictStart < 0 {
				return nil, ErrCorruptionDetected
			}
			for i := 0; i < matchLen; i++ {
				var b byte
				if dictStart+i < len(dictContent) {
					b = dictContent[dictStart+i]
				} else {
					b = outBuf[dictStart+i-len(dictContent)]
				}
				outBuf = append(outBuf, b)
			}
			continue
		}
		for i := 0; i < matchLen; i++ {
			outBuf = append(outBuf, outBuf[srcStart+i])
		}
	}
	if litPos < len(literals) {
		outBuf = append(outBuf, literals[litPos:]...)
	}
	return outBuf, nil
}
