// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

// Frame format (§4.1): magic number, descriptor byte, optional window-log
// byte, optional dictionary ID, optional frame content size, one or more
// blocks, optional xxhash64 checksum trailer.

const frameMagic = 0xFD2FB528

// frameDescriptor packs the fields named in §4.1: dictID size class (0/1/2/4
// bytes), a content-checksum flag, a single-segment flag (frame content size
// known and window==content size), and the frame content size field's size
// class (0/1/2/8 bytes).
type frameDescriptor struct {
	dictIDFlag     uint8 // 0,1,2,3 meaning 0/1/2/4 bytes
	checksumFlag   bool
	singleSegment  bool
	fcsFlag        uint8 // 0,1,2,3 meaning 0/2/4/8 bytes (1 is implicit when singleSegment and fcs<256)
}

func (d frameDescriptor) encode() byte {
	var b byte
	b |= d.dictIDFlag
	if d.checksumFlag {
		b |= 1 << 2
	}
	if d.singleSegment {
		b |= 1 << 5
	}
	b |= d.fcsFlag << 6
	return b
}

func decodeFrameDescriptor(b byte) frameDescriptor {
	return frameDescriptor{
		dictIDFlag:    b & 0x3,
		checksumFlag:  b&(1<<2) != 0,
		singleSegment: b&(1<<5) != 0,
		fcsFlag:       (b >> 6) & 0x3,
	}
}

// fcsFieldSize returns the wire byte count for a given fcsFlag, accounting
// for the singleSegment special case where fcsFlag==0 still carries 1 byte.
func fcsFieldSize(fcsFlag uint8, singleSegment bool) int {
	switch fcsFlag {
	case 0:
		if singleSegment {
			return 1
		}
		return 0
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}

func dictIDFieldSize(flag uint8) int {
	switch flag {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 4
	}
}

// frameHeader is the fully decoded pre-block-stream portion of a frame.
type frameHeader struct {
	windowSize       uint64
	dictID           uint32
	hasDictID        bool
	frameContentSize uint64
	hasFCS           bool
	checksumFlag     bool
	singleSegment    bool
}

// writeFrameHeader appends the magic number and header fields for a
// compression run with the given window size, optional dictID, and, when
// haveContentSize is set, the frame content size. The one-shot and
// concurrent paths always know it; the streaming path does not and omits it.
func writeFrameHeader(dst []byte, windowLog uint, dictID uint32, contentSize uint64, haveContentSize bool, checksum bool) []byte {
	dst = putUint32LE(dst, frameMagic)

	singleSegment := haveContentSize && contentSize <= (uint64(1)<<windowLog)
	var dictFlag uint8
	switch {
	case dictID == 0:
		dictFlag = 0
	case dictID < 256:
		dictFlag = 1
	case dictID < 1<<16:
		dictFlag = 2
	default:
		dictFlag = 3
	}
	var fcsFlag uint8
	if haveContentSize {
		switch {
		case singleSegment && contentSize < 256:
			fcsFlag = 0
		case contentSize < 65536+256:
			fcsFlag = 1
		case contentSize <= 0xFFFFFFFF:
			fcsFlag = 2
		default:
			fcsFlag = 3
		}
	}

	desc := frameDescriptor{dictIDFlag: dictFlag, checksumFlag: checksum, singleSegment: singleSegment, fcsFlag: fcsFlag}
	dst = append(dst, desc.encode())

	if !singleSegment {
		dst = append(dst, encodeWindowLogByte(windowLog))
	}

	switch dictFlag {
	case 1:
		dst = append(dst, byte(dictID))
	case 2:
		dst = append(dst, byte(dictID), byte(dictID>>8))
	case 3:
		dst = putUint32LE(dst, dictID)
	}

	if haveContentSize {
		switch fcsFlag {
		case 0:
			dst = append(dst, byte(contentSize))
		case 1:
			v := uint16(contentSize - 256)
			dst = append(dst, byte(v), byte(v>>8))
		case 2:
			dst = putUint32LE(dst, uint32(contentSize))
		case 3:
			dst = putUint64LE(dst, contentSize)
		}
	}
	return dst
}

// encodeWindowLogByte packs windowLog into the single-byte field of §4.1:
// exponent in the top 5 bits and a 3-bit mantissa, which is always written as
// 0 here, so the encoded window is exactly 2^windowLog.
func encodeWindowLogByte(windowLog uint) byte {
	exponent := windowLog - 10
	return byte(exponent << 3)
}

func decodeWindowLogByte(b byte) uint64 {
	exponent := uint(b>>3) + 10
	mantissa := uint64(b & 0x7)
	base := uint64(1) << exponent
	return base + (base/8)*mantissa
}

// readFrameHeader parses everything between the magic number and the first
// block header.
func readFrameHeader(src []byte) (fh frameHeader, consumed int, err error) {
	if len(src) < 5 {
		return fh, 0, ErrSrcSizeWrong
	}
	if getUint32LE(src[:4]) != frameMagic {
		return fh, 0, ErrPrefixUnknown
	}
	off := 4
	desc := decodeFrameDescriptor(src[off])
	off++
	fh.checksumFlag = desc.checksumFlag
	fh.singleSegment = desc.singleSegment

	if !desc.singleSegment {
		if off >= len(src) {
			return fh, 0, ErrSrcSizeWrong
		}
		fh.windowSize = decodeWindowLogByte(src[off])
		off++
	}

	dlen := dictIDFieldSize(desc.dictIDFlag)
	if off+dlen > len(src) {
		return fh, 0, ErrSrcSizeWrong
	}
	switch dlen {
	case 1:
		fh.dictID, fh.hasDictID = uint32(src[off]), true
	case 2:
		fh.dictID, fh.hasDictID = uint32(src[off])|uint32(src[off+1])<<8, true
	case 4:
		fh.dictID, fh.hasDictID = getUint32LE(src[off:off+4]), true
	}
	off += dlen

	flen := fcsFieldSize(desc.fcsFlag, desc.singleSegment)
	if off+flen > len(src) {
		return fh, 0, ErrSrcSizeWrong
	}
	if flen > 0 {
		fh.hasFCS = true
		switch flen {
		case 1:
			fh.frameContentSize = uint64(src[off])
		case 2:
			fh.frameContentSize = uint64(src[off])|uint64(src[off+1])<<8
			fh.frameContentSize += 256
		case 4:
			fh.frameContentSize = uint64(getUint32LE(src[off : off+4]))
		case 8:
			fh.frameContentSize = getUint64LE(src[off : off+8])
		}
	}
	off += flen

	if desc.singleSegment {
		fh.windowSize = fh.frameContentSize
	}
	return fh, off, nil
}
