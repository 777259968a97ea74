package zstd

import (
	"bytes"
	"testing"
)

func TestCDict_RoundTrip(t *testing.T) {
	dictContent := bytes.Repeat([]byte("shared dictionary vocabulary chunk "), 200)

	cd, err := NewCDict(dictContent)
	if err != nil {
		t.Fatalf("NewCDict failed: %v", err)
	}

	data := []byte("shared dictionary vocabulary chunk appears in the payload too")
	cmp, err := Compress(data, &CompressOptions{Level: 5, Dict: cd})
	if err != nil {
		t.Fatalf("Compress with dict failed: %v", err)
	}

	out, err := Decompress(cmp, &DecompressOptions{Dict: cd})
	if err != nil {
		t.Fatalf("Decompress with dict failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("dictionary round-trip mismatch")
	}
}

func TestCDict_ForceLoadRoundTrip(t *testing.T) {
	dictContent := bytes.Repeat([]byte("force-load dictionary bytes "), 100)

	cd, err := NewCDictForceLoad(dictContent)
	if err != nil {
		t.Fatalf("NewCDictForceLoad failed: %v", err)
	}
	if !cd.forceLoad {
		t.Fatal("expected forceLoad to be set")
	}

	data := bytes.Repeat([]byte("force-load dictionary bytes payload"), 50)
	cmp, err := Compress(data, &CompressOptions{Level: 12, Dict: cd})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	out, err := Decompress(cmp, &DecompressOptions{Dict: cd})
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("force-load dictionary round-trip mismatch")
	}
}

func TestCDict_WrongDictionaryRejected(t *testing.T) {
	cd1, err := NewCDict([]byte("dictionary one content goes here"))
	if err != nil {
		t.Fatalf("NewCDict failed: %v", err)
	}
	cd2, err := NewCDict([]byte("an entirely different dictionary"))
	if err != nil {
		t.Fatalf("NewCDict failed: %v", err)
	}

	data := []byte("some payload compressed against dictionary one")
	cmp, err := Compress(data, &CompressOptions{Level: 3, Dict: cd1})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	// The frame records cd1's dictID, so decoding it with cd2 must fail.
	if _, err := Decompress(cmp, &DecompressOptions{Dict: cd2}); err != ErrDictionaryWrong {
		t.Fatalf("expected ErrDictionaryWrong decoding with the wrong dictionary, got %v", err)
	}

	// NewCDict's own validation rejects empty dictionary bytes.
	if _, err := NewCDict(nil); err == nil {
		t.Fatal("expected error for empty dictionary bytes")
	}
}

func TestShouldAttach_PerStrategyCutoff(t *testing.T) {
	cases := []struct {
		strat    strategy
		size     uint64
		expected bool
	}{
		{stratFast, 8 << 10, true},
		{stratFast, 8<<10 + 1, false},
		{stratDFast, 16 << 10, true},
		{stratDFast, 16<<10 + 1, false},
		{stratGreedy, 32 << 10, true},
		{stratGreedy, 32<<10 + 1, false},
		{stratBTUltra, 8 << 10, true},
		{stratBTUltra, 8<<10 + 1, false},
	}
	for _, c := range cases {
		if got := shouldAttach(c.size, c.strat); got != c.expected {
			t.Errorf("shouldAttach(%d, %v) = %v, want %v", c.size, c.strat, got, c.expected)
		}
	}
}

func TestSeqStore_LongLengthOverflowSideChannel(t *testing.T) {
	ss := newSeqStore()
	ss.appendSequence(10, 70000, 4) // matchLen exceeds 0xFFFF
	if ss.longLengthID != 2 {
		t.Fatalf("expected longLengthID=2 (matchLength), got %d", ss.longLengthID)
	}
	if ss.longLengthPos != 0 {
		t.Fatalf("expected longLengthPos=0, got %d", ss.longLengthPos)
	}

	dst := encodeBlock(ss, true, &blockEncodeTables{})
	_, bt, size, err := readBlockHeader(dst)
	if err != nil {
		t.Fatalf("readBlockHeader failed: %v", err)
	}
	if bt != blockCompressed {
		t.Fatalf("expected a compressed block, got type %d", bt)
	}
	body := dst[3 : 3+size]
	_, litConsumed, err := decodeLiteralsSection(body, false)
	if err != nil {
		t.Fatalf("decodeLiteralsSection failed: %v", err)
	}

	ds, _, err := decodeSequencesSection(body[litConsumed:], &blockDecodeTables{}, newRepOffsets())
	if err != nil {
		t.Fatalf("decodeSequencesSection failed: %v", err)
	}
	if len(ds) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(ds))
	}
	if ds[0].matchLen != 70000 {
		t.Fatalf("long matchLength not preserved: got %d want 70000", ds[0].matchLen)
	}
}

// TestCompress_LongRunProducesRLEBlock asserts the single-repeated-byte
// scenario compresses with its first block emitted as an RLE block, not a
// raw or Huffman-compressed one.
func TestCompress_LongRunProducesRLEBlock(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 256<<10)

	cmp, err := Compress(data, &CompressOptions{Level: 3})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	_, off, err := readFrameHeader(cmp)
	if err != nil {
		t.Fatalf("readFrameHeader failed: %v", err)
	}
	_, bt, size, err := readBlockHeader(cmp[off:])
	if err != nil {
		t.Fatalf("readBlockHeader failed: %v", err)
	}
	if bt != blockRLE {
		t.Fatalf("expected first block type RLE, got %d", bt)
	}
	if size != maxBlockSize {
		t.Fatalf("expected RLE block size to carry one full block's run length %d, got %d", maxBlockSize, size)
	}

	out, err := Decompress(cmp, nil)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("RLE round-trip mismatch")
	}
}

// TestRepOffsets_EncodeOffsetRule4 exercises the litLength==0,
// offset==rep[0]-1 case, which must be encoded as offset code 3 and decode
// back to the same true offset.
func TestRepOffsets_EncodeOffsetRule4(t *testing.T) {
	r := newRepOffsets()
	r.rep = [3]uint32{10, 4, 8}

	code := r.encodeOffset(9, 0)
	if code != 3 {
		t.Fatalf("expected offset code 3 for rep[0]-1, got %d", code)
	}
	if r.rep[0] != 9 {
		t.Fatalf("expected rep[0] rotated to 9, got %d", r.rep[0])
	}

	d := newRepOffsets()
	d.rep = [3]uint32{10, 4, 8}
	got := d.decodeOffset(code, 0)
	if got != 9 {
		t.Fatalf("decodeOffset(3, litLength=0) = %d, want 9", got)
	}
}
