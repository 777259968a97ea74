package zstd

import (
	"bytes"
	"fmt"
	"io"
	"testing"
)

func testInputSet() []struct {
	name string
	data []byte
} {
	return []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "empty", data: []byte{}},
		{name: "single-byte", data: []byte{0xAB}},
		{name: "short-text", data: []byte("hello world, zstd test")},
		{name: "repeated-pattern", data: bytes.Repeat([]byte("abc123"), 2000)},
		{name: "long-run", data: bytes.Repeat([]byte{0xFF}, 12000)},
		{name: "byte-cycle", data: bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 1200)},
	}
}

func TestCompressDecompress_RoundTripAcrossLevels(t *testing.T) {
	levels := []int{-3, 0, 1, 3, 9, 19}

	for _, in := range testInputSet() {
		for _, level := range levels {
			name := fmt.Sprintf("%s/level-%d", in.name, level)
			t.Run(name, func(t *testing.T) {
				cmp, err := Compress(in.data, &CompressOptions{Level: level})
				if err != nil {
					t.Fatalf("Compress failed: %v", err)
				}
				if len(cmp) < 4 || getUint32LE(cmp[:4]) != frameMagic {
					t.Fatalf("missing frame magic: % x", cmp[:min(8, len(cmp))])
				}

				out, err := Decompress(cmp, nil)
				if err != nil {
					t.Fatalf("Decompress failed: %v", err)
				}
				if !bytes.Equal(out, in.data) {
					t.Fatalf("round-trip mismatch: got=%d want=%d", len(out), len(in.data))
				}
			})
		}
	}
}

func TestCompress_ChecksumRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("checksum me please"), 700)

	cmp, err := Compress(data, &CompressOptions{Level: 5, Checksum: true})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	out, err := Decompress(cmp, nil)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("round-trip mismatch with checksum enabled")
	}

	corrupt := append([]byte(nil), cmp...)
	corrupt[len(corrupt)-1] ^= 0xFF
	if _, err := Decompress(corrupt, nil); err == nil {
		t.Fatal("expected checksum mismatch error on corrupted trailer")
	}
}

func TestWriter_MatchesOneShot(t *testing.T) {
	for _, in := range testInputSet() {
		t.Run(in.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, &CompressOptions{Level: 3})
			if len(in.data) > 0 {
				mid := len(in.data) / 2
				if _, err := w.Write(in.data[:mid]); err != nil {
					t.Fatalf("Write first half failed: %v", err)
				}
				if _, err := w.Write(in.data[mid:]); err != nil {
					t.Fatalf("Write second half failed: %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			out, err := Decompress(buf.Bytes(), nil)
			if err != nil {
				t.Fatalf("Decompress of streamed output failed: %v", err)
			}
			if !bytes.Equal(out, in.data) {
				t.Fatalf("streamed round-trip mismatch: got=%d want=%d", len(out), len(in.data))
			}
		})
	}
}

func TestReader_ReadAll(t *testing.T) {
	data := bytes.Repeat([]byte("reader round trip "), 3000)
	cmp, err := Compress(data, &CompressOptions{Level: 7})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	r := NewReader(bytes.NewReader(cmp), nil)
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("Reader round-trip mismatch")
	}
}

func TestWriter_FlushProducesDecodableBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, &CompressOptions{Level: 1})
	if _, err := w.Write([]byte("first chunk of data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := w.Write([]byte("second chunk of data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out, err := Decompress(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(out) != "first chunk of datasecond chunk of data" {
		t.Fatalf("unexpected flushed output: %q", out)
	}
}

func TestCompress_ConcurrentMatchesSingleThreaded(t *testing.T) {
	data := bytes.Repeat([]byte("concurrent job boundary stress test payload "), 15000)

	single, err := Compress(data, &CompressOptions{Level: 3})
	if err != nil {
		t.Fatalf("single-threaded Compress failed: %v", err)
	}
	out1, err := Decompress(single, nil)
	if err != nil {
		t.Fatalf("Decompress(single) failed: %v", err)
	}
	if !bytes.Equal(out1, data) {
		t.Fatal("single-threaded round-trip mismatch")
	}

	multi, err := Compress(data, &CompressOptions{Level: 3, Concurrency: 4})
	if err != nil {
		t.Fatalf("concurrent Compress failed: %v", err)
	}
	out2, err := Decompress(multi, nil)
	if err != nil {
		t.Fatalf("Decompress(concurrent) failed: %v", err)
	}
	if !bytes.Equal(out2, data) {
		t.Fatal("concurrent round-trip mismatch")
	}
}

func TestCompress_LargeInputMultiBlock(t *testing.T) {
	data := bytes.Repeat([]byte("multi-block payload stress test "), 20000)
	cmp, err := Compress(data, &CompressOptions{Level: 3})
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	out, err := Decompress(cmp, nil)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("multi-block round-trip mismatch")
	}
}

func FuzzCompressDecompressRoundTrip(f *testing.F) {
	f.Add([]byte(""), uint8(0))
	f.Add([]byte("hello world"), uint8(1))
	f.Add(bytes.Repeat([]byte{0x00}, 1024), uint8(19))
	f.Add(bytes.Repeat([]byte("abc"), 500), uint8(9))

	f.Fuzz(func(t *testing.T, data []byte, level uint8) {
		if len(data) > 1<<16 {
			data = data[:1<<16]
		}

		cmp, err := Compress(data, &CompressOptions{Level: int(level % 20)})
		if err != nil {
			t.Fatalf("Compress failed: %v", err)
		}

		out, err := Decompress(cmp, nil)
		if err != nil {
			t.Fatalf("Decompress failed: %v", err)
		}

		if !bytes.Equal(out, data) {
			t.Fatalf("round-trip mismatch: got=%d want=%d", len(out), len(data))
		}
	})
}
