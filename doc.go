// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

/*
Package zstd implements a Zstandard-style streaming compressor and
decompressor: frame/block format, LZ77-style match finders, FSE and Huffman
entropy coding, and a streaming buffer state machine.

The frame layout (magic number, frame header, block headers, checksum
trailer) follows Zstandard, but compressed block bodies use this package's
own literals and sequences section encoding. Frames that contain compressed
blocks are therefore readable only by this package's decoder, not by other
Zstandard implementations.

# Compress

Options may be nil (default level 3):

	out, err := zstd.Compress(data, nil)
	out, err := zstd.Compress(data, &zstd.CompressOptions{Level: 19})

# Decompress

	out, err := zstd.Decompress(compressed, nil)

# Streaming

	w := zstd.NewWriter(dst, nil)
	_, err := w.Write(data)
	err = w.Close()

	r := zstd.NewReader(src, nil)
	out, err := io.ReadAll(r)

# Dictionaries

A digested dictionary can be attached to a context to prime match tables for
small inputs (entropy tables are always built fresh per block):

	cd, err := zstd.NewCDict(dictBytes)
	out, err := zstd.Compress(data, &zstd.CompressOptions{Dict: cd})
*/
package zstd
