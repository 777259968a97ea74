// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zstd

package zstd

import "github.com/klauspost/cpuid/v2"

// capabilities is an immutable CPU-feature token: the BMI2 probe is read
// once (cpuid.CPU itself is computed once by the library at import time)
// and carried as a value on the context rather than re-read from a global at
// hot-path call sites.
type capabilities struct {
	bmi2 bool
}

// detectCapabilities builds the capability token for this process. It is
// cheap enough to call per-context.
func detectCapabilities() capabilities {
	return capabilities{bmi2: cpuid.CPU.Supports(cpuid.BMI2)}
}

// fastEntropyPath reports whether the entropy layer may lower its X2
// decode-table threshold for this context: real BMI2-accelerated decoders
// make the double-symbol table's larger build cost worth paying sooner.
func (c capabilities) fastEntropyPath() bool { return c.bmi2 }
