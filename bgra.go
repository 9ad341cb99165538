// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

// ToBGRA returns a copy of RGBA8 pixel data with red and blue swapped, for
// uploading into BGRA surfaces. Trailing bytes of a partial pixel are copied
// unchanged.
func ToBGRA(rgba []byte) []byte {
	out := make([]byte, len(rgba))
	copy(out, rgba)
	SwapRB(out)
	return out
}

// SwapRB swaps the first and third byte of every 4-byte pixel in place. It
// converts RGBA to BGRA and back.
func SwapRB(px []byte) {
	for i := 0; i+3 < len(px); i += 4 {
		px[i], px[i+2] = px[i+2], px[i]
	}
}
