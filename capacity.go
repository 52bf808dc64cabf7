// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package secmem

import (
	"strconv"
)

// CapacityBytes returns the storage size of words codewords of width bits,
// rounded up to whole bytes.
func CapacityBytes(words, width int) int64 {
	return (int64(words)*int64(width) + 7) / 8
}

var byteUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// HumanBytes formats a byte count using 1024 based units. Byte counts below
// 1 KB are printed as integers, larger ones with two decimals:
//
//	HumanBytes(14)   // "14 Bytes"
//	HumanBytes(1536) // "1.50 KB"
func HumanBytes(n int64) string {
	size := float64(n)
	u := 0
	for size >= 1024 && u < len(byteUnits)-1 {
		size /= 1024
		u++
	}
	if u == 0 {
		return strconv.FormatInt(n, 10) + " " + byteUnits[0]
	}
	return strconv.FormatFloat(size, 'f', 2, 64) + " " + byteUnits[u]
}
