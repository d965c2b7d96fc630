package internal

import (
	"fmt"
)

// Partition splits a 16-bit address into its high (page) and low (offset) bytes.
func Partition(value uint16) (high, low byte) {
	high = byte(value >> 8)
	low = byte(value)
	return
}

// Unpartition joins a high and low byte into a 16-bit address.
func Unpartition(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// HexByte formats a byte as 0xNN.
func HexByte(value byte) string {
	return fmt.Sprintf("0x%02x", value)
}

// HexWord formats an address as 0xNNNN.
func HexWord(value uint16) string {
	return fmt.Sprintf("0x%04x", value)
}
