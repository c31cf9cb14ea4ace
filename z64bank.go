package z64bank

import "fmt"

// align16 rounds n up to the next multiple of 16. Every record group in a
// packed bank starts on a 16-byte boundary.
func align16(n int) int {
	return (n + 0xF) &^ 0xF
}

// itemName renders the display name of a registry item, e.g. "Envelope [3]".
func itemName(name string, index int) string {
	return fmt.Sprintf("%s [%d]", name, index)
}
