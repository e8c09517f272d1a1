// Package image maps between word sequences and the flat binary format the
// toolchain exchanges: little-endian bytes, two per word.
package image

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/oisee/mach16/pkg/bus"
)

// Encode flattens words into little-endian bytes, low byte first.
func Encode(words []uint16) []byte {
	data := make([]byte, 0, 2*len(words))
	for _, w := range words {
		data = binary.LittleEndian.AppendUint16(data, w)
	}
	return data
}

// Decode rebuilds the word sequence from a byte stream. An odd trailing
// byte forms a final word with a zero high byte.
func Decode(data []byte) []uint16 {
	words := make([]uint16, 0, (len(data)+1)/2)
	for i := 0; i+1 < len(data); i += 2 {
		words = append(words, binary.LittleEndian.Uint16(data[i:]))
	}
	if len(data)%2 == 1 {
		words = append(words, uint16(data[len(data)-1]))
	}
	return words
}

// Write emits the encoded image to w.
func Write(w io.Writer, words []uint16) error {
	_, err := w.Write(Encode(words))
	return err
}

// Read consumes r to EOF and decodes the image.
func Read(r io.Reader) ([]uint16, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data), nil
}

// DumpMemory writes one `AAAA VVVV` line per word address, 0 through
// 0xFFFF, reading the underlying storage so dumping has no device side
// effects.
func DumpMemory(w io.Writer, b *bus.Bus) error {
	bw := bufio.NewWriter(w)
	for a := 0; a < bus.MemWords; a++ {
		fmt.Fprintf(bw, "%04X %04X\n", a, b.Raw(uint16(a)))
	}
	return bw.Flush()
}
