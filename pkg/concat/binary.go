package concat

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// sniffSize is how many leading bytes are inspected to classify a file.
const sniffSize = 512

// isBinaryFile checks if a file is likely to be binary by reading its
// first few bytes and checking for null bytes or a high ratio of
// non-printable characters.
func isBinaryFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, sniffSize)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	buffer = buffer[:n]

	// Null bytes are a strong binary signal.
	if bytes.Contains(buffer, []byte{0}) {
		return true, nil
	}

	// Empty files are considered text.
	if len(buffer) == 0 {
		return false, nil
	}

	nonPrintable := 0
	for _, b := range buffer {
		if !isPrintable(b) {
			nonPrintable++
		}
	}

	// More than 30% non-printable characters reads as binary.
	return float64(nonPrintable)/float64(len(buffer)) > 0.3, nil
}

// isPrintable checks if a byte represents a printable ASCII character.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t'
}
