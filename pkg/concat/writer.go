package concat

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// separatorWidth is the width of the "=" rule lines framing each header.
const separatorWidth = 60

var separatorLine = strings.Repeat("=", separatorWidth)

// blockWriter owns the output sink for the lifetime of one run and emits
// one header block per file.
type blockWriter struct {
	file   *os.File
	buf    *bufio.Writer
	logger *zap.Logger
}

func newBlockWriter(file *os.File, logger *zap.Logger) *blockWriter {
	return &blockWriter{
		file:   file,
		buf:    bufio.NewWriter(file),
		logger: logger,
	}
}

// writeBlock emits the header for relPath followed by the file's content
// and two trailing newlines. Invalid UTF-8 sequences in the content are
// dropped rather than aborting the read. When the file cannot be read,
// an inline error marker takes the content's place so the output stays
// auditable, and the first return value is false.
//
// The error return is a write failure on the output sink, which is fatal
// to the whole run.
func (bw *blockWriter) writeBlock(relPath, filePath string) (bool, error) {
	if _, err := fmt.Fprintf(bw.buf, "%s\nFile: %s\n%s\n", separatorLine, relPath, separatorLine); err != nil {
		return false, err
	}

	readOK := true
	content, readErr := os.ReadFile(filePath)
	if readErr != nil {
		readOK = false
		bw.logger.Warn("Could not read file",
			zap.String("filePath", filePath),
			zap.Error(readErr))
		if _, err := fmt.Fprintf(bw.buf, "[ERROR: Could not read file - %v]\n", readErr); err != nil {
			return false, err
		}
	} else {
		if _, err := bw.buf.WriteString(strings.ToValidUTF8(string(content), "")); err != nil {
			return false, err
		}
	}

	if _, err := bw.buf.WriteString("\n\n"); err != nil {
		return readOK, err
	}
	return readOK, nil
}

// Close flushes buffered output and releases the sink.
func (bw *blockWriter) Close() error {
	flushErr := bw.buf.Flush()
	closeErr := bw.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
