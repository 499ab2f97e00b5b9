package eventlog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	recordHeaderSize = 12 // length(8) + length crc(4)
	recordCRCSize    = 4
	maxRecordSize    = 256 << 20
	crcMaskDelta     = 0xa282ead8
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func maskedCRC(data []byte) uint32 {
	crc := crc32.Checksum(data, crc32cTable)
	return ((crc >> 15) | (crc << 17)) + crcMaskDelta
}

// recordReader walks TFRecord framing. A record cut short at the end of the
// stream is treated as end of file, matching how writers leave files that
// are still being appended to.
type recordReader struct {
	r      io.Reader
	offset int64
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: r}
}

// next returns the payload of the next record or io.EOF.
func (rr *recordReader) next() ([]byte, error) {
	var head [recordHeaderSize]byte
	if _, err := io.ReadFull(rr.r, head[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record header at offset %d: %w", rr.offset, err)
	}

	length := binary.LittleEndian.Uint64(head[0:8])
	if got, want := maskedCRC(head[0:8]), binary.LittleEndian.Uint32(head[8:12]); got != want {
		return nil, fmt.Errorf("%w: length checksum mismatch at offset %d", ErrCorrupt, rr.offset)
	}
	if length > maxRecordSize {
		return nil, fmt.Errorf("%w: record length %d at offset %d exceeds limit", ErrCorrupt, length, rr.offset)
	}

	payload := make([]byte, length+recordCRCSize)
	if _, err := io.ReadFull(rr.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record payload at offset %d: %w", rr.offset, err)
	}
	data := payload[:length]
	if got, want := maskedCRC(data), binary.LittleEndian.Uint32(payload[length:]); got != want {
		return nil, fmt.Errorf("%w: payload checksum mismatch at offset %d", ErrCorrupt, rr.offset)
	}

	rr.offset += recordHeaderSize + int64(length) + recordCRCSize
	return data, nil
}

func appendRecord(dst, data []byte) []byte {
	var head [recordHeaderSize]byte
	binary.LittleEndian.PutUint64(head[0:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(head[8:12], maskedCRC(head[0:8]))
	dst = append(dst, head[:]...)
	dst = append(dst, data...)
	return binary.LittleEndian.AppendUint32(dst, maskedCRC(data))
}
