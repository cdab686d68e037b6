package recorder

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"main/internal/schema"
)

var ErrChecksumMismatch = errors.New("wal checksum mismatch")

// ReaderOptions controls record decoding.
type ReaderOptions struct {
	DisableChecksum bool
	MaxPayloadSize  int
}

// Reader decodes WAL records sequentially from a stream.
type Reader struct {
	src       *bufio.Reader
	opts      ReaderOptions
	headerBuf []byte
	payload   []byte
}

// NewReader wraps an io.Reader with WAL record decoding.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		src:       bufio.NewReader(r),
		opts:      opts,
		headerBuf: make([]byte, recordHeaderSize),
	}
}

// Next returns the next record. The payload slice is reused and only
// valid until the following call. A clean end of stream is io.EOF.
func (r *Reader) Next() (schema.EventHeader, []byte, error) {
	header, payloadLen, err := r.readHeader()
	if err != nil {
		return header, nil, err
	}
	if err := r.readPayload(payloadLen); err != nil {
		return header, nil, err
	}

	var checksumBuf [recordChecksumSize]byte
	if _, err := io.ReadFull(r.src, checksumBuf[:]); err != nil {
		return header, nil, err
	}
	if !r.opts.DisableChecksum {
		expected := binary.LittleEndian.Uint32(checksumBuf[:])
		if checksum(r.headerBuf, r.payload) != expected {
			return header, nil, ErrChecksumMismatch
		}
	}

	return header, r.payload, nil
}

func (r *Reader) readHeader() (schema.EventHeader, uint32, error) {
	n, err := io.ReadFull(r.src, r.headerBuf)
	if err != nil {
		if err == io.EOF && n == 0 {
			return schema.EventHeader{}, 0, io.EOF
		}
		return schema.EventHeader{}, 0, err
	}

	header, payloadLen, err := decodeRecordHeader(r.headerBuf)
	if err != nil {
		return header, 0, err
	}
	if r.opts.MaxPayloadSize > 0 && payloadLen > uint32(r.opts.MaxPayloadSize) {
		return header, 0, ErrPayloadTooLarge
	}
	if uint64(payloadLen) > maxPayloadLen {
		return header, 0, ErrPayloadTooLarge
	}
	return header, payloadLen, nil
}

func (r *Reader) readPayload(payloadLen uint32) error {
	if payloadLen == 0 {
		r.payload = r.payload[:0]
		return nil
	}
	if cap(r.payload) < int(payloadLen) {
		r.payload = make([]byte, payloadLen)
	}
	r.payload = r.payload[:payloadLen]
	_, err := io.ReadFull(r.src, r.payload)
	return err
}
