package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

// BookUpdatePayloadSize covers instrument, sequence and four level arrays.
const BookUpdatePayloadSize = 16 + 4*schema.TopLevelCount*8

// EncodeBookUpdate serializes a book update into a fixed-size payload.
func EncodeBookUpdate(dst []byte, update schema.BookUpdate) []byte {
	if cap(dst) < BookUpdatePayloadSize {
		dst = make([]byte, BookUpdatePayloadSize)
	} else {
		dst = dst[:BookUpdatePayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(update.Instrument))
	binary.LittleEndian.PutUint16(dst[2:4], 0)
	binary.LittleEndian.PutUint32(dst[4:8], 0)
	binary.LittleEndian.PutUint64(dst[8:16], update.Seq)

	off := 16
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(update.AskPrices[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(update.AskVolumes[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(update.BidPrices[i]))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		binary.LittleEndian.PutUint64(dst[off:off+8], uint64(update.BidVolumes[i]))
		off += 8
	}
	return dst
}

// DecodeBookUpdate parses a fixed-size book update payload.
func DecodeBookUpdate(src []byte) (schema.BookUpdate, bool) {
	if len(src) < BookUpdatePayloadSize {
		return schema.BookUpdate{}, false
	}
	update := schema.BookUpdate{
		Instrument: schema.Instrument(binary.LittleEndian.Uint16(src[0:2])),
		Seq:        binary.LittleEndian.Uint64(src[8:16]),
	}
	off := 16
	for i := 0; i < schema.TopLevelCount; i++ {
		update.AskPrices[i] = schema.Price(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		update.AskVolumes[i] = schema.Volume(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		update.BidPrices[i] = schema.Price(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	for i := 0; i < schema.TopLevelCount; i++ {
		update.BidVolumes[i] = schema.Volume(int64(binary.LittleEndian.Uint64(src[off : off+8])))
		off += 8
	}
	return update, true
}
