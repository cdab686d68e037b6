package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const HedgeFilledPayloadSize = 24

// EncodeHedgeFilled serializes a hedge outcome into a fixed-size payload.
func EncodeHedgeFilled(dst []byte, fill schema.HedgeFilled) []byte {
	if cap(dst) < HedgeFilledPayloadSize {
		dst = make([]byte, HedgeFilledPayloadSize)
	} else {
		dst = dst[:HedgeFilledPayloadSize]
	}
	binary.LittleEndian.PutUint64(dst[0:8], fill.OrderID)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(fill.Price))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(fill.Volume))
	return dst
}

// DecodeHedgeFilled parses a fixed-size hedge outcome payload.
func DecodeHedgeFilled(src []byte) (schema.HedgeFilled, bool) {
	if len(src) < HedgeFilledPayloadSize {
		return schema.HedgeFilled{}, false
	}
	return schema.HedgeFilled{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
		Price:   schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Volume:  schema.Volume(int64(binary.LittleEndian.Uint64(src[16:24]))),
	}, true
}
