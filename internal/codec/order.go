package codec

import (
	"encoding/binary"

	"main/internal/schema"
)

const (
	OrderFilledPayloadSize = 24
	OrderStatusPayloadSize = 32

	venueErrorFixedSize = 10
)

// EncodeOrderFilled serializes a fill into a fixed-size payload.
func EncodeOrderFilled(dst []byte, fill schema.OrderFilled) []byte {
	if cap(dst) < OrderFilledPayloadSize {
		dst = make([]byte, OrderFilledPayloadSize)
	} else {
		dst = dst[:OrderFilledPayloadSize]
	}
	binary.LittleEndian.PutUint64(dst[0:8], fill.OrderID)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(fill.Price))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(fill.Volume))
	return dst
}

// DecodeOrderFilled parses a fixed-size fill payload.
func DecodeOrderFilled(src []byte) (schema.OrderFilled, bool) {
	if len(src) < OrderFilledPayloadSize {
		return schema.OrderFilled{}, false
	}
	return schema.OrderFilled{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
		Price:   schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Volume:  schema.Volume(int64(binary.LittleEndian.Uint64(src[16:24]))),
	}, true
}

// EncodeOrderStatus serializes a status update into a fixed-size payload.
func EncodeOrderStatus(dst []byte, status schema.OrderStatus) []byte {
	if cap(dst) < OrderStatusPayloadSize {
		dst = make([]byte, OrderStatusPayloadSize)
	} else {
		dst = dst[:OrderStatusPayloadSize]
	}
	binary.LittleEndian.PutUint64(dst[0:8], status.OrderID)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(status.FillVolume))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(status.RemainingVolume))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(status.Fees))
	return dst
}

// DecodeOrderStatus parses a fixed-size status payload.
func DecodeOrderStatus(src []byte) (schema.OrderStatus, bool) {
	if len(src) < OrderStatusPayloadSize {
		return schema.OrderStatus{}, false
	}
	return schema.OrderStatus{
		OrderID:         binary.LittleEndian.Uint64(src[0:8]),
		FillVolume:      schema.Volume(int64(binary.LittleEndian.Uint64(src[8:16]))),
		RemainingVolume: schema.Volume(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Fees:            schema.Fee(int64(binary.LittleEndian.Uint64(src[24:32]))),
	}, true
}

// EncodeVenueError serializes a venue error into a variable-size payload.
func EncodeVenueError(dst []byte, venueErr schema.VenueError) []byte {
	msg := venueErr.Message
	if len(msg) > int(^uint16(0)) {
		msg = msg[:int(^uint16(0))]
	}
	size := venueErrorFixedSize + len(msg)
	if cap(dst) < size {
		dst = make([]byte, size)
	} else {
		dst = dst[:size]
	}
	binary.LittleEndian.PutUint64(dst[0:8], venueErr.OrderID)
	binary.LittleEndian.PutUint16(dst[8:10], uint16(len(msg)))
	copy(dst[venueErrorFixedSize:], msg)
	return dst
}

// DecodeVenueError parses a variable-size venue error payload.
func DecodeVenueError(src []byte) (schema.VenueError, bool) {
	if len(src) < venueErrorFixedSize {
		return schema.VenueError{}, false
	}
	msgLen := int(binary.LittleEndian.Uint16(src[8:10]))
	if len(src) < venueErrorFixedSize+msgLen {
		return schema.VenueError{}, false
	}
	return schema.VenueError{
		OrderID: binary.LittleEndian.Uint64(src[0:8]),
		Message: string(src[venueErrorFixedSize : venueErrorFixedSize+msgLen]),
	}, true
}
