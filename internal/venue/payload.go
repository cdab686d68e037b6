package venue

import (
	"fmt"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"

	"main/internal/schema"
	"main/pkg/exception"
)

const (
	msgTypeOrderBook   = "order_book"
	msgTypeTradeTicks  = "trade_ticks"
	msgTypeOrderFilled = "order_filled"
	msgTypeOrderStatus = "order_status"
	msgTypeHedgeFilled = "hedge_filled"
	msgTypeError       = "error"

	venueWsMethodSubscribeID = 1
)

type envelope struct {
	Type string `json:"type"`
}

type subscribeRequest struct {
	ID      int      `json:"id"`
	Method  string   `json:"method"`
	Symbols []string `json:"symbols"`
}

type subscribeResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type bookMessage struct {
	Type       string            `json:"type"`
	Symbol     string            `json:"symbol"`
	Sequence   uint64            `json:"sequence"`
	Time       int64             `json:"time"`
	AskPrices  []decimal.Decimal `json:"askPrices"`
	AskVolumes []int64           `json:"askVolumes"`
	BidPrices  []decimal.Decimal `json:"bidPrices"`
	BidVolumes []int64           `json:"bidVolumes"`
}

type fillMessage struct {
	Type          string          `json:"type"`
	ClientOrderID uint64          `json:"clientOrderId"`
	Price         decimal.Decimal `json:"price"`
	Volume        int64           `json:"volume"`
	Time          int64           `json:"time"`
}

type statusMessage struct {
	Type            string `json:"type"`
	ClientOrderID   uint64 `json:"clientOrderId"`
	FillVolume      int64  `json:"fillVolume"`
	RemainingVolume int64  `json:"remainingVolume"`
	Fees            int64  `json:"fees"`
	Time            int64  `json:"time"`
}

type errorMessage struct {
	Type          string `json:"type"`
	ClientOrderID uint64 `json:"clientOrderId"`
	Message       string `json:"message"`
}

type insertRequest struct {
	Type          string `json:"type"`
	ClientOrderID uint64 `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Volume        int64  `json:"volume"`
	Lifespan      string `json:"lifespan"`
}

type amendRequest struct {
	Type          string `json:"type"`
	ClientOrderID uint64 `json:"clientOrderId"`
	Volume        int64  `json:"volume"`
}

type cancelRequest struct {
	Type          string `json:"type"`
	ClientOrderID uint64 `json:"clientOrderId"`
}

type hedgeRequest struct {
	Type          string `json:"type"`
	ClientOrderID uint64 `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Volume        int64  `json:"volume"`
}

func wireSide(side schema.Side) string {
	if side == schema.SideBuy {
		return "BUY"
	}
	return "SELL"
}

func wireLifespan(lifespan schema.Lifespan) string {
	if lifespan == schema.LifespanFillAndKill {
		return "FAK"
	}
	return "GFD"
}

// centsToWire formats a price in cents as a two-decimal string.
func centsToWire(price schema.Price) string {
	sign := ""
	if price < 0 {
		sign = "-"
		price = -price
	}
	return fmt.Sprintf("%s%d.%02d", sign, price/100, price%100)
}

const maxInt64 = int64(^uint64(0) >> 1)

// wireToCents parses a decimal price string into cents, truncating any
// precision beyond two fractional digits.
func wireToCents(d decimal.Decimal) (schema.Price, error) {
	src := d.String()
	if len(src) == 0 {
		return 0, exception.ErrInvalidPrice
	}
	neg := false
	i := 0
	if src[0] == '-' {
		neg = true
		i++
	}
	if i == len(src) {
		return 0, exception.ErrInvalidPrice
	}
	var dollars int64
	var cents int64
	scale := 0
	seenDot := false
	for ; i < len(src); i++ {
		c := src[i]
		if c == '.' {
			if seenDot {
				return 0, exception.ErrInvalidPrice
			}
			seenDot = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, exception.ErrInvalidPrice
		}
		digit := int64(c - '0')
		if !seenDot {
			if dollars > (maxInt64-digit)/10 {
				return 0, exception.ErrInvalidPrice
			}
			dollars = dollars*10 + digit
			continue
		}
		if scale < 2 {
			cents = cents*10 + digit
			scale++
		}
	}
	for ; scale < 2; scale++ {
		cents *= 10
	}
	if dollars > (maxInt64-cents)/100 {
		return 0, exception.ErrInvalidPrice
	}
	value := dollars*100 + cents
	if neg {
		value = -value
	}
	return schema.Price(value), nil
}

func (m bookMessage) toUpdate(instrument schema.Instrument) (schema.BookUpdate, error) {
	update := schema.BookUpdate{Instrument: instrument, Seq: m.Sequence}
	for i := 0; i < schema.TopLevelCount; i++ {
		if i < len(m.AskPrices) {
			price, err := wireToCents(m.AskPrices[i])
			if err != nil {
				return schema.BookUpdate{}, errors.Wrapf(err, "ask level %d", i)
			}
			update.AskPrices[i] = price
		}
		if i < len(m.AskVolumes) {
			update.AskVolumes[i] = schema.Volume(m.AskVolumes[i])
		}
		if i < len(m.BidPrices) {
			price, err := wireToCents(m.BidPrices[i])
			if err != nil {
				return schema.BookUpdate{}, errors.Wrapf(err, "bid level %d", i)
			}
			update.BidPrices[i] = price
		}
		if i < len(m.BidVolumes) {
			update.BidVolumes[i] = schema.Volume(m.BidVolumes[i])
		}
	}
	return update, nil
}
