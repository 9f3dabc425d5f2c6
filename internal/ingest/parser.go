// Package ingest turns raw exchange frames into trades and owns the
// WebSocket connection lifecycle that produces them.
package ingest

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tradepulse/tradepulse/internal/history"
	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/queue"
)

// tradeFrame mirrors the subset of the OKX public trades payload this
// system cares about. Unknown fields are ignored by encoding/json. Each
// data element is kept raw so one malformed element can be rejected on its
// own instead of failing the whole-frame decode.
type tradeFrame struct {
	Data []json.RawMessage `json:"data"`
}

// ParseFrame decodes one text frame, pushes every well-formed entry onto q
// and appends it to the matching symbol's history when instId is one of
// the eight tracked symbols. Malformed frames are dropped silently;
// malformed or incomplete elements within an otherwise well-formed frame
// are skipped individually, leaving their siblings intact.
func ParseFrame(raw []byte, q *queue.TradeQueue, histories [model.NumSymbols]*history.SymbolHistory) {
	var frame tradeFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Data == nil {
		return
	}

	for _, entry := range frame.Data {
		trade, ok := toTrade(entry)
		if !ok {
			continue
		}

		q.Push(trade)

		if idx := model.SymbolIndex(trade.Symbol); idx >= 0 {
			histories[idx].Append(trade)
		}
	}
}

// toTrade decodes a single data-array element into a Trade. Each required
// field is pulled out and type-checked independently: a non-object
// element, a missing field, or a field that isn't a JSON string is enough
// to reject that element, without consulting the other fields.
func toTrade(raw json.RawMessage) (model.Trade, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Trade{}, false
	}

	instId, ok := stringField(fields, "instId")
	if !ok {
		return model.Trade{}, false
	}
	px, ok := stringField(fields, "px")
	if !ok {
		return model.Trade{}, false
	}
	sz, ok := stringField(fields, "sz")
	if !ok {
		return model.Trade{}, false
	}
	ts, ok := stringField(fields, "ts")
	if !ok {
		return model.Trade{}, false
	}

	price, err := decimal.NewFromString(px)
	if err != nil {
		return model.Trade{}, false
	}
	volume, err := decimal.NewFromString(sz)
	if err != nil {
		return model.Trade{}, false
	}
	tsMillis, err := strconv.ParseUint(ts, 10, 64)
	if err != nil {
		return model.Trade{}, false
	}

	symbol := instId
	if len(symbol) > model.MaxSymbolLen {
		symbol = symbol[:model.MaxSymbolLen]
	}

	return model.Trade{
		Symbol:    symbol,
		Price:     price.InexactFloat64(),
		Volume:    volume.InexactFloat64(),
		Timestamp: tsMillis / 1000,
	}, true
}

// stringField looks up key in fields and requires it to decode as a JSON
// string; a missing key or a non-string value (number, object, null, ...)
// both report ok=false.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
