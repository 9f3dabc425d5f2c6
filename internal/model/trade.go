// Package model holds the fixed symbol table and the wire-level trade shape
// shared by every other package in tradepulse.
package model

// Symbols is the canonical, compile-time-fixed set of tracked spot symbols.
// Index in this slice is the stable key used by SymbolHistory, per-symbol
// locks, and every derived log file.
var Symbols = [8]string{
	"BTC-USDT",
	"ADA-USDT",
	"ETH-USDT",
	"DOGE-USDT",
	"XRP-USDT",
	"SOL-USDT",
	"LTC-USDT",
	"BNB-USDT",
}

// NumSymbols is len(Symbols), kept as a constant for array sizing.
const NumSymbols = 8

// MaxSymbolLen bounds a symbol identifier the way the original C TradeData
// bounded it to a fixed char buffer.
const MaxSymbolLen = 15

// SymbolIndex returns the canonical index of symbol, or -1 if it is not one
// of the eight tracked symbols. Linear scan over eight entries; a
// perfect hash would be a valid optimization but is unnecessary at this size.
func SymbolIndex(symbol string) int {
	for i, s := range Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

// Trade is an immutable observation of one executed transaction.
type Trade struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp uint64 // seconds since Unix epoch
}
