package contracts

import "time"

// CorporateEvent is a keyword-matched corporate announcement. Append
// only; used by the noise filter and as signal context.
type CorporateEvent struct {
	Symbol      string
	EventDate   time.Time
	EventType   string // matched keyword: results, dividend, bonus, split, ...
	Description string
	Source      string
}

// IsEarningsOrDividend reports whether the event disqualifies a
// security from scoring for a few days (news-driven volume is not
// manipulation evidence).
func (e *CorporateEvent) IsEarningsOrDividend() bool {
	return e.EventType == "results" || e.EventType == "dividend"
}

// BulkDeal is one bulk/block deal record from the ancillary deal feed.
type BulkDeal struct {
	Symbol     string
	TradeDate  time.Time
	ClientName string
	BuySell    string
	Quantity   int64
	Price      float64
}
