package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// corpKeywords are the announcement categories the tracker cares about.
// Earnings/dividend feed the noise filter; the rest are manipulation
// context. The first match becomes the event type.
var corpKeywords = []string{
	"results", "dividend", "bonus", "split",
	"preferential", "allotment", "mou", "partnership",
}

// announcement is the corporate-announcements API response shape.
// Field names have changed across API revisions; the legacy names are
// kept as secondary sources.
type announcement struct {
	Symbol         string `json:"symbol"`
	Desc           string `json:"desc"`
	AttachmentText string `json:"attchmntText"`
	SortDate       string `json:"sort_date"`
	AnDt           string `json:"an_dt"`
	Subject        string `json:"subject"`
	AnnDate        string `json:"ann_date"`
}

// FetchAnnouncements downloads corporate announcements for a date and
// returns only the keyword-matched ones as CorporateEvents.
func (c *Client) FetchAnnouncements(ctx context.Context, date time.Time) ([]*contracts.CorporateEvent, error) {
	dateStr := date.Format("02-01-2006")
	url := fmt.Sprintf("%s/api/corporate-announcements?index=equities&from_date=%s&to_date=%s",
		c.cfg.BaseURL, dateStr, dateStr)

	resp, err := c.get(ctx, url, apiHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read announcements body: %w", err)
	}

	events, err := parseAnnouncements(body, date)
	if err != nil {
		return nil, fmt.Errorf("parse announcements: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"matched": len(events),
	}).Info("Fetched corporate announcements")
	return events, nil
}

// parseAnnouncements decodes the response, which is either a bare JSON
// list or wrapped in a "data" key, and keyword-filters it.
func parseAnnouncements(body []byte, date time.Time) ([]*contracts.CorporateEvent, error) {
	var list []announcement
	if err := json.Unmarshal(body, &list); err != nil {
		var wrapped struct {
			Data []announcement `json:"data"`
		}
		if werr := json.Unmarshal(body, &wrapped); werr != nil {
			return nil, err
		}
		list = wrapped.Data
	}

	var events []*contracts.CorporateEvent
	for _, ann := range list {
		symbol := strings.TrimSpace(ann.Symbol)
		if symbol == "" {
			continue
		}

		category := firstNonEmpty(ann.Desc, ann.Subject)
		fullText := firstNonEmpty(ann.AttachmentText, ann.Subject)
		combined := strings.TrimSpace(category + " " + fullText)

		keyword := matchKeyword(combined)
		if keyword == "" {
			continue
		}

		events = append(events, &contracts.CorporateEvent{
			Symbol:      symbol,
			EventDate:   announcementDate(ann, date),
			EventType:   keyword,
			Description: truncate(combined, 500),
			Source:      "NSE",
		})
	}
	return events, nil
}

// matchKeyword returns the first tracked keyword present in text.
func matchKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range corpKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

// announcementDate extracts the announcement date, trying the known
// field layouts and falling back to the requested date.
func announcementDate(ann announcement, fallback time.Time) time.Time {
	for _, raw := range []string{ann.SortDate, ann.AnDt, ann.AnnDate} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range []string{"2006-01-02", "02-Jan-2006", "02/01/2006"} {
			if len(raw) < len(layout) {
				continue
			}
			if t, err := time.Parse(layout, raw[:len(layout)]); err == nil {
				return t
			}
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
