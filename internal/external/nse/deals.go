package nse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// bulkDealRecord is the JSON shape of the bulk-deal archive endpoint.
type bulkDealRecord struct {
	Symbol     string `json:"symbol"`
	ClientName string `json:"clientName"`
	BuySell    string `json:"buySell"`
	Quantity   string `json:"dealQuantity"`
	Price      string `json:"dealPrice"`
}

// FetchBulkDeals downloads bulk deal records for a date. The archive
// JSON endpoint has been returning 404 since the 2026-02 API change;
// the historical page is tried as a fallback and scraped from its HTML
// table. When both fail the deal feed is unavailable for the run and
// the reversal signal scores 0 everywhere, flagged on each ScoreRecord.
func (c *Client) FetchBulkDeals(ctx context.Context, date time.Time) ([]*contracts.BulkDeal, error) {
	deals, err := c.fetchBulkDealsJSON(ctx, date)
	if err == nil {
		return deals, nil
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		return nil, err
	}

	c.logger.Warn("Bulk deal archive endpoint unavailable, trying historical page")
	return c.fetchBulkDealsHTML(ctx, date)
}

func (c *Client) fetchBulkDealsJSON(ctx context.Context, date time.Time) ([]*contracts.BulkDeal, error) {
	dateStr := date.Format("02-01-2006")
	url := fmt.Sprintf("%s/api/bulk-deal-archives?from=%s&to=%s&type=bulk_deals",
		c.cfg.BaseURL, dateStr, dateStr)

	resp, err := c.get(ctx, url, apiHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bulk deals body: %w", err)
	}

	var wrapped struct {
		Data []bulkDealRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		// An HTML error page where JSON was expected means the
		// endpoint is gone, not that the date has no deals.
		return nil, fmt.Errorf("%w: bulk deal response is not JSON", ErrSourceUnavailable)
	}

	var deals []*contracts.BulkDeal
	for _, rec := range wrapped.Data {
		symbol := strings.TrimSpace(rec.Symbol)
		if symbol == "" {
			continue
		}
		qty, _ := strconv.ParseInt(strings.ReplaceAll(rec.Quantity, ",", ""), 10, 64)
		price, _ := strconv.ParseFloat(strings.ReplaceAll(rec.Price, ",", ""), 64)
		deals = append(deals, &contracts.BulkDeal{
			Symbol:     symbol,
			TradeDate:  date,
			ClientName: strings.TrimSpace(rec.ClientName),
			BuySell:    strings.TrimSpace(rec.BuySell),
			Quantity:   qty,
			Price:      price,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"deals": len(deals),
	}).Info("Fetched bulk deals")
	return deals, nil
}

// fetchBulkDealsHTML scrapes the historical bulk-deals page.
func (c *Client) fetchBulkDealsHTML(ctx context.Context, date time.Time) ([]*contracts.BulkDeal, error) {
	url := c.cfg.BaseURL + "/api/historical/bulk-deals"

	resp, err := c.get(ctx, url, pageHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	deals, err := parseBulkDealTable(resp.Body, date)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"deals": len(deals),
	}).Info("Scraped bulk deals from historical page")
	return deals, nil
}

// parseBulkDealTable extracts deal rows from the page's first table:
// symbol, client name, buy/sell, quantity, price in column order.
func parseBulkDealTable(r io.Reader, date time.Time) ([]*contracts.BulkDeal, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: bulk deal page unreadable", ErrSourceUnavailable)
	}

	var deals []*contracts.BulkDeal
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 5 || cells[0] == "" {
			return
		}

		qty, _ := strconv.ParseInt(strings.ReplaceAll(cells[3], ",", ""), 10, 64)
		price, _ := strconv.ParseFloat(strings.ReplaceAll(cells[4], ",", ""), 64)
		deals = append(deals, &contracts.BulkDeal{
			Symbol:     cells[0],
			TradeDate:  date,
			ClientName: cells[1],
			BuySell:    cells[2],
			Quantity:   qty,
			Price:      price,
		})
	})

	if len(deals) == 0 {
		return nil, fmt.Errorf("%w: no deal table on historical page", ErrSourceUnavailable)
	}
	return deals, nil
}
