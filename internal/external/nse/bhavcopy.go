package nse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// FetchDailyBars downloads the full-market bar file for a date. The
// full bhavcopy (with delivery data) is tried first; when it is not
// available the plain CM bhavcopy is a documented fallback that simply
// lacks the delivery columns.
func (c *Client) FetchDailyBars(ctx context.Context, date time.Time) ([]*contracts.DailyBar, error) {
	bars, err := c.fetchFullBhavcopy(ctx, date)
	if err == nil {
		return bars, nil
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		return nil, err
	}

	c.logger.WithField("date", date.Format("2006-01-02")).
		Warn("Full bhavcopy unavailable, falling back to CM bhavcopy")
	return c.fetchCMBhavcopy(ctx, date)
}

// fetchFullBhavcopy downloads sec_bhavdata_full_{ddmmyyyy}.csv, which
// includes delivered quantity and delivered percentage per security.
func (c *Client) fetchFullBhavcopy(ctx context.Context, date time.Time) ([]*contracts.DailyBar, error) {
	url := fmt.Sprintf("%s/products/content/sec_bhavdata_full_%s.csv",
		c.cfg.ArchivesURL, date.Format("02012006"))

	resp, err := c.get(ctx, url, pageHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bars, err := parseFullBhavcopy(resp.Body, date)
	if err != nil {
		return nil, fmt.Errorf("parse full bhavcopy: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"rows": len(bars),
	}).Info("Fetched full bhavcopy")
	return bars, nil
}

// fetchCMBhavcopy downloads BhavCopy_{DDMMMYYYY}_1.csv, the older
// format without delivery data.
func (c *Client) fetchCMBhavcopy(ctx context.Context, date time.Time) ([]*contracts.DailyBar, error) {
	url := fmt.Sprintf("%s/content/cm/BhavCopy_%s_1.csv",
		c.cfg.ArchivesURL, strings.ToUpper(date.Format("02Jan2006")))

	resp, err := c.get(ctx, url, pageHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bars, err := parseCMBhavcopy(resp.Body, date)
	if err != nil {
		return nil, fmt.Errorf("parse CM bhavcopy: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"rows": len(bars),
	}).Info("Fetched CM bhavcopy")
	return bars, nil
}

// parseFullBhavcopy parses the full bhavcopy CSV. Typical columns:
// SYMBOL, SERIES, DATE1, PREV_CLOSE, OPEN_PRICE, HIGH_PRICE, LOW_PRICE,
// LAST_PRICE, CLOSE_PRICE, AVG_PRICE, TTL_TRD_QNTY, TURNOVER_LACS,
// NO_OF_TRADES, DELIV_QTY, DELIV_PER.
func parseFullBhavcopy(r io.Reader, date time.Time) ([]*contracts.DailyBar, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var bars []*contracts.DailyBar
	for _, row := range rows {
		symbol := field(row, header, "SYMBOL")
		if symbol == "" {
			continue
		}

		bar := &contracts.DailyBar{
			Symbol:    symbol,
			Series:    field(row, header, "SERIES"),
			TradeDate: date,
			Open:      floatField(row, header, "OPEN_PRICE"),
			High:      floatField(row, header, "HIGH_PRICE"),
			Low:       floatField(row, header, "LOW_PRICE"),
			Close:     floatField(row, header, "CLOSE_PRICE"),
			PrevClose: floatField(row, header, "PREV_CLOSE"),
			Trades:    intField(row, header, "NO_OF_TRADES"),
		}
		bar.TotalVolume = intField(row, header, "TTL_TRD_QNTY")

		if qty, ok := tryIntField(row, header, "DELIV_QTY"); ok {
			bar.DeliveredVolume = &qty
		}
		if pct, ok := tryFloatField(row, header, "DELIV_PER"); ok {
			bar.DeliveredPct = &pct
		}

		bar.PctChange = pctChange(bar.Close, bar.PrevClose)
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseCMBhavcopy parses the CM bhavcopy CSV. Typical columns: SYMBOL,
// SERIES, OPEN, HIGH, LOW, CLOSE, PREVCLOSE, TOTTRDQTY, TOTALTRADES.
func parseCMBhavcopy(r io.Reader, date time.Time) ([]*contracts.DailyBar, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	var bars []*contracts.DailyBar
	for _, row := range rows {
		symbol := field(row, header, "SYMBOL")
		if symbol == "" {
			continue
		}

		bar := &contracts.DailyBar{
			Symbol:      symbol,
			Series:      field(row, header, "SERIES"),
			TradeDate:   date,
			Open:        floatField(row, header, "OPEN"),
			High:        floatField(row, header, "HIGH"),
			Low:         floatField(row, header, "LOW"),
			Close:       floatField(row, header, "CLOSE"),
			PrevClose:   floatField(row, header, "PREVCLOSE"),
			TotalVolume: intField(row, header, "TOTTRDQTY"),
			Trades:      intField(row, header, "TOTALTRADES"),
		}

		bar.PctChange = pctChange(bar.Close, bar.PrevClose)
		bars = append(bars, bar)
	}
	return bars, nil
}

// readCSV reads all records and indexes the header by trimmed name.
// NSE pads both header names and values with spaces.
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: empty bhavcopy", ErrSourceUnavailable)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return records[1:], header, nil
}

func field(row []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func floatField(row []string, header map[string]int, name string) float64 {
	v, _ := tryFloatField(row, header, name)
	return v
}

func tryFloatField(row []string, header map[string]int, name string) (float64, bool) {
	s := field(row, header, name)
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intField(row []string, header map[string]int, name string) int64 {
	v, _ := tryIntField(row, header, name)
	return v
}

func tryIntField(row []string, header map[string]int, name string) (int64, bool) {
	s := field(row, header, name)
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some files render quantities as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return v, true
}

// pctChange returns the percent move from prev to close, nil when prev
// is unknown or zero.
func pctChange(close, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	pct := (close - prev) / prev * 100
	return &pct
}
