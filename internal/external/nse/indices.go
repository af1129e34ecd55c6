package nse

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
)

// FetchIndexCloses downloads the index bhavcopy for a date and returns
// the closing value of every listed index. The benchmark index used by
// the relative-strength signals is one row of this file.
func (c *Client) FetchIndexCloses(ctx context.Context, date time.Time) ([]*contracts.BenchmarkBar, error) {
	url := fmt.Sprintf("%s/content/indices/ind_close_all_%s.csv",
		c.cfg.ArchivesURL, date.Format("02012006"))

	resp, err := c.get(ctx, url, pageHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bars, err := parseIndexCloses(resp.Body, date)
	if err != nil {
		return nil, fmt.Errorf("parse index bhavcopy: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
		"rows": len(bars),
	}).Info("Fetched index closes")
	return bars, nil
}

// parseIndexCloses parses the index close file. The column names have
// drifted over the years, so the name and close columns are located by
// fuzzy match rather than fixed position.
func parseIndexCloses(r io.Reader, date time.Time) ([]*contracts.BenchmarkBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: empty index file", ErrSourceUnavailable)
	}

	nameIdx, closeIdx := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "index name", "indexname", "index_name":
			nameIdx = i
		case "closing index value", "close", "closingindexvalue", "closing_index_value":
			closeIdx = i
		}
	}
	if nameIdx == -1 {
		nameIdx = 0
	}
	if closeIdx == -1 {
		for i, name := range records[0] {
			if strings.Contains(strings.ToLower(name), "clos") {
				closeIdx = i
				break
			}
		}
	}
	if closeIdx == -1 {
		return nil, fmt.Errorf("close column not found in %v", records[0])
	}

	header := map[string]int{"NAME": nameIdx, "CLOSE": closeIdx}

	var bars []*contracts.BenchmarkBar
	for _, row := range records[1:] {
		name := field(row, header, "NAME")
		if name == "" {
			continue
		}
		closeVal, ok := tryFloatField(row, header, "CLOSE")
		if !ok {
			continue
		}
		bars = append(bars, &contracts.BenchmarkBar{
			IndexName: name,
			TradeDate: date,
			Close:     closeVal,
		})
	}
	return bars, nil
}
