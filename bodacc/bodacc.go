// Package bodacc extracts the legal announcements of the French official
// gazette (Bulletin Officiel des Annonces Civiles et Commerciales).
//
// Announcements come from the OpenDataSoft API, free and unauthenticated:
//   - Type A: sales, creations, insolvency procedures
//   - Type B: modifications, deregistrations
//   - Type C: annual account deposits
package bodacc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/etnz/registre/date"
)

const (
	apiBase = "https://bodacc-datadila.opendatasoft.com/api/v2"
	dataset = "annonces-commerciales"

	// The API refuses offsets beyond 10K records per query; date windowing
	// keeps each window below it, maxOffset is the hard stop.
	maxOffset = 9900

	recentWindowDays = 7  // around 2-3K announcements per day
	yearlyWindowDays = 14 // full-year backfill, about 26 windows
)

// Client queries the announcements API.
type Client struct {
	BaseURL  string
	Dataset  string
	PageSize int
	HTTP     *http.Client
}

// NewClient returns a client against the public API.
func NewClient(pageSize int) *Client {
	if pageSize < 1 {
		pageSize = 100
	}
	return &Client{
		BaseURL:  apiBase,
		Dataset:  dataset,
		PageSize: pageSize,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

type recordsResponse struct {
	TotalCount int64             `json:"total_count"`
	Records    []json.RawMessage `json:"records"`
}

// Download fetches announcements over the selected range: the full year when
// year is set, the most recent days otherwise. The range is split into
// windows covering every day exactly once, each window paginated until
// exhausted. All records land in one timestamped JSON file under outDir,
// whose path is returned ("" when the range held no record).
func (c *Client) Download(ctx context.Context, outDir string, year, days int) (string, error) {
	var windows []date.Range
	if year > 0 {
		windows = date.YearRange(year).Windows(yearlyWindowDays)
	} else {
		windows = date.LastDays(days).Windows(recentWindowDays)
	}
	if len(windows) > 1 {
		log.Printf("splitting request into %d date windows", len(windows))
	}

	var all []json.RawMessage
	for i, w := range windows {
		if len(windows) > 1 {
			log.Printf("window %d/%d: %s", i+1, len(windows), w)
		}
		records, err := c.fetchWindow(ctx, w)
		if err != nil {
			return "", err
		}
		all = append(all, records...)
	}
	log.Printf("fetched %d announcements total", len(all))
	if len(all) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(outDir, "bodacc_"+time.Now().Format("20060102_150405")+".json")
	content, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, content, 0o644); err != nil {
		return "", err
	}
	log.Printf("saved to %s", out)
	return out, nil
}

// fetchWindow pages through one date window. An HTTP 400 past the first page
// means the API refuses to go deeper; the window ends there.
func (c *Client) fetchWindow(ctx context.Context, w date.Range) ([]json.RawMessage, error) {
	where := fmt.Sprintf("dateparution >= '%s' AND dateparution <= '%s'", w.From, w.To)
	var records []json.RawMessage
	offset := 0

	for offset < maxOffset {
		params := url.Values{}
		params.Set("where", where)
		params.Set("limit", strconv.Itoa(c.PageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("order_by", "dateparution DESC")
		addr := fmt.Sprintf("%s/catalog/datasets/%s/records?%s", c.BaseURL, c.Dataset, params.Encode())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusBadRequest && offset > 0 {
			resp.Body.Close()
			log.Printf("api limit reached at offset %d", offset)
			break
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
		}
		var data recordsResponse
		err = json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if len(data.Records) == 0 {
			break
		}
		records = append(records, data.Records...)
		offset += len(data.Records)
		if int64(offset) >= data.TotalCount {
			break
		}
	}
	return records, nil
}
