// Package pappers is a client for the Pappers commercial API, used to
// cross-check single companies against the bulk registry extracts.
//
// Every call costs API credits, so responses go through the period disk
// cache: entity lookups stay fresh for a month, searches for a week. A
// small rate limiter keeps the client under the API's requests-per-second
// ceiling.
package pappers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/etnz/registre"
	"github.com/etnz/registre/fetch"
)

const baseURL = "https://api.pappers.fr/v2"

// Client talks to the Pappers API.
type Client struct {
	APIKey  string
	BaseURL string

	entity *http.Client // monthly cache, entity data moves slowly
	search *http.Client // weekly cache

	mu          sync.Mutex
	last        time.Time
	minInterval time.Duration
}

// NewClient returns a client using the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		entity:      fetch.NewCachingClient(fetch.Monthly),
		search:      fetch.NewCachingClient(fetch.Weekly),
		minInterval: 200 * time.Millisecond, // 5 req/s max
	}
}

// wait enforces the minimum interval between requests. Cache hits pay it
// too; the simplicity is worth more than the idle milliseconds.
func (c *Client) wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elapsed := time.Since(c.last); elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.last = time.Now()
}

func (c *Client) get(client *http.Client, endpoint string, params url.Values) (map[string]any, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("pappers api key not configured")
	}
	c.wait()
	params.Set("api_token", c.APIKey)
	var data map[string]any
	if err := fetch.JSONGet(client, c.BaseURL+"/"+endpoint+"?"+params.Encode(), &data); err != nil {
		return nil, err
	}
	// the API reports some errors with a 200 status
	if msg, ok := data["erreur"].(string); ok {
		return nil, fmt.Errorf("pappers api error: %s", msg)
	}
	return data, nil
}

// Entreprise fetches the full record of a company, financial statements and
// officers included.
func (c *Client) Entreprise(siren string) (map[string]any, error) {
	siren = registre.CleanSiren(siren)
	if siren == "" {
		return nil, fmt.Errorf("invalid siren")
	}
	params := url.Values{}
	params.Set("siren", siren)
	params.Set("avec_donnees_financieres", "true")
	params.Set("avec_dirigeants", "true")
	params.Set("avec_beneficiaires", "true")
	params.Set("avec_comptes", "true")
	return c.get(c.entity, "entreprise", params)
}

// Finances returns the financial years of a company, most recent first.
func (c *Client) Finances(siren string) ([]map[string]any, error) {
	data, err := c.Entreprise(siren)
	if err != nil {
		return nil, err
	}
	return maps(data["finances"]), nil
}

// Recherche searches companies by name, optionally filtered by department.
func (c *Client) Recherche(query, departement string, max int) ([]map[string]any, error) {
	if max < 1 {
		max = 10
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("nombre", strconv.Itoa(max))
	if departement != "" {
		params.Set("departement", departement)
	}
	data, err := c.get(c.search, "recherche", params)
	if err != nil {
		return nil, err
	}
	return maps(data["resultats"]), nil
}

// maps coerces a decoded JSON list into its object elements.
func maps(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
