package fetch

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/registre/date"
)

// Freshness names how long a cached HTTP response stays valid. Entries are
// keyed by the bucket the current day falls in, so a daily entry written on
// Monday is stale on Tuesday.
type Freshness string

const (
	Daily   Freshness = "daily"
	Weekly  Freshness = "weekly"
	Monthly Freshness = "monthly"
)

// bucket returns the cache-key bucket the given day belongs to.
func (f Freshness) bucket(d date.Date) string {
	switch f {
	case Weekly:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Monthly:
		return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
	default:
		return d.String()
	}
}

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base      http.RoundTripper
	freshness Freshness
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// The key embeds the current freshness bucket, so the entry expires
	// when the day/week/month rolls over.
	key := fmt.Sprintf("%s %s %s", c.freshness.bucket(date.Today()), req.Method, req.URL.String())
	key = fmt.Sprintf("registre-%s-%x", c.freshness, sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(os.TempDir(), key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(os.TempDir(), key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	f.Close()
	return err
}

// NewCachingClient returns an http.Client backed by a disk cache whose
// entries expire with the given freshness.
func NewCachingClient(freshness Freshness) *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, freshness: freshness}
	return client
}

// JSONGet performs an HTTP GET request to the given address and unmarshals the
// JSON response body into the provided data structure. It uses the provided
// http.Client for the request.
func JSONGet(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
