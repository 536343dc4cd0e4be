// Package fetch downloads bulk registry files and talks to registry APIs.
//
// Bulk archives from INSEE and the INPI mirror weigh several gigabytes, so
// Download resumes interrupted transfers from the bytes already on disk and
// retries transient failures with a doubling backoff. API clients share the
// JSONGet helper and the period disk cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Progress is called after each chunk with the bytes written so far and the
// expected total (0 when the server does not advertise one).
type Progress func(downloaded, total int64)

// Downloader fetches large files over HTTP with resume and retry.
// The zero value is not usable; use NewDownloader.
type Downloader struct {
	Client   *http.Client
	Attempts int           // per-file retry ceiling
	Backoff  time.Duration // initial retry delay, doubles each attempt
	Progress Progress      // optional
	// Record, when set, is called once per completed transfer with the
	// final size on disk. Callers use it to audit fetched files.
	Record func(url, destination string, size int64)
}

// NewDownloader returns a Downloader with sensible defaults.
func NewDownloader() *Downloader {
	return &Downloader{
		Client:   &http.Client{Timeout: 30 * time.Minute},
		Attempts: 5,
		Backoff:  2 * time.Second,
	}
}

// Download fetches url into destination, resuming from any partial file left
// by a previous run. It returns the destination path. Retries are handled
// internally; the returned error means the retry ceiling was reached.
func (d *Downloader) Download(ctx context.Context, url, destination string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", err
	}

	delay := d.Backoff
	var lastErr error
	for attempt := 0; attempt < d.Attempts; attempt++ {
		if attempt > 0 {
			log.Printf("retrying %s in %v (attempt %d/%d): %v", filepath.Base(destination), delay, attempt+1, d.Attempts, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		done, err := d.attempt(ctx, url, destination)
		if err == nil && done {
			if d.Record != nil {
				var size int64
				if fi, err := os.Stat(destination); err == nil {
					size = fi.Size()
				}
				d.Record(url, destination, size)
			}
			return destination, nil
		}
		if err == nil {
			// short read without a transport error, retry from the new offset
			lastErr = fmt.Errorf("incomplete transfer of %s", url)
			continue
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("download %s failed after %d attempts: %w", url, d.Attempts, lastErr)
}

// attempt performs one transfer round. It reports done=true when the file on
// disk is known to be complete.
func (d *Downloader) attempt(ctx context.Context, url, destination string) (done bool, err error) {
	var offset int64
	if fi, err := os.Stat(destination); err == nil {
		offset = fi.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var total int64
	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusRequestedRangeNotSatisfiable:
		// The partial file already holds every byte the server has.
		return true, nil
	case http.StatusPartialContent:
		flags |= os.O_APPEND
		total = contentRangeTotal(resp.Header.Get("Content-Range"))
	case http.StatusOK:
		// Server ignored the range, restart from scratch.
		offset = 0
		flags |= os.O_TRUNC
		total = resp.ContentLength
		if total < 0 {
			total = 0
		}
	default:
		return false, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	f, err := os.OpenFile(destination, flags, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	written := offset
	buf := make([]byte, 1<<20)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return false, werr
			}
			written += int64(n)
			if d.Progress != nil {
				d.Progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			// keep the bytes written, the next attempt resumes from here
			return false, rerr
		}
	}

	if total > 0 && written < total {
		return false, nil
	}
	return true, nil
}

// contentRangeTotal extracts the total size from a "bytes 100-999/1000" header.
func contentRangeTotal(h string) int64 {
	_, after, ok := strings.Cut(h, "/")
	if !ok || after == "*" {
		return 0
	}
	total, err := strconv.ParseInt(after, 10, 64)
	if err != nil {
		return 0
	}
	return total
}
