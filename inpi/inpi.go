// Package inpi extracts the annual accounts (bilans saisis) published by the
// French IP office into the analytical store.
//
// The filings come as 7z archives of XML documents, one archive per delivery
// day, mirrored per year at data.cquest.org. Decompression needs the
// external 7z tool; parsing runs on a bounded worker pool, one archive per
// job.
package inpi

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/etnz/registre/fetch"
)

const mirrorBase = "http://data.cquest.org/inpi_rncs/comptes"

// Mirror coverage.
const (
	FirstYear = 2017
	LastYear  = 2023
)

var archiveHrefRe = regexp.MustCompile(`href="(bilans_saisis_\d+\.7z)"`)

// ParseYears expands a "2017-2023" or "2020" spec into a year list.
func ParseYears(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	from, to, found := strings.Cut(spec, "-")
	if !found {
		to = from
	}
	a, err := strconv.Atoi(from)
	if err != nil {
		return nil, fmt.Errorf("invalid years %q: %w", spec, err)
	}
	b, err := strconv.Atoi(to)
	if err != nil {
		return nil, fmt.Errorf("invalid years %q: %w", spec, err)
	}
	if b < a {
		return nil, fmt.Errorf("invalid years %q", spec)
	}
	var years []int
	for y := a; y <= b; y++ {
		years = append(years, y)
	}
	return years, nil
}

// DownloadMirror fetches the 7z archives of the given years from the public
// mirror into outDir/<year>/, skipping files already present. It returns the
// paths of the newly downloaded archives. maxFilesPerYear caps each year, 0
// means everything.
func DownloadMirror(ctx context.Context, d *fetch.Downloader, outDir string, years []int, maxFilesPerYear int) ([]string, error) {
	var downloaded []string
	for _, year := range years {
		if year < FirstYear || year > LastYear {
			log.Printf("year %d not available on mirror (%d-%d only)", year, FirstYear, LastYear)
			continue
		}
		yearURL := fmt.Sprintf("%s/%d/", mirrorBase, year)
		files, err := listArchives(ctx, d.Client, yearURL)
		if err != nil {
			log.Printf("failed to list files for %d: %v", year, err)
			continue
		}
		if maxFilesPerYear > 0 && len(files) > maxFilesPerYear {
			files = files[:maxFilesPerYear]
		}
		log.Printf("year %d: %d files to download", year, len(files))

		yearDir := filepath.Join(outDir, strconv.Itoa(year))
		for _, name := range files {
			local := filepath.Join(yearDir, name)
			if _, err := os.Stat(local); err == nil {
				continue
			}
			if _, err := d.Download(ctx, yearURL+name, local); err != nil {
				log.Printf("failed to download %s: %v", name, err)
				continue
			}
			downloaded = append(downloaded, local)
		}
	}
	log.Printf("downloaded %d new files", len(downloaded))
	return downloaded, nil
}

// listArchives scrapes the archive hrefs out of a mirror directory listing.
func listArchives(ctx context.Context, client *http.Client, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, m := range archiveHrefRe.FindAllStringSubmatch(string(body), -1) {
		files = append(files, m[1])
	}
	return files, nil
}

// yearDirs lists the per-year directories to process: the one matching year,
// or every numeric directory when year is 0.
func yearDirs(sourceDir string, year int) ([]string, error) {
	if year > 0 {
		dir := filepath.Join(sourceDir, strconv.Itoa(year))
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("no data for %d under %s, run download first", year, sourceDir)
		}
		return []string{dir}, nil
	}
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s, run download first: %w", sourceDir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			if _, err := strconv.Atoi(e.Name()); err == nil {
				dirs = append(dirs, filepath.Join(sourceDir, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no year directories under %s, run download first", sourceDir)
	}
	return dirs, nil
}

// archivesIn globs the archives of one year directory.
func archivesIn(dir, pattern string) []string {
	archives, _ := filepath.Glob(filepath.Join(dir, pattern))
	sort.Strings(archives)
	return archives
}
