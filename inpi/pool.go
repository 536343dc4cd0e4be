package inpi

import (
	"log"
	"runtime"
	"sync"
)

// processFunc parses one archive into filings. Injected so the pool is
// testable without the external decompression tool.
type processFunc func(archive string) ([]Filing, error)

// collect runs process over every archive on a fixed pool of workers, one
// job per archive. Completion order is not preserved; nothing downstream
// depends on it. An archive that fails is logged and contributes zero
// filings without affecting its siblings.
func collect(archives []string, workers int, process processFunc) []Filing {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	jobs := make(chan string)
	results := make(chan []Filing)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for archive := range jobs {
				filings, err := process(archive)
				if err != nil {
					log.Printf("skipping archive %s: %v", archive, err)
					continue
				}
				results <- filings
			}
		}()
	}
	go func() {
		for _, a := range archives {
			jobs <- a
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Filing
	for filings := range results {
		all = append(all, filings...)
	}
	return all
}
