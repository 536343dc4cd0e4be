package inpi

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// processArchive decompresses one 7z archive with the external 7z tool and
// parses every XML document found inside. The archive itself failing to
// decompress is an error; a single malformed document inside only loses that
// document.
func processArchive(archive string) ([]Filing, error) {
	tmp, err := os.MkdirTemp("", "inpi-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	cmd := exec.Command("7z", "x", archive, "-o"+tmp, "-y")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("7z failed on %s: %v: %s", archive, err, firstLine(out))
	}

	sourceFile := filepath.Base(archive)
	var filings []Filing
	err = filepath.WalkDir(tmp, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".xml") {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			log.Printf("skipping %s: %v", filepath.Base(path), err)
			return nil
		}
		defer f.Close()
		parsed, err := ParseXML(f, sourceFile)
		if err != nil {
			log.Printf("skipping %s: %v", filepath.Base(path), err)
			return nil
		}
		filings = append(filings, parsed...)
		return nil
	})
	if err != nil {
		return filings, err
	}
	return filings, nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
