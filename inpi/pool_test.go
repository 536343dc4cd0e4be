package inpi

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/etnz/registre"
	"github.com/etnz/registre/date"
)

func fakeFiling(siren string, year int, sourceFile string) Filing {
	cloture := date.New(year, 12, 31)
	return Filing{Compte: registre.CompteAnnuel{
		ID:           registre.NewCompteAnnuelID(siren, cloture, sourceFile),
		Siren:        siren,
		DateCloture:  cloture,
		AnneeCloture: year,
		TypeComptes:  "C",
		SourceFile:   sourceFile,
	}}
}

// TestCollectCorruptArchive checks that one failing archive yields zero
// filings without affecting its siblings.
func TestCollectCorruptArchive(t *testing.T) {
	archives := []string{"a.7z", "corrupt.7z", "c.7z"}
	process := func(archive string) ([]Filing, error) {
		if archive == "corrupt.7z" {
			return nil, errors.New("7z failed")
		}
		return []Filing{fakeFiling("552100554", 2023, archive)}, nil
	}
	filings := collect(archives, 2, process)
	if len(filings) != 2 {
		t.Errorf("got %d filings, want 2 (corrupt archive skipped)", len(filings))
	}
	for _, f := range filings {
		if f.Compte.SourceFile == "corrupt.7z" {
			t.Error("a filing came out of the corrupt archive")
		}
	}
}

func TestCollectProcessesEveryArchive(t *testing.T) {
	var archives []string
	for i := 0; i < 50; i++ {
		archives = append(archives, fmt.Sprintf("archive_%02d.7z", i))
	}
	var calls atomic.Int64
	process := func(archive string) ([]Filing, error) {
		calls.Add(1)
		return []Filing{fakeFiling("552100554", 2023, archive)}, nil
	}
	filings := collect(archives, 8, process)
	if calls.Load() != 50 {
		t.Errorf("process called %d times, want 50", calls.Load())
	}
	if len(filings) != 50 {
		t.Errorf("got %d filings, want 50", len(filings))
	}
}

func TestCollectDefaultWorkers(t *testing.T) {
	filings := collect([]string{"a.7z"}, 0, func(string) ([]Filing, error) {
		return []Filing{fakeFiling("552100554", 2023, "a.7z")}, nil
	})
	if len(filings) != 1 {
		t.Errorf("got %d filings, want 1", len(filings))
	}
}

func TestDedupe(t *testing.T) {
	filings := []Filing{
		fakeFiling("552100554", 2023, "a.7z"),
		fakeFiling("552100554", 2023, "a.7z"),
		fakeFiling("552100554", 2022, "a.7z"),
	}
	kept := dedupe(filings)
	if len(kept) != 2 {
		t.Errorf("got %d filings after dedupe, want 2", len(kept))
	}
}
