package inpi

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// ExtractCSV is the file-only variant of LoadXML: it flattens the archives
// of each year into one CSV per year under outDir, without touching the
// store. Useful to feed the filings to external analytical tools.
func ExtractCSV(sourceDir, outDir string, year, workers int) (map[string]int, error) {
	dirs, err := yearDirs(sourceDir, year)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, dir := range dirs {
		yearName := filepath.Base(dir)
		archives := archivesIn(dir, "*.7z")
		log.Printf("extracting year %s: %d archives with %d workers", yearName, len(archives), workers)
		filings := dedupe(collect(archives, workers, processArchive))
		if len(filings) == 0 {
			continue
		}
		out := filepath.Join(outDir, fmt.Sprintf("inpi_comptes_%s.csv", yearName))
		if err := writeCSV(out, filings); err != nil {
			return counts, err
		}
		log.Printf("written %d records to %s", len(filings), out)
		counts[yearName] = len(filings)
	}
	return counts, nil
}

// csvHeader is the flat record layout: filing header then every resolved
// column of both statements.
func csvHeader() []string {
	header := []string{
		"siren", "date_cloture", "annee_cloture", "duree_exercice",
		"type_comptes", "date_depot", "code_greffe", "confidentialite",
	}
	for _, f := range bilanFields {
		header = append(header, f.column)
	}
	for _, f := range resultatFields {
		header = append(header, f.column)
	}
	return header
}

func writeCSV(path string, filings []Filing) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader()); err != nil {
		return err
	}
	for _, filing := range filings {
		if err := w.Write(csvRecord(filing)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvRecord(f Filing) []string {
	c := f.Compte
	depot := ""
	if !c.DateDepot.IsZero() {
		depot = c.DateDepot.String()
	}
	duree := ""
	if c.DureeExercice > 0 {
		duree = strconv.Itoa(c.DureeExercice)
	}
	record := []string{
		c.Siren, c.DateCloture.String(), strconv.Itoa(c.AnneeCloture), duree,
		c.TypeComptes, depot, c.CodeGreffe, c.Confidentialite,
	}
	var bilanPostes, resultatPostes map[string]decimal.Decimal
	if f.Bilan != nil {
		bilanPostes = f.Bilan.Postes
	}
	if f.Resultat != nil {
		resultatPostes = f.Resultat.Postes
	}
	record = appendPostes(record, bilanFields, bilanPostes)
	record = appendPostes(record, resultatFields, resultatPostes)
	return record
}

func appendPostes(record []string, fields []field, postes map[string]decimal.Decimal) []string {
	for _, fl := range fields {
		if v, ok := postes[fl.column]; ok {
			record = append(record, v.String())
		} else {
			record = append(record, "")
		}
	}
	return record
}
