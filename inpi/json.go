package inpi

import (
	"archive/zip"
	"encoding/json"
	"log"
	"path/filepath"
	"strings"

	"github.com/etnz/registre/store"
)

// jsonBilan mirrors the JSON delivery channel of the secure file transfer.
// Field names follow the XML delivery.
type jsonBilan struct {
	Identite struct {
		Siren           string `json:"siren"`
		DateCloture     string `json:"date_cloture_exercice"`
		CodeTypeBilan   string `json:"code_type_bilan"`
		DateDepot       string `json:"date_depot"`
		NumDepot        string `json:"num_depot"`
		DureeExercice   string `json:"duree_exercice_n"`
		CodeGreffe      string `json:"code_greffe"`
		Confidentialite string `json:"code_confidentialite"`
	} `json:"identite"`
	Liasses []struct {
		Code string `json:"code"`
		M1   string `json:"m1"`
		M3   string `json:"m3"`
	} `json:"liasses"`
}

// LoadJSON is the JSON counterpart of LoadXML for zip archives of JSON
// documents, structurally parallel to the XML channel.
func LoadJSON(st *store.Store, sourceDir string, year, workers int) (map[string]int64, error) {
	dirs, err := yearDirs(sourceDir, year)
	if err != nil {
		return nil, err
	}
	var archives []string
	for _, dir := range dirs {
		archives = append(archives, archivesIn(dir, "*.zip")...)
	}
	return loadArchives(st, sourceDir, archives, workers, processJSONArchive)
}

// processJSONArchive parses every JSON document of one zip archive. A
// malformed document only loses itself.
func processJSONArchive(archive string) ([]Filing, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	sourceFile := filepath.Base(archive)
	var filings []Filing
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		r, err := f.Open()
		if err != nil {
			log.Printf("skipping %s: %v", f.Name, err)
			continue
		}
		var doc jsonBilan
		err = json.NewDecoder(r).Decode(&doc)
		r.Close()
		if err != nil {
			log.Printf("skipping %s: %v", f.Name, err)
			continue
		}
		if filing, ok := doc.toXML().filing(sourceFile); ok {
			filings = append(filings, filing)
		}
	}
	return filings, nil
}

// toXML funnels the JSON document through the XML validation and alias
// resolution so the two channels behave identically.
func (j *jsonBilan) toXML() *xmlBilan {
	var b xmlBilan
	b.Identite.Siren = j.Identite.Siren
	b.Identite.DateCloture = j.Identite.DateCloture
	b.Identite.CodeTypeBilan = j.Identite.CodeTypeBilan
	b.Identite.DateDepot = j.Identite.DateDepot
	b.Identite.NumDepot = j.Identite.NumDepot
	b.Identite.DureeExercice = j.Identite.DureeExercice
	b.Identite.CodeGreffe = j.Identite.CodeGreffe
	b.Identite.Confidentialite = j.Identite.Confidentialite
	liasses := make([]liasse, 0, len(j.Liasses))
	for _, l := range j.Liasses {
		liasses = append(liasses, liasse{Code: l.Code, M1: l.M1, M3: l.M3})
	}
	b.Detail.Pages = []struct {
		Liasses []liasse `xml:"liasse"`
	}{{Liasses: liasses}}
	return &b
}
