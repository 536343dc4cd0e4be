package bodacc

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/registre"
	"github.com/etnz/registre/store"
)

var annonceColumns = []string{
	"id", "siren", "numero_annonce", "date_parution", "numero_parution",
	"type_bulletin", "famille", "nature", "denomination", "forme_juridique",
	"administration", "adresse", "code_postal", "ville", "activite", "details",
	"type_procedure", "date_jugement", "tribunal",
	"date_cloture_exercice", "type_depot", "contenu_annonce", "_source_file",
}

// Load reads every JSON file of sourceDir into the announcements table.
// Records re-appear across overlapping downloads, so rows are keyed by
// announcement id and replaced. A record without an id, or one that fails to
// decode, is skipped without affecting the rest of the file.
func Load(st *store.Store, sourceDir string) (int64, error) {
	files, err := filepath.Glob(filepath.Join(sourceDir, "*.json"))
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no announcement files under %s, run download first", sourceDir)
	}
	log.Printf("found %d files to load", len(files))

	runID, err := st.StartLoad("bodacc", "incremental", sourceDir)
	if err != nil {
		return 0, err
	}
	var processed, inserted int64
	for _, file := range files {
		p, n, err := loadFile(st, file)
		processed += p
		inserted += n
		if err != nil {
			log.Printf("error loading %s: %v", file, err)
			continue
		}
		log.Printf("loaded %d records from %s", n, filepath.Base(file))
	}
	if err := st.FinishLoad(runID, store.StatusSuccess, processed, inserted, ""); err != nil {
		return inserted, err
	}
	return inserted, nil
}

func loadFile(st *store.Store, file string) (processed, inserted int64, err error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return 0, 0, err
	}
	var records []any
	if err := json.Unmarshal(content, &records); err != nil {
		return 0, 0, err
	}
	sourceFile := filepath.Base(file)
	for _, record := range records {
		processed++
		a, ok := parseRecord(record, sourceFile)
		if !ok {
			continue
		}
		err := st.Upsert("bodacc_annonces", annonceColumns,
			a.ID, nullable(a.Siren), a.NumeroAnnonce, a.DateParution, a.NumeroParution,
			a.TypeBulletin, a.Famille, a.Nature, a.Denomination, a.FormeJuridique,
			a.Administration, a.Adresse, a.CodePostal, a.Ville, a.Activite, nullableJSON(a.Details),
			a.TypeProcedure, a.DateJugement, a.Tribunal,
			a.DateClotureExercice, a.TypeDepot, a.ContenuAnnonce, a.SourceFile)
		if err != nil {
			log.Printf("error inserting record %s: %v", a.ID, err)
			continue
		}
		inserted++
	}
	return processed, inserted, nil
}

// parseRecord extracts one announcement from a raw API record. The API nests
// the payload under record.fields; older exports flatten it.
func parseRecord(record any, sourceFile string) (registre.Annonce, bool) {
	fields := fieldsOf(record)
	if fields == nil {
		return registre.Annonce{}, false
	}
	id := str(fields, "id")
	if id == "" {
		// the id sometimes sits next to the fields instead of inside them
		if jval, err := jsonpath.Get("$.record.id", record); err == nil {
			id, _ = jval.(string)
		}
	}
	if id == "" {
		return registre.Annonce{}, false
	}

	a := registre.Annonce{
		ID:                  id,
		Siren:               extractSiren(fields),
		NumeroAnnonce:       str(fields, "numeroannonce"),
		DateParution:        str(fields, "dateparution"),
		NumeroParution:      str(fields, "numeroparution"),
		TypeBulletin:        bulletinType(id, fields),
		Famille:             str(fields, "familleavis"),
		Nature:              str(fields, "typeavis"),
		Denomination:        str(fields, "denomination", "raisonSociale"),
		FormeJuridique:      str(fields, "formejuridique"),
		Administration:      str(fields, "administration"),
		Adresse:             str(fields, "adresse"),
		CodePostal:          str(fields, "codepostal"),
		Ville:               str(fields, "ville", "nomCommune"),
		Activite:            str(fields, "activite", "descriptif"),
		TypeProcedure:       str(fields, "typeprocedure"),
		DateJugement:        str(fields, "datejugement"),
		Tribunal:            str(fields, "tribunal", "nomgreffeorigine"),
		DateClotureExercice: str(fields, "datecloture"),
		TypeDepot:           depotType(fields),
		ContenuAnnonce:      str(fields, "contenu", "texte"),
		SourceFile:          sourceFile,
	}
	a.Details = details(fields)
	return a, true
}

// fieldsOf digs the fields map out of the record envelope.
func fieldsOf(record any) map[string]any {
	for _, path := range []string{"$.record.fields", "$.fields"} {
		if jval, err := jsonpath.Get(path, record); err == nil {
			if m, ok := jval.(map[string]any); ok && len(m) > 0 {
				return m
			}
		}
	}
	m, _ := record.(map[string]any)
	return m
}

// promoted lists the fields excluded from the details sidecar because they
// already map to columns of their own.
var promoted = map[string]bool{
	"id": true, "dateparution": true, "numerodepartement": true,
	"nomgreffeorigine": true, "tribunal": true,
}

// details keeps the unpromoted fields verbatim as a JSON sidecar.
func details(fields map[string]any) json.RawMessage {
	rest := make(map[string]any)
	for k, v := range fields {
		if !promoted[k] {
			rest[k] = v
		}
	}
	if len(rest) == 0 {
		return nil
	}
	content, err := json.Marshal(rest)
	if err != nil {
		return nil
	}
	return content
}

// str returns the first non-empty string value among the given keys.
func str(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// depotType reads the typeDepot of a comptes-annuels announcement. The API
// serializes the depot block either as a nested object or as a JSON-encoded
// string, depending on the export.
func depotType(fields map[string]any) string {
	switch v := fields["depot"].(type) {
	case map[string]any:
		return str(v, "typeDepot", "typedepot")
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			return str(m, "typeDepot", "typedepot")
		}
	}
	return str(fields, "typedepot")
}

// extractSiren tries the structured fields first, then the free-text RCS
// mention. Only an exactly-9-digit candidate is accepted.
func extractSiren(fields map[string]any) string {
	if siren := registre.CleanSiren(str(fields, "siren", "numeroImmatriculation")); siren != "" {
		return siren
	}
	return registre.ExtractSiren(str(fields, "registre", "numeroRcs"))
}

// bulletinType determines the bulletin (A, B or C) from the announcement id,
// falling back to keywords of the famille, then to "A".
func bulletinType(id string, fields map[string]any) string {
	idUpper := strings.ToUpper(id)
	switch {
	case strings.Contains(idUpper, "BODA"):
		return "A"
	case strings.Contains(idUpper, "BODB"):
		return "B"
	case strings.Contains(idUpper, "BODC"):
		return "C"
	}
	famille := strings.ToLower(str(fields, "familleavis"))
	switch {
	case strings.Contains(famille, "vente"), strings.Contains(famille, "creation"), strings.Contains(famille, "collectif"):
		return "A"
	case strings.Contains(famille, "modification"), strings.Contains(famille, "radiation"):
		return "B"
	case strings.Contains(famille, "depot"), strings.Contains(famille, "compte"):
		return "C"
	}
	return "A"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableJSON(m json.RawMessage) any {
	if len(m) == 0 {
		return nil
	}
	return string(m)
}
