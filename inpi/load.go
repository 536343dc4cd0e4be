package inpi

import (
	"log"

	"github.com/etnz/registre/store"
	"github.com/shopspring/decimal"
)

// LoadXML processes the 7z archives of sourceDir (one year, or all years
// when year is 0) and replaces the three accounts tables with the result.
// Loads are wholesale: partial per-year refreshes are not supported, load
// every year of interest in one run.
func LoadXML(st *store.Store, sourceDir string, year, workers int) (map[string]int64, error) {
	dirs, err := yearDirs(sourceDir, year)
	if err != nil {
		return nil, err
	}
	var archives []string
	for _, dir := range dirs {
		archives = append(archives, archivesIn(dir, "*.7z")...)
	}
	return loadArchives(st, sourceDir, archives, workers, processArchive)
}

func loadArchives(st *store.Store, sourceDir string, archives []string, workers int, process processFunc) (map[string]int64, error) {
	runID, err := st.StartLoad("inpi", "full", sourceDir)
	if err != nil {
		return nil, err
	}
	log.Printf("processing %d archives with %d workers", len(archives), workers)
	filings := dedupe(collect(archives, workers, process))

	counts, err := insertFilings(st, filings)
	if err != nil {
		st.FinishLoad(runID, store.StatusFailed, int64(len(filings)), 0, err.Error())
		return nil, err
	}
	if err := st.FinishLoad(runID, store.StatusSuccess, int64(len(filings)), counts["inpi_comptes_annuels"], ""); err != nil {
		return counts, err
	}
	return counts, nil
}

// dedupe drops filings whose synthetic id was already seen; deliveries
// occasionally repeat a document.
func dedupe(filings []Filing) []Filing {
	seen := make(map[string]bool, len(filings))
	kept := filings[:0]
	for _, f := range filings {
		if seen[f.Compte.ID] {
			continue
		}
		seen[f.Compte.ID] = true
		kept = append(kept, f)
	}
	return kept
}

var compteColumns = []string{
	"id", "siren", "date_cloture", "duree_exercice", "annee_cloture",
	"code_greffe", "num_depot", "date_depot", "type_comptes",
	"confidentialite", "_source_file",
}

// insertFilings replaces the three accounts tables with the given filings in
// three transactions, headers first.
func insertFilings(st *store.Store, filings []Filing) (map[string]int64, error) {
	counts := make(map[string]int64)

	comptes, err := st.Replace("inpi_comptes_annuels", compteColumns)
	if err != nil {
		return nil, err
	}
	for _, f := range filings {
		c := f.Compte
		var depot any
		if !c.DateDepot.IsZero() {
			depot = c.DateDepot.String()
		}
		err := comptes.Add(c.ID, c.Siren, c.DateCloture.String(), zeroNull(c.DureeExercice),
			c.AnneeCloture, c.CodeGreffe, c.NumDepot, depot, c.TypeComptes,
			c.Confidentialite, c.SourceFile)
		if err != nil {
			comptes.Rollback()
			return nil, err
		}
	}
	counts["inpi_comptes_annuels"] = comptes.Inserted()
	if err := comptes.Commit(); err != nil {
		return nil, err
	}

	n, err := insertStatements(st, "inpi_bilan", bilanFields, filings, func(f Filing) (string, map[string]any) {
		if f.Bilan == nil {
			return "", nil
		}
		return f.Bilan.CompteAnnuelID, decimals(f.Bilan.Postes)
	})
	if err != nil {
		return nil, err
	}
	counts["inpi_bilan"] = n

	n, err = insertStatements(st, "inpi_compte_resultat", resultatFields, filings, func(f Filing) (string, map[string]any) {
		if f.Resultat == nil {
			return "", nil
		}
		return f.Resultat.CompteAnnuelID, decimals(f.Resultat.Postes)
	})
	if err != nil {
		return nil, err
	}
	counts["inpi_compte_resultat"] = n
	return counts, nil
}

func insertStatements(st *store.Store, table string, fields []field, filings []Filing,
	get func(Filing) (string, map[string]any)) (int64, error) {

	columns := []string{"compte_annuel_id", "siren", "annee_cloture"}
	for _, f := range fields {
		columns = append(columns, f.column)
	}
	replace, err := st.Replace(table, columns)
	if err != nil {
		return 0, err
	}
	for _, f := range filings {
		id, postes := get(f)
		if id == "" {
			continue // a filing with no relevant codes has no row here
		}
		values := []any{id, f.Compte.Siren, f.Compte.AnneeCloture}
		for _, fl := range fields {
			values = append(values, postes[fl.column])
		}
		if err := replace.Add(values...); err != nil {
			replace.Rollback()
			return 0, err
		}
	}
	n := replace.Inserted()
	return n, replace.Commit()
}

// decimals converts posted amounts into driver values; a column absent from
// the map stays NULL through the map's zero lookup.
func decimals(postes map[string]decimal.Decimal) map[string]any {
	values := make(map[string]any, len(postes))
	for col, v := range postes {
		values[col] = v.String()
	}
	return values
}

func zeroNull(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
