package inpi

import (
	"archive/zip"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/registre"
	"github.com/etnz/registre/store"
	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.InitSchema(false); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestLoadArchives(t *testing.T) {
	st := openTestStore(t)

	withStatements := fakeFiling("552100554", 2023, "a.7z")
	withStatements.Bilan = &registre.Bilan{
		CompteAnnuelID: withStatements.Compte.ID,
		Siren:          "552100554",
		AnneeCloture:   2023,
		Postes:         map[string]decimal.Decimal{"total_actif": decimal.New(1000000, -2)},
	}
	withStatements.Resultat = &registre.CompteResultat{
		CompteAnnuelID: withStatements.Compte.ID,
		Siren:          "552100554",
		AnneeCloture:   2023,
		Postes:         map[string]decimal.Decimal{"chiffre_affaires": decimal.New(12345600, -2)},
	}
	headerOnly := fakeFiling("123456789", 2023, "a.7z")

	process := func(archive string) ([]Filing, error) {
		return []Filing{withStatements, headerOnly}, nil
	}
	counts, err := loadArchives(st, "src", []string{"a.7z"}, 1, process)
	if err != nil {
		t.Fatalf("loadArchives() error = %v", err)
	}
	if counts["inpi_comptes_annuels"] != 2 {
		t.Errorf("comptes = %d, want 2", counts["inpi_comptes_annuels"])
	}
	// the filing without codes inserts no statement rows
	if counts["inpi_bilan"] != 1 || counts["inpi_compte_resultat"] != 1 {
		t.Errorf("statements = %d/%d, want 1/1", counts["inpi_bilan"], counts["inpi_compte_resultat"])
	}

	var ca string
	err = st.QueryRow(`SELECT chiffre_affaires FROM inpi_compte_resultat WHERE siren = '552100554'`).Scan(&ca)
	if err != nil {
		t.Fatal(err)
	}
	if ca != "123456" {
		t.Errorf("chiffre_affaires = %q, want 123456", ca)
	}

	var status string
	st.QueryRow(`SELECT status FROM etl_loads WHERE source = 'inpi'`).Scan(&status)
	if status != store.StatusSuccess {
		t.Errorf("audit status = %q", status)
	}
}

func TestLoadArchivesIsFullReplace(t *testing.T) {
	st := openTestStore(t)
	process := func(archive string) ([]Filing, error) {
		return []Filing{fakeFiling("552100554", 2023, "a.7z")}, nil
	}
	for i := 0; i < 2; i++ {
		if _, err := loadArchives(st, "src", []string{"a.7z"}, 1, process); err != nil {
			t.Fatal(err)
		}
	}
	var n int64
	st.QueryRow(`SELECT COUNT(*) FROM inpi_comptes_annuels`).Scan(&n)
	if n != 1 {
		t.Errorf("got %d headers after two loads, want 1", n)
	}
}

func TestLoadXMLMissingSourceDir(t *testing.T) {
	st := openTestStore(t)
	if _, err := LoadXML(st, filepath.Join(t.TempDir(), "absent"), 0, 1); err == nil {
		t.Fatal("LoadXML() expected an error for a missing source dir")
	}
}

func TestLoadJSONArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `{
	  "identite": {
	    "siren": "552100554",
	    "date_cloture_exercice": "20230615",
	    "code_greffe": "7501"
	  },
	  "liasses": [
	    {"code": "218", "m1": "000000012345600"},
	    {"code": "310", "m1": "-000000005000"}
	  ]
	}`
	f, err := os.Create(filepath.Join(dir, "bilans_20230701.zip"))
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("bilan_552100554.json")
	w.Write([]byte(doc))
	zw.Close()
	f.Close()

	st := openTestStore(t)
	counts, err := LoadJSON(st, filepath.Dir(dir), 2023, 1)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if counts["inpi_comptes_annuels"] != 1 {
		t.Fatalf("comptes = %d, want 1", counts["inpi_comptes_annuels"])
	}
	var net string
	err = st.QueryRow(`SELECT resultat_net FROM inpi_compte_resultat WHERE siren = '552100554'`).Scan(&net)
	if err != nil {
		t.Fatal(err)
	}
	if net != "-50" {
		t.Errorf("resultat_net = %q, want -50", net)
	}
}

func TestWriteCSV(t *testing.T) {
	filing := fakeFiling("552100554", 2023, "a.7z")
	filing.Resultat = &registre.CompteResultat{
		CompteAnnuelID: filing.Compte.ID,
		Siren:          "552100554",
		AnneeCloture:   2023,
		Postes:         map[string]decimal.Decimal{"resultat_net": decimal.New(-5000, -2)},
	}
	path := filepath.Join(t.TempDir(), "inpi_comptes_2023.csv")
	if err := writeCSV(path, []Filing{filing}); err != nil {
		t.Fatalf("writeCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d csv rows, want header + 1", len(records))
	}
	header, row := records[0], records[1]
	if len(header) != len(row) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(row))
	}
	byName := make(map[string]string, len(header))
	for i, name := range header {
		byName[name] = row[i]
	}
	if byName["siren"] != "552100554" || byName["resultat_net"] != "-50" {
		t.Errorf("row = %v", byName)
	}
	if byName["total_actif"] != "" {
		t.Errorf("total_actif = %q, want empty for an absent poste", byName["total_actif"])
	}
}
