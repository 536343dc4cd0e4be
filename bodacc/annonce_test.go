package bodacc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/registre/store"
)

func TestBulletinType(t *testing.T) {
	testCases := []struct {
		name    string
		id      string
		famille string
		want    string
	}{
		{"id BODA", "A202300123-BODA", "", "A"},
		{"id BODB", "B202300123-bodb", "", "B"},
		{"id BODC", "BODC-42", "", "C"},
		{"famille creation", "X1", "Création d'entreprise", "A"},
		{"famille radiation", "X1", "radiation", "B"},
		{"famille depot", "X1", "depot des comptes", "C"},
		{"default", "X1", "autre", "A"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := map[string]any{"familleavis": tc.famille}
			if got := bulletinType(tc.id, fields); got != tc.want {
				t.Errorf("bulletinType(%q, %q) = %q, want %q", tc.id, tc.famille, got, tc.want)
			}
		})
	}
}

func TestExtractSirenFields(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{"direct siren", map[string]any{"siren": "552100554"}, "552100554"},
		{"immatriculation", map[string]any{"numeroImmatriculation": "552 100 554"}, "552100554"},
		{"rcs text", map[string]any{"registre": "123 456 789 RCS Paris"}, "123456789"},
		{"bad siren ignored", map[string]any{"siren": "12345"}, ""},
		{"nothing", map[string]any{}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractSiren(tc.fields); got != tc.want {
				t.Errorf("extractSiren() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseRecordNested(t *testing.T) {
	raw := `{
	  "record": {
	    "id": "A202300123-BODA",
	    "fields": {
	      "id": "A202300123-BODA",
	      "dateparution": "2023-06-15",
	      "numeroannonce": "123",
	      "registre": "552 100 554 RCS Paris",
	      "familleavis": "creation",
	      "denomination": "ACME SA",
	      "ville": "Paris",
	      "administration": "Dupont Jean (gérant)",
	      "depot": {"typeDepot": "Comptes annuels et rapports", "dateCloture": "2022-12-31"},
	      "listepersonnes": {"personne": {"nom": "Dupont"}}
	    }
	  }
	}`
	var record any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		t.Fatal(err)
	}
	a, ok := parseRecord(record, "bodacc_x.json")
	if !ok {
		t.Fatal("parseRecord() rejected a valid record")
	}
	if a.ID != "A202300123-BODA" || a.Siren != "552100554" || a.TypeBulletin != "A" {
		t.Errorf("parsed %+v", a)
	}
	if a.Denomination != "ACME SA" || a.DateParution != "2023-06-15" {
		t.Errorf("parsed %+v", a)
	}
	if a.Administration != "Dupont Jean (gérant)" {
		t.Errorf("Administration = %q", a.Administration)
	}
	if a.TypeDepot != "Comptes annuels et rapports" {
		t.Errorf("TypeDepot = %q", a.TypeDepot)
	}
	// details keep the unpromoted payload
	var det map[string]any
	if err := json.Unmarshal(a.Details, &det); err != nil {
		t.Fatalf("details are not valid JSON: %v", err)
	}
	if _, ok := det["listepersonnes"]; !ok {
		t.Error("details lost listepersonnes")
	}
	if _, ok := det["dateparution"]; ok {
		t.Error("details contain a promoted field")
	}
}

func TestDepotType(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{"nested object", map[string]any{"depot": map[string]any{"typeDepot": "Comptes annuels et rapports"}}, "Comptes annuels et rapports"},
		{"json string", map[string]any{"depot": `{"typeDepot": "Comptes consolidés"}`}, "Comptes consolidés"},
		{"lowercase key", map[string]any{"depot": map[string]any{"typedepot": "Comptes annuels"}}, "Comptes annuels"},
		{"flat fallback", map[string]any{"typedepot": "Comptes annuels"}, "Comptes annuels"},
		{"garbled string", map[string]any{"depot": "not json"}, ""},
		{"no depot", map[string]any{}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := depotType(tc.fields); got != tc.want {
				t.Errorf("depotType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseRecordFlat(t *testing.T) {
	record := map[string]any{"id": "BODB-1", "denomination": "DUPONT"}
	a, ok := parseRecord(record, "f.json")
	if !ok {
		t.Fatal("parseRecord() rejected a flat record")
	}
	if a.ID != "BODB-1" || a.TypeBulletin != "B" {
		t.Errorf("parsed %+v", a)
	}
}

func TestParseRecordNoID(t *testing.T) {
	record := map[string]any{"denomination": "NOBODY"}
	if _, ok := parseRecord(record, "f.json"); ok {
		t.Fatal("parseRecord() accepted a record without id")
	}
}

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

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	records := `[
	  {"record": {"id": "BODA-1", "fields": {"id": "BODA-1", "siren": "552100554", "dateparution": "2023-06-15", "depot": {"typeDepot": "Comptes annuels"}}}},
	  {"record": {"id": "BODA-2", "fields": {"id": "BODA-2", "registre": "rien"}}},
	  {"record": {"fields": {"denomination": "sans id"}}}
	]`
	if err := os.WriteFile(filepath.Join(dir, "bodacc_1.json"), []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}

	st := openTestStore(t)
	n, err := Load(st, dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Load() = %d, want 2 (record without id skipped)", n)
	}

	var siren, typeDepot string
	if err := st.QueryRow(`SELECT siren, type_depot FROM bodacc_annonces WHERE id = 'BODA-1'`).Scan(&siren, &typeDepot); err != nil {
		t.Fatal(err)
	}
	if siren != "552100554" {
		t.Errorf("siren = %q", siren)
	}
	if typeDepot != "Comptes annuels" {
		t.Errorf("type_depot = %q", typeDepot)
	}
	// no extractable siren lands as NULL, the row is still kept
	var nulls int64
	st.QueryRow(`SELECT COUNT(*) FROM bodacc_annonces WHERE siren IS NULL`).Scan(&nulls)
	if nulls != 1 {
		t.Errorf("%d rows with NULL siren, want 1", nulls)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	records := `[{"record": {"id": "BODA-1", "fields": {"id": "BODA-1", "siren": "552100554"}}}]`
	if err := os.WriteFile(filepath.Join(dir, "bodacc_1.json"), []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}
	st := openTestStore(t)
	for i := 0; i < 2; i++ {
		if _, err := Load(st, dir); err != nil {
			t.Fatal(err)
		}
	}
	var n int64
	st.QueryRow(`SELECT COUNT(*) FROM bodacc_annonces`).Scan(&n)
	if n != 1 {
		t.Errorf("got %d rows after two loads, want 1", n)
	}
}

func TestLoadMissingDir(t *testing.T) {
	st := openTestStore(t)
	if _, err := Load(st, t.TempDir()); err == nil {
		t.Fatal("Load() expected an error when no file is present")
	}
}
