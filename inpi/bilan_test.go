package inpi

import (
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<bilans xmlns="fr:inpi:odrncs:bilansSaisisXML">
  <bilan>
    <identite>
      <siren>552100554</siren>
      <date_cloture_exercice>20230615</date_cloture_exercice>
      <date_depot>20231001</date_depot>
      <duree_exercice_n>12</duree_exercice_n>
      <code_greffe>7501</code_greffe>
      <code_confidentialite>0</code_confidentialite>
    </identite>
    <detail>
      <page numero="01">
        <liasse code="218" m1="000000012345600"/>
        <liasse code="FJ" m1="000000099999900"/>
        <liasse code="310" m1="-000000005000"/>
        <liasse code="110" m3="000000001000000"/>
        <liasse code="HI" m1="" m3="000000000050000"/>
        <liasse code="264" m1="not-a-number"/>
      </page>
    </detail>
  </bilan>
</bilans>`

func TestParseXML(t *testing.T) {
	filings, err := ParseXML(strings.NewReader(sampleXML), "bilans_saisis_20230701.7z")
	if err != nil {
		t.Fatalf("ParseXML() error = %v", err)
	}
	if len(filings) != 1 {
		t.Fatalf("got %d filings, want 1", len(filings))
	}
	f := filings[0]

	c := f.Compte
	if c.Siren != "552100554" {
		t.Errorf("Siren = %q", c.Siren)
	}
	if got := c.DateCloture.String(); got != "2023-06-15" {
		t.Errorf("DateCloture = %s, want 2023-06-15", got)
	}
	if c.AnneeCloture != 2023 {
		t.Errorf("AnneeCloture = %d, want 2023", c.AnneeCloture)
	}
	if c.TypeComptes != "C" {
		t.Errorf("TypeComptes = %q, want default C", c.TypeComptes)
	}
	if c.DureeExercice != 12 || c.CodeGreffe != "7501" {
		t.Errorf("header = %+v", c)
	}

	if f.Resultat == nil {
		t.Fatal("Resultat is nil")
	}
	postes := f.Resultat.Postes
	// numeric code 218 beats the alphabetic synonym FJ
	if got := postes["chiffre_affaires"].String(); got != "123456" {
		t.Errorf("chiffre_affaires = %s, want 123456", got)
	}
	if got := postes["resultat_net"].String(); got != "-50" {
		t.Errorf("resultat_net = %s, want -50", got)
	}
	// m1 empty falls back to m3
	if got := postes["resultat_exceptionnel"].String(); got != "500" {
		t.Errorf("resultat_exceptionnel = %s, want 500", got)
	}
	// an unparseable amount loses only itself
	if _, ok := postes["charges_personnel"]; ok {
		t.Error("charges_personnel resolved from an unparseable amount")
	}

	if f.Bilan == nil {
		t.Fatal("Bilan is nil")
	}
	if got := f.Bilan.Postes["total_actif"].String(); got != "10000" {
		t.Errorf("total_actif = %s, want 10000", got)
	}
}

func TestParseXMLSkipsInvalidBilans(t *testing.T) {
	testCases := []struct {
		name     string
		identite string
	}{
		{
			name:     "all-zero closing date",
			identite: "<siren>552100554</siren><date_cloture_exercice>00000000</date_cloture_exercice>",
		},
		{
			name:     "short siren",
			identite: "<siren>1234</siren><date_cloture_exercice>20230615</date_cloture_exercice>",
		},
		{
			name:     "missing siren",
			identite: "<date_cloture_exercice>20230615</date_cloture_exercice>",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `<bilans xmlns="fr:inpi:odrncs:bilansSaisisXML"><bilan><identite>` +
				tc.identite + `</identite></bilan></bilans>`
			filings, err := ParseXML(strings.NewReader(doc), "test.7z")
			if err != nil {
				t.Fatalf("ParseXML() error = %v", err)
			}
			if len(filings) != 0 {
				t.Errorf("got %d filings, want the bilan skipped", len(filings))
			}
		})
	}
}

func TestParseXMLIgnoresOtherNamespaces(t *testing.T) {
	doc := `<bilans xmlns="urn:something:else"><bilan><identite>
		<siren>552100554</siren><date_cloture_exercice>20230615</date_cloture_exercice>
		</identite></bilan></bilans>`
	filings, err := ParseXML(strings.NewReader(doc), "test.7z")
	if err != nil {
		t.Fatalf("ParseXML() error = %v", err)
	}
	if len(filings) != 0 {
		t.Errorf("got %d filings from a foreign namespace, want 0", len(filings))
	}
}

func TestParseXMLNoRelevantCodes(t *testing.T) {
	doc := `<bilans xmlns="fr:inpi:odrncs:bilansSaisisXML"><bilan><identite>
		<siren>552100554</siren><date_cloture_exercice>20230615</date_cloture_exercice>
		</identite><detail><page><liasse code="999" m1="000000000100"/></page></detail>
		</bilan></bilans>`
	filings, err := ParseXML(strings.NewReader(doc), "test.7z")
	if err != nil {
		t.Fatal(err)
	}
	if len(filings) != 1 {
		t.Fatalf("got %d filings, want 1", len(filings))
	}
	// no relevant code: the header survives, the statements produce no row
	if filings[0].Bilan != nil || filings[0].Resultat != nil {
		t.Errorf("expected nil statements, got %+v", filings[0])
	}
}

func TestParseYears(t *testing.T) {
	testCases := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "2020", want: []int{2020}},
		{in: "2021-2023", want: []int{2021, 2022, 2023}},
		{in: "2023-2021", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseYears(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseYears(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if len(got) != len(tc.want) {
				t.Fatalf("ParseYears(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("ParseYears(%q) = %v, want %v", tc.in, got, tc.want)
				}
			}
		})
	}
}
