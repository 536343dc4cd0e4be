package inpi

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/etnz/registre"
	"github.com/etnz/registre/date"
	"github.com/shopspring/decimal"
)

// Namespace of the bilans saisis XML deliveries.
const Namespace = "fr:inpi:odrncs:bilansSaisisXML"

// Filing is one parsed annual-accounts filing: the header plus the balance
// sheet and income statement when the filing carries relevant codes.
type Filing struct {
	Compte   registre.CompteAnnuel
	Bilan    *registre.Bilan
	Resultat *registre.CompteResultat
}

// field maps one schema column to its ordered liasse code aliases. The
// numeric code comes first, the alphabetic synonym second; the first code
// present in the filing wins.
type field struct {
	column string
	codes  []string
}

var bilanFields = []field{
	{"immobilisations_incorporelles", []string{"028", "AB"}},
	{"immobilisations_corporelles", []string{"040", "AN"}},
	{"immobilisations_financieres", []string{"044", "CU"}},
	{"actif_immobilise_net", []string{"050", "BJ"}},
	{"stocks", []string{"060", "BT"}},
	{"creances_clients", []string{"068", "BX"}},
	{"disponibilites", []string{"072", "CF"}},
	{"actif_circulant", []string{"080", "CJ"}},
	{"total_actif", []string{"110", "CO"}},
	{"capital_social", []string{"120", "DA"}},
	{"reserves", []string{"134", "DG"}},
	{"resultat_exercice", []string{"136", "DI"}},
	{"capitaux_propres", []string{"142", "DL"}},
	{"dettes", []string{"156", "EC"}},
	{"total_passif", []string{"180", "EE"}},
}

var resultatFields = []field{
	{"chiffre_affaires", []string{"218", "FJ", "FL"}},
	{"charges_personnel", []string{"264", "FY"}},
	{"resultat_exploitation", []string{"270", "GG"}},
	{"resultat_financier", []string{"290", "GV"}},
	{"resultat_exceptionnel", []string{"HI"}},
	{"resultat_net", []string{"310", "HN"}},
}

// xmlBilan mirrors one bilan element of the delivery.
type xmlBilan struct {
	Identite struct {
		Siren           string `xml:"siren"`
		DateCloture     string `xml:"date_cloture_exercice"`
		CodeTypeBilan   string `xml:"code_type_bilan"`
		DateDepot       string `xml:"date_depot"`
		NumDepot        string `xml:"num_depot"`
		DureeExercice   string `xml:"duree_exercice_n"`
		CodeGreffe      string `xml:"code_greffe"`
		Confidentialite string `xml:"code_confidentialite"`
	} `xml:"identite"`
	Detail struct {
		Pages []struct {
			Liasses []liasse `xml:"liasse"`
		} `xml:"page"`
	} `xml:"detail"`
}

type liasse struct {
	Code string `xml:"code,attr"`
	M1   string `xml:"m1,attr"`
	M3   string `xml:"m3,attr"`
}

// ParseXML reads every bilan element of one delivery document and returns the
// filings that pass validation. A bilan without a 9-digit siren or with an
// unusable closing date is skipped silently, matching the delivery quirks
// (the all-zero closing date marks withheld filings).
func ParseXML(r io.Reader, sourceFile string) ([]Filing, error) {
	dec := xml.NewDecoder(r)
	var filings []Filing
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return filings, nil
		}
		if err != nil {
			return filings, fmt.Errorf("xml error in %s: %w", sourceFile, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "bilan" || start.Name.Space != Namespace {
			continue
		}
		var b xmlBilan
		if err := dec.DecodeElement(&b, &start); err != nil {
			log.Printf("skipping malformed bilan in %s: %v", sourceFile, err)
			continue
		}
		if f, ok := b.filing(sourceFile); ok {
			filings = append(filings, f)
		}
	}
}

// filing validates the parsed bilan and resolves its liasse codes.
func (b *xmlBilan) filing(sourceFile string) (Filing, bool) {
	id := b.Identite
	if !registre.IsSiren(id.Siren) {
		return Filing{}, false
	}
	cloture, err := date.ParseCompact(id.DateCloture)
	if err != nil {
		return Filing{}, false
	}

	compte := registre.CompteAnnuel{
		ID:              registre.NewCompteAnnuelID(id.Siren, cloture, sourceFile),
		Siren:           id.Siren,
		DateCloture:     cloture,
		AnneeCloture:    cloture.Year(),
		CodeGreffe:      id.CodeGreffe,
		NumDepot:        id.NumDepot,
		TypeComptes:     id.CodeTypeBilan,
		Confidentialite: id.Confidentialite,
		SourceFile:      sourceFile,
	}
	if compte.TypeComptes == "" {
		compte.TypeComptes = "C" // complete accounts unless stated otherwise
	}
	if depot, err := date.ParseCompact(id.DateDepot); err == nil {
		compte.DateDepot = depot
	}
	if n, err := strconv.Atoi(id.DureeExercice); err == nil {
		compte.DureeExercice = n
	}

	values := liasseValues(b.liasses())
	f := Filing{Compte: compte}
	if postes := resolve(bilanFields, values); len(postes) > 0 {
		f.Bilan = &registre.Bilan{
			CompteAnnuelID: compte.ID,
			Siren:          compte.Siren,
			AnneeCloture:   compte.AnneeCloture,
			Postes:         postes,
		}
	}
	if postes := resolve(resultatFields, values); len(postes) > 0 {
		f.Resultat = &registre.CompteResultat{
			CompteAnnuelID: compte.ID,
			Siren:          compte.Siren,
			AnneeCloture:   compte.AnneeCloture,
			Postes:         postes,
		}
	}
	return f, true
}

func (b *xmlBilan) liasses() []liasse {
	var all []liasse
	for _, page := range b.Detail.Pages {
		all = append(all, page.Liasses...)
	}
	return all
}

// liasseValues decodes the liasse amounts: value from m1 falling back to m3,
// fixed-width cents with an optional leading '-'. A value that does not
// parse is absent, the rest of the filing is unaffected.
func liasseValues(liasses []liasse) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal, len(liasses))
	for _, l := range liasses {
		raw := l.M1
		if raw == "" {
			raw = l.M3
		}
		if l.Code == "" || raw == "" {
			continue
		}
		m, err := registre.ParseCents(raw)
		if err != nil {
			continue
		}
		values[l.Code] = m.Decimal()
	}
	return values
}

// resolve walks the alias table in order and keeps, per column, the first
// code present in the filing. Deterministic: the same filing always resolves
// to the same values.
func resolve(fields []field, values map[string]decimal.Decimal) map[string]decimal.Decimal {
	postes := make(map[string]decimal.Decimal)
	for _, f := range fields {
		for _, code := range f.codes {
			if v, ok := values[code]; ok {
				postes[f.column] = v
				break
			}
		}
	}
	return postes
}
