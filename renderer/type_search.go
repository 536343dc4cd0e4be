package renderer

import "github.com/etnz/registre"

// SearchReport holds a company search and its matches.
type SearchReport struct {
	Query   string
	Results []Company
}

// Company is one search match, enriched with the latest closed financial
// year when the registry holds one. Monetary fields are nil when no filing
// is on record.
type Company struct {
	Siren           string
	Denomination    string
	FormeJuridique  string
	Ville           string
	Departement     string
	AnneeCloture    int64
	ChiffreAffaires *registre.Money
	ResultatNet     *registre.Money
}
