package registre

import (
	"encoding/json"

	"github.com/etnz/registre/date"
	"github.com/shopspring/decimal"
)

// CompteAnnuel is the header of one annual-accounts filing. Its ID is
// synthetic (siren, closing date and source file) so the same filing seen in
// two loads maps to the same row.
type CompteAnnuel struct {
	ID              string
	Siren           string
	DateCloture     date.Date
	DureeExercice   int
	AnneeCloture    int
	CodeGreffe      string
	NumDepot        string
	DateDepot       date.Date // zero when absent
	TypeComptes     string
	Confidentialite string
	SourceFile      string
}

// NewCompteAnnuelID builds the synthetic filing id.
func NewCompteAnnuelID(siren string, cloture date.Date, sourceFile string) string {
	return siren + "|" + cloture.String() + "|" + sourceFile
}

// Bilan is the balance sheet of a filing. Postes maps schema column names to
// exact amounts; a field absent from the filing is absent from the map, and a
// filing with an empty map produces no row at all.
type Bilan struct {
	CompteAnnuelID string
	Siren          string
	AnneeCloture   int
	Postes         map[string]decimal.Decimal
}

// CompteResultat is the income statement of a filing, same shape as Bilan.
type CompteResultat struct {
	CompteAnnuelID string
	Siren          string
	AnneeCloture   int
	Postes         map[string]decimal.Decimal
}

// Annonce is one legal announcement. Promoted fields map to columns; the
// rest of the raw record is kept verbatim in Details.
type Annonce struct {
	ID                  string
	Siren               string // "" when no valid SIREN could be extracted
	NumeroAnnonce       string
	DateParution        string
	NumeroParution      string
	TypeBulletin        string // "A", "B" or "C"
	Famille             string
	Nature              string
	Denomination        string
	FormeJuridique      string
	Administration      string
	Adresse             string
	CodePostal          string
	Ville               string
	Activite            string
	Details             json.RawMessage
	TypeProcedure       string
	DateJugement        string
	Tribunal            string
	DateClotureExercice string
	TypeDepot           string
	ContenuAnnonce      string
	SourceFile          string
}
