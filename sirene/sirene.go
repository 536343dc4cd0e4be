// Package sirene extracts the INSEE company registry (SIRENE) stock files
// into the analytical store.
//
// SIRENE contains the official French company registry: legal units (around
// 12M companies) and establishments (around 30M locations). The stock files
// are zip archives of one large CSV each, refreshed monthly, and carry one
// row per historical period so duplicate keys are expected.
package sirene

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/registre/fetch"
	"github.com/etnz/registre/store"
)

const baseURL = "https://files.data.gouv.fr/insee-sirene/"

// cast names the lenient conversion applied to a CSV value. A value that
// does not convert becomes NULL, it never aborts the load.
type cast int

const (
	asText cast = iota
	asInt
	asDate
)

type column struct {
	src  string // CSV header name
	dst  string // schema column name
	cast cast
}

type dataset struct {
	name    string
	archive string
	table   string
	columns []column
}

// Which selects the stock files to process.
type Which string

const (
	All            Which = "all"
	Unites         Which = "unites"
	Etablissements Which = "etablissements"
)

var unites = dataset{
	name:    "sirene_unites_legales",
	archive: "StockUniteLegale_utf8.zip",
	table:   "sirene_unites_legales",
	columns: []column{
		{"siren", "siren", asText},
		{"statutDiffusionUniteLegale", "statut_diffusion", asText},
		{"dateCreationUniteLegale", "date_creation", asDate},
		{"sigleUniteLegale", "sigle", asText},
		{"denominationUniteLegale", "denomination", asText},
		{"denominationUsuelle1UniteLegale", "denomination_usuelle_1", asText},
		{"denominationUsuelle2UniteLegale", "denomination_usuelle_2", asText},
		{"denominationUsuelle3UniteLegale", "denomination_usuelle_3", asText},
		{"prenom1UniteLegale", "prenom", asText},
		{"nomUniteLegale", "nom", asText},
		{"categorieJuridiqueUniteLegale", "categorie_juridique", asText},
		{"activitePrincipaleUniteLegale", "activite_principale", asText},
		{"nomenclatureActivitePrincipaleUniteLegale", "nomenclature_activite", asText},
		{"trancheEffectifsUniteLegale", "tranche_effectifs", asText},
		{"anneeEffectifsUniteLegale", "annee_effectifs", asInt},
		{"caractereEmployeurUniteLegale", "caractere_employeur", asText},
		{"categorieEntreprise", "categorie_entreprise", asText},
		{"anneeCategorieEntreprise", "annee_categorie_entreprise", asInt},
		{"economieSocialeSolidaireUniteLegale", "economie_sociale_solidaire", asText},
		{"societeMissionUniteLegale", "societe_mission", asText},
		{"etatAdministratifUniteLegale", "etat_administratif", asText},
		{"dateDernierTraitementUniteLegale", "date_derniere_mise_a_jour", asDate},
	},
}

var etablissements = dataset{
	name:    "sirene_etablissements",
	archive: "StockEtablissement_utf8.zip",
	table:   "sirene_etablissements",
	columns: []column{
		{"siret", "siret", asText},
		{"siren", "siren", asText},
		{"nic", "nic", asText},
		{"statutDiffusionEtablissement", "statut_diffusion", asText},
		{"dateCreationEtablissement", "date_creation", asDate},
		{"denominationUsuelleEtablissement", "denomination_usuelle", asText},
		{"enseigne1Etablissement", "enseigne_1", asText},
		{"enseigne2Etablissement", "enseigne_2", asText},
		{"enseigne3Etablissement", "enseigne_3", asText},
		{"activitePrincipaleEtablissement", "activite_principale", asText},
		{"nomenclatureActivitePrincipaleEtablissement", "nomenclature_activite", asText},
		{"activitePrincipaleRegistreMetiersEtablissement", "activite_principale_registre_metiers", asText},
		{"etablissementSiege", "etablissement_siege", asText},
		{"trancheEffectifsEtablissement", "tranche_effectifs", asText},
		{"anneeEffectifsEtablissement", "annee_effectifs", asInt},
		{"caractereEmployeurEtablissement", "caractere_employeur", asText},
		{"complementAdresseEtablissement", "complement_adresse", asText},
		{"numeroVoieEtablissement", "numero_voie", asText},
		{"indiceRepetitionEtablissement", "indice_repetition", asText},
		{"typeVoieEtablissement", "type_voie", asText},
		{"libelleVoieEtablissement", "libelle_voie", asText},
		{"codePostalEtablissement", "code_postal", asText},
		{"libelleCommuneEtablissement", "libelle_commune", asText},
		{"libelleCommuneEtrangerEtablissement", "libelle_commune_etranger", asText},
		{"codeCommuneEtablissement", "code_commune", asText},
		{"codeCedexEtablissement", "code_cedex", asText},
		{"libelleCedexEtablissement", "libelle_cedex", asText},
		{"codePaysEtrangerEtablissement", "code_pays_etranger", asText},
		{"libellePaysEtrangerEtablissement", "libelle_pays_etranger", asText},
		{"etatAdministratifEtablissement", "etat_administratif", asText},
		{"dateDernierTraitementEtablissement", "date_derniere_mise_a_jour", asDate},
	},
}

func selected(which Which) []dataset {
	switch which {
	case Unites:
		return []dataset{unites}
	case Etablissements:
		return []dataset{etablissements}
	default:
		return []dataset{unites, etablissements}
	}
}

// Download fetches the selected stock archives into outDir, resuming partial
// files. It returns the local paths.
func Download(ctx context.Context, d *fetch.Downloader, outDir string, which Which) ([]string, error) {
	var paths []string
	for _, ds := range selected(which) {
		dest := filepath.Join(outDir, ds.archive)
		if _, err := d.Download(ctx, baseURL+ds.archive, dest); err != nil {
			return paths, err
		}
		log.Printf("downloaded %s", dest)
		paths = append(paths, dest)
	}
	return paths, nil
}

// Load streams the CSV out of each selected archive into its table as a full
// replace. It returns row counts per table. A missing archive is an error so
// the caller can tell the operator to download first.
func Load(st *store.Store, sourceDir string, which Which) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, ds := range selected(which) {
		n, err := loadDataset(st, filepath.Join(sourceDir, ds.archive), ds)
		if err != nil {
			return counts, err
		}
		counts[ds.table] = n
	}
	return counts, nil
}

func loadDataset(st *store.Store, archive string, ds dataset) (int64, error) {
	runID, err := st.StartLoad(ds.name, "full", filepath.Base(archive))
	if err != nil {
		return 0, err
	}
	n, err := replaceFromArchive(st, archive, ds)
	if err != nil {
		st.FinishLoad(runID, store.StatusFailed, n, 0, err.Error())
		return 0, err
	}
	if err := st.FinishLoad(runID, store.StatusSuccess, n, n, ""); err != nil {
		return n, err
	}
	log.Printf("loaded %d rows into %s", n, ds.table)
	return n, nil
}

func replaceFromArchive(st *store.Store, archive string, ds dataset) (int64, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("cannot open %s: %w", archive, err)
	}
	defer zr.Close()

	var csvFile io.ReadCloser
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".csv") {
			csvFile, err = f.Open()
			if err != nil {
				return 0, fmt.Errorf("cannot open %s in %s: %w", f.Name, archive, err)
			}
			break
		}
	}
	if csvFile == nil {
		return 0, fmt.Errorf("no csv file found in %s", archive)
	}
	defer csvFile.Close()

	reader := csv.NewReader(csvFile)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("cannot read header of %s: %w", archive, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	columns := make([]string, 0, len(ds.columns)+2)
	for _, c := range ds.columns {
		columns = append(columns, c.dst)
	}
	if ds.table == "sirene_etablissements" {
		columns = append(columns, "departement")
	}
	columns = append(columns, "_source_file")

	replace, err := st.Replace(ds.table, columns)
	if err != nil {
		return 0, err
	}
	sourceFile := filepath.Base(archive)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			replace.Rollback()
			return 0, fmt.Errorf("csv read error in %s: %w", archive, err)
		}
		values := make([]any, 0, len(columns))
		var codePostal string
		for _, c := range ds.columns {
			var raw string
			if i, ok := index[c.src]; ok && i < len(record) {
				raw = record[i]
			}
			if c.dst == "code_postal" {
				codePostal = raw
			}
			values = append(values, convert(raw, c.cast))
		}
		if ds.table == "sirene_etablissements" {
			values = append(values, departement(codePostal))
		}
		values = append(values, sourceFile)
		if err := replace.Add(values...); err != nil {
			replace.Rollback()
			return 0, err
		}
	}
	n := replace.Inserted()
	return n, replace.Commit()
}

// convert applies the lenient cast: an empty or unconvertible value is NULL.
func convert(raw string, c cast) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch c {
	case asInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil
		}
		return n
	case asDate:
		for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05"} {
			if _, err := time.Parse(layout, raw); err == nil {
				return raw
			}
		}
		return nil
	default:
		return raw
	}
}

// departement derives the department from the first two digits of the postal
// code, the registry does not carry it directly.
func departement(codePostal string) any {
	if len(codePostal) < 2 {
		return nil
	}
	return codePostal[:2]
}
