package store

import "fmt"

// dropViews and dropTables list every known relation, views first so
// dependent objects go before their tables. SQLite refuses DROP VIEW on a
// table even with IF EXISTS, so the two kinds drop with their own statement.
var dropViews = []string{
	"v_company_overview",
}

var dropTables = []string{
	"bodacc_annonces",
	"inpi_compte_resultat",
	"inpi_bilan",
	"inpi_comptes_annuels",
	"sirene_etablissements",
	"sirene_unites_legales",
	"etl_loads",
	"etl_downloads",
}

// DataTables lists the tables holding registry data, in load order.
var DataTables = []string{
	"sirene_unites_legales",
	"sirene_etablissements",
	"inpi_comptes_annuels",
	"inpi_bilan",
	"inpi_compte_resultat",
	"bodacc_annonces",
}

// Legal units. No PRIMARY KEY: the source snapshot carries one row per
// historical period, duplicate sirens are expected.
const ddlUnitesLegales = `
CREATE TABLE IF NOT EXISTS sirene_unites_legales (
	siren TEXT NOT NULL,
	statut_diffusion TEXT,
	date_creation TEXT,
	sigle TEXT,
	denomination TEXT,
	denomination_usuelle_1 TEXT,
	denomination_usuelle_2 TEXT,
	denomination_usuelle_3 TEXT,
	prenom TEXT,
	nom TEXT,
	categorie_juridique TEXT,
	activite_principale TEXT,
	nomenclature_activite TEXT,
	tranche_effectifs TEXT,
	annee_effectifs INTEGER,
	caractere_employeur TEXT,
	categorie_entreprise TEXT,
	annee_categorie_entreprise INTEGER,
	economie_sociale_solidaire TEXT,
	societe_mission TEXT,
	etat_administratif TEXT,
	date_cessation TEXT,
	date_derniere_mise_a_jour TEXT,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP,
	_source_file TEXT
)`

// Establishments. Same historical duplication, no PRIMARY KEY.
const ddlEtablissements = `
CREATE TABLE IF NOT EXISTS sirene_etablissements (
	siret TEXT NOT NULL,
	siren TEXT NOT NULL,
	nic TEXT NOT NULL,
	statut_diffusion TEXT,
	date_creation TEXT,
	denomination_usuelle TEXT,
	enseigne_1 TEXT,
	enseigne_2 TEXT,
	enseigne_3 TEXT,
	activite_principale TEXT,
	nomenclature_activite TEXT,
	activite_principale_registre_metiers TEXT,
	etablissement_siege TEXT,
	tranche_effectifs TEXT,
	annee_effectifs INTEGER,
	caractere_employeur TEXT,
	complement_adresse TEXT,
	numero_voie TEXT,
	indice_repetition TEXT,
	type_voie TEXT,
	libelle_voie TEXT,
	code_postal TEXT,
	libelle_commune TEXT,
	libelle_commune_etranger TEXT,
	code_commune TEXT,
	code_cedex TEXT,
	libelle_cedex TEXT,
	code_pays_etranger TEXT,
	libelle_pays_etranger TEXT,
	departement TEXT,
	region TEXT,
	etat_administratif TEXT,
	date_cessation TEXT,
	date_derniere_mise_a_jour TEXT,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP,
	_source_file TEXT
)`

const ddlComptesAnnuels = `
CREATE TABLE IF NOT EXISTS inpi_comptes_annuels (
	id TEXT PRIMARY KEY,
	siren TEXT NOT NULL,
	date_cloture TEXT,
	duree_exercice INTEGER,
	annee_cloture INTEGER,
	code_greffe TEXT,
	num_depot TEXT,
	date_depot TEXT,
	type_comptes TEXT,
	confidentialite TEXT,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP,
	_source_file TEXT
)`

const ddlBilan = `
CREATE TABLE IF NOT EXISTS inpi_bilan (
	id INTEGER PRIMARY KEY,
	compte_annuel_id TEXT NOT NULL,
	siren TEXT NOT NULL,
	annee_cloture INTEGER,
	immobilisations_incorporelles NUMERIC,
	immobilisations_corporelles NUMERIC,
	immobilisations_financieres NUMERIC,
	actif_immobilise_brut NUMERIC,
	actif_immobilise_net NUMERIC,
	stocks NUMERIC,
	creances_clients NUMERIC,
	autres_creances NUMERIC,
	valeurs_mobilieres_placement NUMERIC,
	disponibilites NUMERIC,
	actif_circulant NUMERIC,
	charges_constatees_avance NUMERIC,
	total_actif NUMERIC,
	capital_social NUMERIC,
	primes_emission NUMERIC,
	reserves NUMERIC,
	report_a_nouveau NUMERIC,
	resultat_exercice NUMERIC,
	subventions_investissement NUMERIC,
	provisions_reglementees NUMERIC,
	capitaux_propres NUMERIC,
	provisions_risques_charges NUMERIC,
	emprunts_dettes_financieres NUMERIC,
	avances_acomptes_recus NUMERIC,
	dettes_fournisseurs NUMERIC,
	dettes_fiscales_sociales NUMERIC,
	autres_dettes NUMERIC,
	dettes NUMERIC,
	produits_constates_avance NUMERIC,
	total_passif NUMERIC,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP
)`

const ddlCompteResultat = `
CREATE TABLE IF NOT EXISTS inpi_compte_resultat (
	id INTEGER PRIMARY KEY,
	compte_annuel_id TEXT NOT NULL,
	siren TEXT NOT NULL,
	annee_cloture INTEGER,
	ventes_marchandises NUMERIC,
	production_vendue_biens NUMERIC,
	production_vendue_services NUMERIC,
	chiffre_affaires NUMERIC,
	production_stockee NUMERIC,
	production_immobilisee NUMERIC,
	subventions_exploitation NUMERIC,
	reprises_provisions NUMERIC,
	autres_produits NUMERIC,
	total_produits_exploitation NUMERIC,
	achats_marchandises NUMERIC,
	variation_stock_marchandises NUMERIC,
	achats_matieres_premieres NUMERIC,
	variation_stock_matieres NUMERIC,
	autres_achats_charges_externes NUMERIC,
	impots_taxes NUMERIC,
	salaires_traitements NUMERIC,
	charges_sociales NUMERIC,
	charges_personnel NUMERIC,
	dotations_amortissements NUMERIC,
	dotations_provisions NUMERIC,
	autres_charges NUMERIC,
	total_charges_exploitation NUMERIC,
	resultat_exploitation NUMERIC,
	produits_financiers NUMERIC,
	charges_financieres NUMERIC,
	resultat_financier NUMERIC,
	resultat_courant_avant_impot NUMERIC,
	produits_exceptionnels NUMERIC,
	charges_exceptionnelles NUMERIC,
	resultat_exceptionnel NUMERIC,
	participation_salaries NUMERIC,
	impot_benefice NUMERIC,
	resultat_net NUMERIC,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP
)`

const ddlAnnonces = `
CREATE TABLE IF NOT EXISTS bodacc_annonces (
	id TEXT PRIMARY KEY,
	siren TEXT,
	numero_annonce TEXT,
	date_parution TEXT,
	numero_parution TEXT,
	type_bulletin TEXT,
	famille TEXT,
	nature TEXT,
	denomination TEXT,
	forme_juridique TEXT,
	administration TEXT,
	adresse TEXT,
	code_postal TEXT,
	ville TEXT,
	activite TEXT,
	details TEXT,
	type_procedure TEXT,
	date_jugement TEXT,
	tribunal TEXT,
	date_cloture_exercice TEXT,
	type_depot TEXT,
	contenu_annonce TEXT,
	_loaded_at TEXT DEFAULT CURRENT_TIMESTAMP,
	_source_file TEXT
)`

const ddlLoads = `
CREATE TABLE IF NOT EXISTS etl_loads (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	load_type TEXT NOT NULL,
	started_at TEXT NOT NULL,
	completed_at TEXT,
	status TEXT DEFAULT 'running',
	rows_processed INTEGER DEFAULT 0,
	rows_inserted INTEGER DEFAULT 0,
	rows_updated INTEGER DEFAULT 0,
	error_message TEXT,
	source_file TEXT
)`

const ddlDownloads = `
CREATE TABLE IF NOT EXISTS etl_downloads (
	id INTEGER PRIMARY KEY,
	source TEXT NOT NULL,
	url TEXT NOT NULL,
	filename TEXT NOT NULL,
	downloaded_at TEXT NOT NULL,
	file_size_bytes INTEGER,
	checksum TEXT,
	status TEXT DEFAULT 'pending'
)`

// Latest registry row joined with the most recent financial statements per
// siren. Top-1 per partition, not max aggregates: the financial columns of a
// given row all come from the same statement.
const ddlOverview = `
CREATE VIEW IF NOT EXISTS v_company_overview AS
SELECT
	ul.siren,
	ul.denomination,
	ul.sigle,
	ul.activite_principale AS naf_code,
	ul.categorie_juridique,
	ul.tranche_effectifs,
	ul.caractere_employeur,
	ul.etat_administratif,
	ul.date_creation,
	ul.date_cessation,
	e.siret AS siret_siege,
	e.code_postal,
	e.libelle_commune AS commune,
	e.departement,
	cr.chiffre_affaires,
	cr.resultat_net,
	cr.resultat_exploitation,
	cr.charges_personnel,
	cr.annee_cloture AS annee_financiere,
	b.total_actif,
	b.capitaux_propres,
	b.dettes,
	b.disponibilites
FROM sirene_unites_legales ul
LEFT JOIN sirene_etablissements e
	ON ul.siren = e.siren AND e.etablissement_siege = 'true'
LEFT JOIN (
	SELECT *, row_number() OVER (PARTITION BY siren ORDER BY annee_cloture DESC) AS rn
	FROM inpi_compte_resultat
) cr ON ul.siren = cr.siren AND cr.rn = 1
LEFT JOIN (
	SELECT *, row_number() OVER (PARTITION BY siren ORDER BY annee_cloture DESC) AS rn
	FROM inpi_bilan
) b ON ul.siren = b.siren AND b.rn = 1`

var indexes = []struct{ name, table, column string }{
	{"idx_ul_activite", "sirene_unites_legales", "activite_principale"},
	{"idx_ul_etat", "sirene_unites_legales", "etat_administratif"},
	{"idx_etab_siren", "sirene_etablissements", "siren"},
	{"idx_etab_departement", "sirene_etablissements", "departement"},
	{"idx_etab_code_postal", "sirene_etablissements", "code_postal"},
	{"idx_comptes_siren", "inpi_comptes_annuels", "siren"},
	{"idx_comptes_annee", "inpi_comptes_annuels", "annee_cloture"},
	{"idx_bilan_siren", "inpi_bilan", "siren"},
	{"idx_cr_siren", "inpi_compte_resultat", "siren"},
	{"idx_bodacc_siren", "bodacc_annonces", "siren"},
	{"idx_bodacc_date", "bodacc_annonces", "date_parution"},
}

// InitSchema creates every table, view and index if missing. It is idempotent
// and safe to call at each startup. With force, all known relations are
// dropped first; callers must confirm with the operator before passing it.
func (s *Store) InitSchema(force bool) error {
	if force {
		for _, name := range dropViews {
			if _, err := s.db.Exec("DROP VIEW IF EXISTS " + name); err != nil {
				return err
			}
		}
		for _, name := range dropTables {
			if _, err := s.db.Exec("DROP TABLE IF EXISTS " + name); err != nil {
				return err
			}
		}
	}
	ddls := []string{
		ddlUnitesLegales, ddlEtablissements,
		ddlComptesAnnuels, ddlBilan, ddlCompteResultat,
		ddlAnnonces,
		ddlLoads, ddlDownloads,
		ddlOverview,
	}
	for _, ddl := range ddls {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("schema init: %w", err)
		}
	}
	for _, idx := range indexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, idx.table, idx.column)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema init: %w", err)
		}
	}
	return nil
}
