package cmd

import (
	"path/filepath"
	"testing"

	"github.com/etnz/registre"
	"github.com/etnz/registre/store"
)

func TestAuditedDownloaderRecords(t *testing.T) {
	var cfg registre.Config
	cfg.Database.Path = filepath.Join(t.TempDir(), "registre.db")

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.InitSchema(false); err != nil {
		t.Fatal(err)
	}
	st.Close()

	d, release := auditedDownloader(cfg, "sirene")
	if d.Record == nil {
		t.Fatal("auditedDownloader left Record unset on an existing database")
	}
	d.Record("https://files.insee.fr/StockUniteLegale.zip", "/tmp/sirene/StockUniteLegale.zip", 4096)
	release()

	st, err = store.Open(cfg.Database.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	var source, url, filename string
	var size int64
	err = st.QueryRow(`SELECT source, url, filename, file_size_bytes FROM etl_downloads`).
		Scan(&source, &url, &filename, &size)
	if err != nil {
		t.Fatalf("querying etl_downloads: %v", err)
	}
	if source != "sirene" || filename != "StockUniteLegale.zip" || size != 4096 {
		t.Errorf("row = %s %s %d", source, filename, size)
	}
	if url != "https://files.insee.fr/StockUniteLegale.zip" {
		t.Errorf("url = %q", url)
	}
}

func TestAuditedDownloaderNoDatabase(t *testing.T) {
	var cfg registre.Config
	cfg.Database.Path = filepath.Join(t.TempDir(), "missing.db")

	d, release := auditedDownloader(cfg, "sirene")
	defer release()
	// downloads run before init-db; the audit is skipped, not an error
	if d == nil {
		t.Fatal("auditedDownloader returned nil downloader")
	}
	if d.Record != nil {
		t.Error("Record set without a database to record into")
	}
}
