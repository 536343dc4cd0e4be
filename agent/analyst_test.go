package agent

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/registre/store"
	"google.golang.org/genai"
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

func TestQueryMarkdown(t *testing.T) {
	st := openTestStore(t)
	got, err := queryMarkdown(st, "SELECT 1 AS one, 'a' AS txt, NULL AS nothing")
	if err != nil {
		t.Fatalf("queryMarkdown() error = %v", err)
	}
	for _, want := range []string{"| one | txt | nothing |", "| 1 | a | NULL |"} {
		if !strings.Contains(got, want) {
			t.Errorf("queryMarkdown() missing %q in:\n%s", want, got)
		}
	}
}

func TestQueryMarkdownRejectsWrites(t *testing.T) {
	st := openTestStore(t)
	testCases := []string{
		"DELETE FROM etl_loads",
		"DROP TABLE bodacc_annonces",
		"INSERT INTO etl_loads (id) VALUES ('x')",
	}
	for _, query := range testCases {
		if _, err := queryMarkdown(st, query); err == nil {
			t.Errorf("queryMarkdown(%q) expected an error", query)
		}
	}
}

func TestAnalystLibraryDispatch(t *testing.T) {
	st := openTestStore(t)
	lib := NewLibrary([]Function{statsFunc(st), queryFunc(st)})

	resp := lib(t.Context(), &genai.FunctionCall{ID: "1", Name: "DatabaseStats"})
	if _, ok := resp.Response["output"]; !ok {
		t.Errorf("DatabaseStats response = %v", resp.Response)
	}

	resp = lib(t.Context(), &genai.FunctionCall{ID: "2", Name: "RunQuery",
		Args: map[string]any{"sql": "SELECT COUNT(*) AS n FROM etl_loads"}})
	if out, ok := resp.Response["output"].(string); !ok || !strings.Contains(out, "| n |") {
		t.Errorf("RunQuery response = %v", resp.Response)
	}

	resp = lib(t.Context(), &genai.FunctionCall{ID: "3", Name: "Nope"})
	if _, ok := resp.Response["error"]; !ok {
		t.Errorf("unknown function response = %v", resp.Response)
	}
}
