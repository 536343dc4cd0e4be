package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/registre"
	"github.com/etnz/registre/date"
	"github.com/etnz/registre/store"
)

func TestRenderStats(t *testing.T) {
	r := &StatsReport{
		Database: "data/registre.db",
		Date:     date.New(2023, 6, 15),
		Tables: []TableCount{
			{Table: "sirene_unites_legales", Rows: 25000000},
			{Table: "bodacc_annonces", Rows: 1200},
		},
		Loads: []SourceLoad{
			{Source: "sirene", CompletedAt: "2023-06-14T08:00:00Z"},
		},
	}
	got := RenderStats(r)
	for _, want := range []string{
		"# Registry Database",
		"data/registre.db",
		"2023-06-15",
		"sirene_unites_legales | 25000000",
		"sirene | 2023-06-14T08:00:00Z",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderStats() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "error") {
		t.Errorf("RenderStats() reported a template error:\n%s", got)
	}
}

func TestRenderStatsNoLoads(t *testing.T) {
	got := RenderStats(&StatsReport{Database: "x.db", Date: date.Today()})
	if !strings.Contains(got, "No load has completed yet.") {
		t.Errorf("RenderStats() missing the empty loads notice:\n%s", got)
	}
}

func TestNewStatsReport(t *testing.T) {
	s := &store.Stats{
		Rows:      map[string]int64{"bodacc_annonces": 3},
		LastLoads: map[string]string{"inpi": "2023-06-14", "bodacc": "2023-06-15"},
	}
	r := NewStatsReport("x.db", s)
	if len(r.Tables) != len(store.DataTables) {
		t.Errorf("got %d tables, want %d", len(r.Tables), len(store.DataTables))
	}
	// loads are sorted by source
	if len(r.Loads) != 2 || r.Loads[0].Source != "bodacc" || r.Loads[1].Source != "inpi" {
		t.Errorf("loads = %+v", r.Loads)
	}
}

func TestRenderSearch(t *testing.T) {
	revenue := registre.FromCents(27619000000 * 100)
	r := &SearchReport{
		Query: "danone",
		Results: []Company{
			{
				Siren:           "552032534",
				Denomination:    "DANONE",
				FormeJuridique:  "SA",
				Ville:           "PARIS",
				Departement:     "75",
				AnneeCloture:    2023,
				ChiffreAffaires: &revenue,
			},
			{Siren: "123456789", Denomination: "DANONE EXPRESS"},
		},
	}
	got := RenderSearch(r)
	for _, want := range []string{
		`Companies matching "danone"`,
		"552032534",
		"DANONE",
		"2023",
		revenue.String(),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSearch() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderSearchEmpty(t *testing.T) {
	got := RenderSearch(&SearchReport{Query: "nothing"})
	if !strings.Contains(got, "No company matches.") {
		t.Errorf("RenderSearch() missing the empty notice:\n%s", got)
	}
}
