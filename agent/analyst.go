package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/registre/docs"
	"github.com/etnz/registre/renderer"
	"github.com/etnz/registre/store"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// maxQueryRows caps what a single tool call can dump into the chat.
const maxQueryRows = 200

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here to explore the French company registry database: companies, their
			financial statements and their legal announcements. He will refer to companies by
			name or by SIREN, figure out which from the registry first.

			Devise a plan of questions to ask each expert and come up with the best response
			to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns the expert grounding answers in public information.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert researcher on French companies,
		well aware of the business press and of public filings.
		Ask the Researcher whenever you need recent or grounding information
		that the registry database cannot hold.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert researcher on French companies and markets.
			You leverage Google Search to ground your assertions in a solid truth,
			and you know how to relate the latest news to the user's request.
				`}}},
		},
	}
}

// NewAnalyst returns the expert in charge of the registry database.
func NewAnalyst(st *store.Store) *Expert {
	lib := []Function{statsFunc(st), queryFunc(st)}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. He is in charge of reading the registry database:
		legal units, establishments, annual accounts and legal announcements.
		He can run queries to compute any relevant figure about a company.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an analyst in charge of the French company registry database.
				You know how to use the Tools to extract relevant information.
				You are part of a team of experts, yours is everything in the database.
				Pardon their approximative language and figure out what they meant.

				Use DatabaseStats to learn what the database holds, and RunQuery with
				read-only SQL to answer precise questions. The schema is documented below.

				` + must(docs.GetTopic("sources")) + `

				Key tables: sirene_unites_legales (siren, denomination, ...),
				sirene_etablissements, inpi_comptes_annuels, inpi_bilan,
				inpi_compte_resultat, bodacc_annonces, and the v_company_overview
				view joining each company with its latest filed financial year.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Fn   func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Fn(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func statsFunc(st *store.Store) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "DatabaseStats",
			Description: `DatabaseStats reports the row count of every data table and the
			last successful load per source. Call it first to learn what the database holds.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted statistics report.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			s, err := st.Stats()
			if err != nil {
				return errResponse(id, "DatabaseStats", err)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "DatabaseStats",
				Response: map[string]any{
					"output": renderer.RenderStats(renderer.NewStatsReport(st.Path(), s)),
				},
			}
		},
	}
}

func queryFunc(st *store.Store) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "RunQuery",
			Description: fmt.Sprintf(`RunQuery runs a read-only SQL query (SELECT or WITH)
			against the registry database and returns the result as a markdown table,
			capped at %d rows.`, maxQueryRows),
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"sql": {
						Type:        genai.TypeString,
						Description: "The SQL query to run. Only SELECT and WITH statements are accepted.",
					},
				},
				Required: []string{"sql"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the query result.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			query, ok := args["sql"].(string)
			if !ok {
				return errResponse(id, "RunQuery", fmt.Errorf("argument 'sql' is not a string but %T", args["sql"]))
			}
			out, err := queryMarkdown(st, query)
			if err != nil {
				return errResponse(id, "RunQuery", err)
			}
			return &genai.FunctionResponse{
				ID:       id,
				Name:     "RunQuery",
				Response: map[string]any{"output": out},
			}
		},
	}
}

// queryMarkdown runs a read-only query and formats the result as a markdown
// table.
func queryMarkdown(st *store.Store, query string) (string, error) {
	head := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(head, "select") && !strings.HasPrefix(head, "with") {
		return "", fmt.Errorf("only SELECT and WITH statements are accepted")
	}

	rows, err := st.Query(query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(cols)) + "|\n")

	values := make([]any, len(cols))
	for i := range values {
		values[i] = new(any)
	}
	n := 0
	for rows.Next() {
		if n >= maxQueryRows {
			fmt.Fprintf(&b, "\n(truncated at %d rows)\n", maxQueryRows)
			break
		}
		if err := rows.Scan(values...); err != nil {
			return "", err
		}
		cells := make([]string, len(cols))
		for i, v := range values {
			cells[i] = cell(*v.(*any))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		n++
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
