package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/cli/output"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List usable databases in the upload directory",
		Long: `List every database in the upload directory that an engine can open,
with its engine, size and number of tables.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List databases (auto-detect output format)
  sqlview list

  # List databases as JSON
  sqlview list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

// databaseInfo describes one listed database.
type databaseInfo struct {
	Name    string    `json:"name"`
	Engine  string    `json:"engine"`
	Size    int64     `json:"size"`
	Tables  int       `json:"tables"`
	AddedAt time.Time `json:"added_at"`
	Error   string    `json:"error,omitempty"`
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	cat, err := cmdCtx.OpenCatalog(ctx)
	if err != nil {
		return err
	}
	infos := describeDatabases(ctx, cat)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		listMarkdown(r, cat.Dir(), infos)
	default:
		listText(r, cat.Dir(), infos)
	}
	return nil
}

func describeDatabases(ctx context.Context, cat *catalog.Catalog) []databaseInfo {
	entries := cat.List()
	infos := make([]databaseInfo, 0, len(entries))
	for _, e := range entries {
		info := databaseInfo{Name: e.Name, Engine: e.Engine, Size: e.Size, AddedAt: e.AddedAt}
		n, err := countTables(ctx, cat, e.Name)
		if err != nil {
			info.Error = err.Error()
		}
		info.Tables = n
		infos = append(infos, info)
	}
	return infos
}

func countTables(ctx context.Context, cat *catalog.Catalog, name string) (int, error) {
	adp, err := cat.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = adp.Close() }()

	tables, err := adp.ListTables(ctx)
	return len(tables), err
}

func databasesTable(infos []databaseInfo) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Engine", "Size", "Tables"})
	for _, info := range infos {
		tables := fmt.Sprint(info.Tables)
		if info.Error != "" {
			tables = "?"
		}
		t.AppendRow(table.Row{info.Name, info.Engine, humanize.Bytes(uint64(info.Size)), tables}) //nolint:gosec // sizes are never negative
	}
	return t
}

// listText outputs databases as a styled table.
func listText(r *output.Renderer, dir string, infos []databaseInfo) {
	r.Header(1, fmt.Sprintf("Databases (%d total)", len(infos)))
	r.Muted(dir)
	if len(infos) == 0 {
		r.Println("No databases yet. Add some with 'sqlview add <file>'.")
		return
	}

	t := databasesTable(infos)
	t.SetStyle(table.StyleLight)
	r.Println(t.Render())
}

// listMarkdown outputs databases as a markdown table.
func listMarkdown(r *output.Renderer, dir string, infos []databaseInfo) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Databases (%d total)", len(infos))))
	r.Println("")
	r.Println(output.FormatKeyValue("Upload directory", dir))
	if len(infos) == 0 {
		return
	}
	r.Println("")
	r.Println(databasesTable(infos).RenderMarkdown())
}
