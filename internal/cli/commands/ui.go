package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlview/internal/ui"
	"github.com/leapstack-labs/sqlview/internal/viewer"
)

// NewUICommand creates the ui command. The --port, --host and --watch flags
// are read through the config loader, which maps them to ui.* keys.
func NewUICommand() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the browser UI",
		Long: `Start a local web server for exploring uploaded databases.

The UI provides:
- Uploading SQLite and DuckDB files
- Table previews with per-column filters
- Query tabs with CSV, JSON and Markdown export`,
		Example: `  # Start UI on default port
  sqlview ui

  # Start on custom port
  sqlview ui --port 3000

  # Start without auto-opening browser
  sqlview ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, noBrowser)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().String("host", "", "Interface to listen on (default: localhost)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().Bool("watch", true, "Pick up database files copied into the upload directory")

	return cmd
}

func runUI(cmd *cobra.Command, noBrowser bool) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	uiCfg := cfg.UI

	cat, err := cmdCtx.OpenCatalog(cmd.Context())
	if err != nil {
		return err
	}

	svc := viewer.New(cat, viewer.Options{
		PreviewLimit: uiCfg.PreviewLimit,
		MaxRows:      uiCfg.MaxRows,
		QueryTimeout: uiCfg.QueryTimeout,
		Logger:       cmdCtx.Logger,
	})

	server := ui.NewServer(ui.Config{
		Service:       svc,
		Host:          uiCfg.Host,
		Port:          uiCfg.Port,
		Watch:         uiCfg.Watch,
		SessionSecret: uiCfg.SessionSecret,
		MaxUploadMB:   uiCfg.MaxUploadMB,
		IdleTimeout:   uiCfg.WorkspaceIdleTimeout,
		Logger:        cmdCtx.Logger,
	})

	// Open browser if configured
	if uiCfg.AutoOpen && !noBrowser {
		go openBrowser(server.URL())
	}

	r := cmdCtx.Renderer
	r.Printf("Serving %d database(s) from %s\n", cat.Len(), cat.Dir())
	r.Printf("Starting UI server on %s\n", server.URL())
	r.Println("Press Ctrl+C to stop")

	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("ui server: %w", err)
	}
	return nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
