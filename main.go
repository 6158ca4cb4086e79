package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	siteApp "sitebuilder/internal/app"
	"sitebuilder/internal/config"
	"sitebuilder/internal/service"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	var (
		configPath string
		filePath   string
	)

	rootCmd := &cobra.Command{
		Use:   "sitebuilder",
		Short: "Visual website builder",
		Long: `Sitebuilder lays out web pages from components on a free-form canvas,
previews them at desktop and mobile widths and exports standalone HTML.

Without a subcommand the desktop editor is started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(configPath, filePath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "", "document file kept in sync with the editor")

	rootCmd.AddCommand(
		desktopCmd(&configPath, &filePath),
		serveCmd(&configPath, &filePath),
		mcpCmd(&configPath, &filePath),
		exportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func desktopCmd(configPath, filePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "desktop",
		Short: "Start the desktop editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(*configPath, *filePath)
		},
	}
}

func serveCmd(configPath, filePath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, the HTML views and the MCP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return siteApp.Headless{Config: cfg, File: *filePath}.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func mcpCmd(configPath, filePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return siteApp.Headless{Config: cfg, File: *filePath}.ServeMCP(ctx)
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <site.json>",
		Short: "Render a document file as a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := siteApp.ExportFile(args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <name>.html next to the input)")
	return cmd
}

func runDesktop(configPath, filePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	emitter := siteApp.NewEmitter()
	svc, err := siteApp.Open(ctx, cfg, emitter, siteApp.DefaultSecrets())
	if err != nil {
		return err
	}
	if filePath != "" {
		if err := svc.Link(ctx, filePath, emitter); err != nil {
			svc.Close(ctx)
			return err
		}
	}
	size := svc.Window.LoadWindowSize(ctx)
	app := siteApp.New(svc, emitter)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "Site Builder",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  service.MinWindowWidth,
		MinHeight: service.MinWindowHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 241, G: 245, B: 249, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 true,
				HideToolbarSeparator:       true,
			},
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "Site Builder",
				Message: "Drag-and-drop website builder",
			},
		},
	})
}
