package cli

import (
	"fmt"

	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/server"
	"github.com/lacquerai/rankview/internal/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Serve command flags
	servePort      int
	serveHost      string
	serveMetrics   bool
	serveCORS      bool
	serveMaxUpload int64
	servePreview   int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [csv]",
	Short: "Start the interactive ranking dashboard",
	Long: `Start an HTTP server with an interactive ranking dashboard.

The server provides:
- A dashboard to upload a CSV, pick a metric and the number of entries
- REST API for uploads, rankings and PNG/SVG charts
- WebSocket stream of dataset and ranking events
- Prometheus metrics endpoint

Examples:
  rankview serve                           # Start empty, upload a table from the browser
  rankview serve mbti.csv                  # Preload a table
  rankview serve --port 9000 --host 0.0.0.0 mbti.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := server.DefaultConfig()
		config.Host = viper.GetString("server.host")
		config.Port = viper.GetInt("server.port")
		config.EnableMetrics = serveMetrics
		config.EnableCORS = serveCORS
		config.MaxUploadBytes = serveMaxUpload
		config.PreviewRows = servePreview
		config.Identifier = viper.GetString("identifier")
		config.Labels = viper.GetBool("labels")
		if n := viper.GetInt("top"); n > 0 {
			config.Top = n
		}

		dataFile := ""
		if len(args) == 1 {
			dataFile = args[0]
		}

		return startServer(newRunContext(cmd), config, dataFile)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "server port")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "server host")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", 10<<20, "maximum upload size in bytes")
	serveCmd.Flags().IntVar(&servePreview, "preview", 10, "raw rows shown under the chart")

	// Features
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", true, "enable CORS headers")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func startServer(runCtx execcontext.RunContext, config *server.Config, dataFile string) error {
	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if dataFile != "" {
		if err := srv.LoadFile(dataFile); err != nil {
			printFailure(runCtx.StdErr, err)
			return err
		}
	}

	if !viper.GetBool("quiet") {
		style.Success(runCtx, fmt.Sprintf("Rankview dashboard starting at http://%s", srv.GetAddr()))
		if dataFile != "" {
			fmt.Fprintf(runCtx, "📄 Loaded table: %s\n", dataFile)
		}
		fmt.Fprintf(runCtx, "🚀 API: http://%s/api/v1/datasets\n", srv.GetAddr())
		if config.EnableMetrics {
			fmt.Fprintf(runCtx, "📊 Metrics: http://%s/metrics\n", srv.GetAddr())
		}
	}

	if err := srv.StartWithGracefulShutdown(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
