package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"craftfolio/cmd/folio/ui"
	"craftfolio/internal/account"
	"craftfolio/internal/api"
	"craftfolio/internal/config"
	"craftfolio/internal/draft"
	"craftfolio/internal/inbox"
	"craftfolio/internal/logging"
	"craftfolio/internal/media"
	"craftfolio/internal/portfolio"
	"craftfolio/internal/session"
	"craftfolio/internal/storage"
)

var (
	// Global flags
	verbose bool
	apiBase string

	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "craftfolio - portfolio client for craftspeople",
	Long: `craftfolio is a terminal client for the craftfolio backend: manage your
project portfolio, edit your public profile and talk to clients through the
private inbox.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive UI owns the terminal; route logs nowhere there.
		if cmd.CalledAs() == "folio" {
			logger = zap.NewNop()
			logging.Init(logger)
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Init(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// services is the wired application: every command and the UI work through
// this one bundle.
type services struct {
	ui.Services
}

// newServices wires storage, session and the HTTP adapter together.
func newServices() (*services, error) {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	base := apiBase
	if base == "" {
		base = config.APIBaseURL(cfg)
	}

	kv, err := storage.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("open state storage: %w", err)
	}

	store := session.NewStore(kv)
	client := api.NewClient(base, store)
	store.SetClient(client)

	return &services{
		Services: ui.Services{
			Session:  store,
			Projects: portfolio.NewService(client),
			Images:   portfolio.NewImageService(client),
			Profile:  account.NewProfileService(client, kv, account.NewBus()),
			Inbox:    inbox.NewService(client),
			Drafts:   draft.NewStore(kv),
			Media:    media.NewNormalizer(client.Origin()),
		},
	}, nil
}

func runInteractive() error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	program := tea.NewProgram(ui.NewModel(svc.Services), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "backend base URL (overrides config and env)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwordResetCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(inboxCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
