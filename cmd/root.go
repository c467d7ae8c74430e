// ABOUTME: Root command for the timizia CLI
// ABOUTME: Handles global flags, configuration, logging and client construction

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timizia/timizia-cli/internal/client"
	"github.com/timizia/timizia-cli/internal/config"
	"github.com/timizia/timizia-cli/internal/logger"
	"github.com/timizia/timizia-cli/internal/tokenstore"
)

var (
	apiURL     string
	configDir  string
	logLevel   string
	jsonOutput bool

	cfg *config.Config
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "timizia",
	Short: "Command-line client for the Timizia learning platform",
	Long: `timizia signs you in to the Timizia learning platform and manages your account.

Credentials are stored in the config directory and refreshed automatically.

Environment Variables:
  TIMIZIA_API_URL           Backend API URL (default: ` + config.DefaultAPIURL + `)
  TIMIZIA_CONFIG_DIR        Credential and log directory (default: $XDG_CONFIG_HOME/timizia)
  TIMIZIA_LOG_LEVEL         debug, info, warn, error (default: info)
  TIMIZIA_LOG_FORMAT        text, json (default: text)
  TIMIZIA_REQUEST_TIMEOUT   Per-request timeout (default: 30s)
  TIMIZIA_CREDENTIAL_STORE  file or memory (default: file)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(loaded)
		cfg = loaded
		logger.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides TIMIZIA_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides TIMIZIA_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides TIMIZIA_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// applyFlags gives command-line flags precedence over loaded configuration
func applyFlags(c *config.Config) {
	if apiURL != "" {
		c.APIURL = apiURL
	}
	if configDir != "" {
		c.ConfigDir = configDir
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// currentConfig returns the loaded configuration, or defaults plus
// environment when commands run outside cobra (tests)
func currentConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	loaded, err := config.LoadFrom("")
	if err != nil {
		slog.Warn("Falling back to default configuration", "error", err)
		loaded = config.Defaults()
	}
	applyFlags(loaded)
	return loaded
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	return client.NormalizeBaseURL(currentConfig().APIURL)
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newStore returns the configured credential store
func newStore(c *config.Config) tokenstore.Store {
	if c.UsesMemoryStore() {
		return tokenstore.NewMemory()
	}
	return tokenstore.NewFile(c.ConfigDir)
}

// newClient builds the session client from configuration
func newClient(opts ...client.Option) *client.Client {
	c := currentConfig()
	base := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithStore(newStore(c)),
		client.WithLogger(slog.Default()),
	}
	return client.New(c.APIURL, append(base, opts...)...)
}

// exitCodeFor maps client errors to exit codes: backend rejections are 1,
// local and connectivity failures are 2
func exitCodeFor(err error) int {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) || errors.Is(err, client.ErrSessionExpired) || errors.Is(err, errNotSignedIn) {
		return exitRejected
	}
	return exitError
}

// fail prints the error in the active output format and returns its exit code
func fail(w io.Writer, err error) int {
	code := exitCodeFor(err)
	if IsJSONOutput() {
		out := map[string]interface{}{"error": err.Error()}
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) {
			out["status"] = httpErr.Status
		}
		if errors.Is(err, client.ErrSessionExpired) {
			out["session_expired"] = true
		}
		fmt.Fprintln(w, formatJSON(out))
		return code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return code
}

// invalid reports a local input error
func invalid(w io.Writer, err error) int {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]string{"error": err.Error()}))
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return exitError
}

// formatJSON renders v as indented JSON
func formatJSON(v interface{}) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// exit terminates with code unless it is zero
func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}

// commandContext is canceled on SIGINT or SIGTERM
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
