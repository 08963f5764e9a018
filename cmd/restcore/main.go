// Command restcore serves the users REST API along with its frontend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/indigo-web/restcore/config"
	"github.com/indigo-web/restcore/logging"
)

const envPrefix = "RESTCORE"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		v          = viper.New()
		configFile string
	)

	cmd := &cobra.Command{
		Use:           "restcore",
		Short:         "Users REST API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(v, configFile); err != nil {
				return err
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}

			log := logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: os.Stderr,
			})

			if err = run(cmd.Context(), cfg, log); err != nil {
				log.Error().Err(err).Msg("server failed")
				return err
			}

			return nil
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.Uint16("port", defaults.Server.Port, "port to listen on")
	flags.Int("backlog", defaults.Server.Backlog, "depth of the pending connections queue")
	flags.Int("workers", defaults.Server.Workers, "number of connections served simultaneously")
	flags.String("db", defaults.Database.Backend, "database backend: sqlite or memory")
	flags.String("dsn", defaults.Database.DSN, "database data source name")
	flags.String("static", defaults.Static.Root, "directory with the frontend files")
	flags.Bool("watch", defaults.Static.Watch, "reload frontend files on change")
	flags.String("log-level", defaults.Log.Level, "log level: trace, debug, info, warn, error")
	flags.String("log-format", defaults.Log.Format, "log format: console or json")

	for key, flag := range map[string]string{
		config.KeyPort:        "port",
		config.KeyBacklog:     "backlog",
		config.KeyWorkers:     "workers",
		config.KeyDBBackend:   "db",
		config.KeyDBDSN:       "dsn",
		config.KeyStaticRoot:  "static",
		config.KeyStaticWatch: "watch",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind %s flag: %v", flag, err))
		}
	}

	return cmd
}

// loadConfig reads .env files into the environment, then the config file, if any.
// Precedence: flags, environment, config file, defaults.
func loadConfig(v *viper.Viper, configFile string) error {
	for _, envFile := range []string{".env", ".env.local"} {
		// a missing file is fine
		_ = godotenv.Load(envFile)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if len(configFile) == 0 {
		return nil
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configFile, err)
	}

	return nil
}
