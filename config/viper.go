package config

import (
	"github.com/spf13/viper"
)

// Keys recognized by FromViper. The same names are used for flags and config files;
// environment variables are upper-cased with dots replaced by underscores and
// prefixed with RESTCORE_.
const (
	KeyPort         = "server.port"
	KeyBacklog      = "server.backlog"
	KeyWorkers      = "server.workers"
	KeyReadTimeout  = "net.read_timeout"
	KeyWriteTimeout = "net.write_timeout"
	KeyMaxBody      = "body.max_size"
	KeyDrainTimeout = "shutdown.drain_timeout"
	KeyDBBackend    = "database.backend"
	KeyDBDSN        = "database.dsn"
	KeyStaticRoot   = "static.root"
	KeyStaticWatch  = "static.watch"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

// FromViper overlays the values set in v on top of defaults and validates the result.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if v.IsSet(KeyPort) {
		cfg.Server.Port = uint16(v.GetUint(KeyPort))
	}
	if v.IsSet(KeyBacklog) {
		cfg.Server.Backlog = v.GetInt(KeyBacklog)
	}
	if v.IsSet(KeyWorkers) {
		cfg.Server.Workers = v.GetInt(KeyWorkers)
	}
	if v.IsSet(KeyReadTimeout) {
		cfg.NET.ReadTimeout = v.GetDuration(KeyReadTimeout)
	}
	if v.IsSet(KeyWriteTimeout) {
		cfg.NET.WriteTimeout = v.GetDuration(KeyWriteTimeout)
	}
	if v.IsSet(KeyMaxBody) {
		cfg.Body.MaxSize = v.GetInt(KeyMaxBody)
	}
	if v.IsSet(KeyDrainTimeout) {
		cfg.Shutdown.DrainTimeout = v.GetDuration(KeyDrainTimeout)
	}
	if v.IsSet(KeyDBBackend) {
		cfg.Database.Backend = v.GetString(KeyDBBackend)
	}
	if v.IsSet(KeyDBDSN) {
		cfg.Database.DSN = v.GetString(KeyDBDSN)
	}
	if v.IsSet(KeyStaticRoot) {
		cfg.Static.Root = v.GetString(KeyStaticRoot)
	}
	if v.IsSet(KeyStaticWatch) {
		cfg.Static.Watch = v.GetBool(KeyStaticWatch)
	}
	if v.IsSet(KeyLogLevel) {
		cfg.Log.Level = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		cfg.Log.Format = v.GetString(KeyLogFormat)
	}

	return cfg, cfg.Validate()
}
