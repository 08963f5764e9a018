package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Server.Workers = 0
	require.ErrorIs(t, cfg.Validate(), ErrBadConfig)

	cfg = Default()
	cfg.Server.Backlog = -1
	require.ErrorIs(t, cfg.Validate(), ErrBadConfig)
}

func TestFromViper(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromViper(viper.New())
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("overlay", func(t *testing.T) {
		v := viper.New()
		v.Set(KeyPort, 9090)
		v.Set(KeyWorkers, 2)
		v.Set(KeyDrainTimeout, "250ms")
		v.Set(KeyDBBackend, "sqlite")
		v.Set(KeyDBDSN, "file:users.db")

		cfg, err := FromViper(v)
		require.NoError(t, err)
		require.Equal(t, uint16(9090), cfg.Server.Port)
		require.Equal(t, 2, cfg.Server.Workers)
		require.Equal(t, 64, cfg.Server.Backlog)
		require.Equal(t, 250*time.Millisecond, cfg.Shutdown.DrainTimeout)
		require.Equal(t, "sqlite", cfg.Database.Backend)
		require.Equal(t, "file:users.db", cfg.Database.DSN)
	})

	t.Run("invalid", func(t *testing.T) {
		v := viper.New()
		v.Set(KeyBacklog, 0)
		_, err := FromViper(v)
		require.ErrorIs(t, err, ErrBadConfig)
	})
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}
