package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tripsync/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "TRIPSYNC_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "TRIPSYNC_SAVE_INTERVAL")
	viper.BindEnv("persistence.debounceWindow", "TRIPSYNC_DEBOUNCE_WINDOW")
	viper.BindEnv("cache.enabled", "TRIPSYNC_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TRIPSYNC_CACHE_SIZE")
	viper.BindEnv("trip.maxInteractions", "TRIPSYNC_MAX_INTERACTIONS")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TripSyncDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
