package xviper

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joshyorko/depclean/common"
	"github.com/spf13/viper"
)

const (
	ApiKey           = `api_key`
	ApiSecret        = `api_secret`
	EndorNamespace   = `endor_namespace`
	EndorApiUrl      = `endor_api_url`
	RequestTimeout   = `request_timeout`
	SbomOrganization = `sbom_organization`
	SbomPerson       = `sbom_person`
	OutputDir        = `output_dir`
)

var (
	lock     sync.RWMutex
	config   *viper.Viper
	sources  []string
	defaults = map[string]interface{}{
		EndorApiUrl:    "https://api.endorlabs.com/v1",
		RequestTimeout: 60,
		OutputDir:      ".",
	}
)

func init() {
	reset()
}

func reset() {
	config = viper.New()
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	config.AutomaticEnv()
	for key, value := range defaults {
		config.SetDefault(key, value)
	}
	sources = nil
}

// Setup loads the optional YAML config file and the optional dotenv file.
// Missing files are fine; broken ones are errors. Process environment always
// wins over both.
func Setup(configFile, envFile string) error {
	lock.Lock()
	defer lock.Unlock()

	reset()
	if err := mergeFile(configFile, "yaml"); err != nil {
		return err
	}
	return mergeFile(envFile, "env")
}

func mergeFile(filename, kind string) error {
	if len(filename) == 0 {
		return nil
	}
	stat, err := os.Stat(filename)
	if errors.Is(err, fs.ErrNotExist) {
		common.Trace("Config file %q does not exist, skipping.", filename)
		return nil
	}
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return nil
	}
	source, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer source.Close()
	config.SetConfigType(kind)
	if err := config.MergeConfig(source); err != nil {
		return err
	}
	sources = append(sources, filename)
	common.Debug("Merged %s configuration from %q.", kind, filename)
	return nil
}

// Sources lists the files which contributed to current configuration.
func Sources() []string {
	lock.RLock()
	defer lock.RUnlock()

	return append([]string(nil), sources...)
}

func Set(key string, value interface{}) {
	lock.Lock()
	defer lock.Unlock()

	config.Set(key, value)
}

func SetDefault(key string, value interface{}) {
	lock.Lock()
	defer lock.Unlock()

	config.SetDefault(key, value)
}

func Get(key string) interface{} {
	lock.RLock()
	defer lock.RUnlock()

	return config.Get(key)
}

func GetString(key string) string {
	lock.RLock()
	defer lock.RUnlock()

	return strings.TrimSpace(config.GetString(key))
}

func GetInt(key string) int {
	lock.RLock()
	defer lock.RUnlock()

	return config.GetInt(key)
}

// GetSeconds reads an integer number of seconds as a duration.
func GetSeconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Second
}
