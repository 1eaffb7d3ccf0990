package common

import (
	"os"
	"path/filepath"
)

const (
	DEPCLEAN_HOME_VARIABLE = `DEPCLEAN_HOME`
	DEPCLEAN_PRODUCT_NAME  = `DEPCLEAN_PRODUCT_NAME`
	DEPCLEAN_NAME          = `depclean`

	defaultHomeLocation = "$HOME/.depclean"
	defaultEnvFile      = ".env"
)

type (
	ProductStrategy interface {
		Name() string
		ForceHome(string)
		HomeVariable() string
		Home() string
		DefaultConfigFile() string
		DefaultEnvFile() string
	}

	depcleanStrategy struct {
		forcedHome string
	}
)

func ExpandPath(entry string) string {
	intermediate := os.ExpandEnv(entry)
	result, err := filepath.Abs(intermediate)
	if err != nil {
		return intermediate
	}
	return result
}

func DepcleanMode() ProductStrategy {
	return &depcleanStrategy{}
}

func (it *depcleanStrategy) Name() string {
	if value := os.Getenv(DEPCLEAN_PRODUCT_NAME); len(value) > 0 {
		return value
	}
	return DEPCLEAN_NAME
}

func (it *depcleanStrategy) ForceHome(value string) {
	it.forcedHome = value
}

func (it *depcleanStrategy) HomeVariable() string {
	return DEPCLEAN_HOME_VARIABLE
}

func (it *depcleanStrategy) Home() string {
	if len(it.forcedHome) > 0 {
		return ExpandPath(it.forcedHome)
	}
	home := os.Getenv(DEPCLEAN_HOME_VARIABLE)
	if len(home) > 0 {
		return ExpandPath(home)
	}
	return ExpandPath(defaultHomeLocation)
}

func (it *depcleanStrategy) DefaultConfigFile() string {
	return filepath.Join(it.Home(), "depclean.yaml")
}

// DefaultEnvFile is relative to the working directory, like the dotenv
// files credentials are usually kept in.
func (it *depcleanStrategy) DefaultEnvFile() string {
	return defaultEnvFile
}
