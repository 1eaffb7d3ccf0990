package common_test

import (
	"path/filepath"
	"testing"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/hamlet"
)

func TestDepcleanStrategyDefaults(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	t.Setenv(common.DEPCLEAN_HOME_VARIABLE, "")
	t.Setenv(common.DEPCLEAN_PRODUCT_NAME, "")

	strategy := common.DepcleanMode()

	must_be.Equal("depclean", strategy.Name())
	must_be.Equal(common.DEPCLEAN_HOME_VARIABLE, strategy.HomeVariable())
	must_be.True(filepath.IsAbs(strategy.Home()))
	must_be.Equal(filepath.Join(strategy.Home(), "depclean.yaml"), strategy.DefaultConfigFile())
	must_be.Equal(".env", strategy.DefaultEnvFile())
}

func TestDepcleanStrategyProductNameOverride(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	t.Setenv(common.DEPCLEAN_PRODUCT_NAME, "Custom Name")
	strategy := common.DepcleanMode()

	must_be.Equal("Custom Name", strategy.Name())
}

func TestDepcleanStrategyHomePriority(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	overrideDir := t.TempDir()
	envDir := t.TempDir()

	product := common.DepcleanMode()
	product.ForceHome(overrideDir)
	must_be.Equal(overrideDir, product.Home())

	product = common.DepcleanMode()
	t.Setenv(common.DEPCLEAN_HOME_VARIABLE, envDir)
	must_be.Equal(envDir, product.Home())

	t.Setenv(common.DEPCLEAN_HOME_VARIABLE, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	must_be.Equal(filepath.Join(home, ".depclean"), product.Home())
}
