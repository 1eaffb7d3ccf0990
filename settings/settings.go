package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/sbom"
	"github.com/joshyorko/depclean/xviper"
)

var (
	ErrMissingCredentials = errors.New("missing Endor Labs credentials")

	validate = newValidator()
)

// Settings is the typed view of configuration for one invocation.
type Settings struct {
	ApiUrl         string        `config:"endor_api_url" validate:"required,url"`
	Namespace      string        `config:"endor_namespace"`
	ApiKey         string        `config:"api_key"`
	ApiSecret      string        `config:"api_secret"`
	RequestTimeout time.Duration `config:"request_timeout" validate:"gte=1s,lte=1h"`
	Organization   string        `config:"sbom_organization" validate:"max=256"`
	Person         string        `config:"sbom_person" validate:"max=256"`
	OutputDir      string        `config:"output_dir" validate:"required"`
}

type credentials struct {
	Namespace string `config:"endor_namespace" validate:"required"`
	ApiKey    string `config:"api_key" validate:"required"`
	ApiSecret string `config:"api_secret" validate:"required"`
}

func newValidator() *validator.Validate {
	result := validator.New()
	result.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("config"), ",")
		if len(name) == 0 {
			return field.Name
		}
		return name
	})
	return result
}

// Summon builds settings from the current xviper configuration.
func Summon() (*Settings, error) {
	result := &Settings{
		ApiUrl:         strings.TrimRight(xviper.GetString(xviper.EndorApiUrl), "/"),
		Namespace:      xviper.GetString(xviper.EndorNamespace),
		ApiKey:         xviper.GetString(xviper.ApiKey),
		ApiSecret:      xviper.GetString(xviper.ApiSecret),
		RequestTimeout: xviper.GetSeconds(xviper.RequestTimeout),
		Organization:   xviper.GetString(xviper.SbomOrganization),
		Person:         xviper.GetString(xviper.SbomPerson),
		OutputDir:      common.ExpandPath(xviper.GetString(xviper.OutputDir)),
	}
	if err := validate.Struct(result); err != nil {
		return nil, describe(err)
	}
	common.HideSecret(result.ApiKey)
	common.HideSecret(result.ApiSecret)
	return result, nil
}

// RequireCredentials checks that remote commands can authenticate.
func (it *Settings) RequireCredentials() error {
	err := validate.Struct(credentials{
		Namespace: it.Namespace,
		ApiKey:    it.ApiKey,
		ApiSecret: it.ApiSecret,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, describe(err))
	}
	return nil
}

// EnvAttribution is the configured attribution, passed on as a value.
func (it *Settings) EnvAttribution() sbom.EnvAttribution {
	return sbom.EnvAttribution{
		Organization: it.Organization,
		Person:       it.Person,
	}
}

func describe(err error) error {
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}
	messages := make([]string, 0, len(failures))
	for _, failure := range failures {
		messages = append(messages, describeField(failure))
	}
	return errors.New(strings.Join(messages, "; "))
}

func describeField(failure validator.FieldError) string {
	field := failure.Field()
	environment := strings.ToUpper(field)
	switch failure.Tag() {
	case "required":
		return fmt.Sprintf("%s is required (set %s in environment, .env or config file)", field, environment)
	case "url":
		return fmt.Sprintf("%s must be an URL, not %q", field, failure.Value())
	case "gte", "lte", "max":
		return fmt.Sprintf("%s is out of range (%s %s)", field, failure.Tag(), failure.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
