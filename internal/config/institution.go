package config

import (
	"log"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InstitutionConfig describes the eye bank operating the registry. It feeds
// the donor card renderer and the public-facing pages.
type InstitutionConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Email   string `mapstructure:"email"`
	Phone   string `mapstructure:"phone"`
	Website string `mapstructure:"website"`

	CardOutputDir string `mapstructure:"cardOutputDir"`
	ConsentText   string `mapstructure:"consentText"`
}

func DefaultInstitutionConfig() InstitutionConfig {
	return InstitutionConfig{
		Name:          "National Eye Bank",
		Address:       "Medical Campus, City",
		Email:         "info@eyebank.org",
		Phone:         "+91-1234567890",
		Website:       "https://eyebank.org",
		CardOutputDir: "output",
		ConsentText: "I hereby declare that I wish to donate my eyes after my death " +
			"to help the blind and restore sight. I understand that this is a " +
			"voluntary act and can be revoked at any time.",
	}
}

// InstitutionHolder exposes the institution profile with hot reload support.
type InstitutionHolder struct {
	current atomic.Value // holds InstitutionConfig
}

// NewInstitutionHolder loads institution.yml and watches it for changes.
// A missing file falls back to defaults so local setups work out of the box.
func NewInstitutionHolder() (*InstitutionHolder, error) {
	v := viper.New()

	v.SetConfigName("institution")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/netra/config")
	v.AddConfigPath("/etc/netra")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NETRA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultInstitutionConfig()
		v.SetDefault("institution.name", defaults.Name)
		v.SetDefault("institution.address", defaults.Address)
		v.SetDefault("institution.email", defaults.Email)
		v.SetDefault("institution.phone", defaults.Phone)
		v.SetDefault("institution.website", defaults.Website)
		v.SetDefault("institution.cardOutputDir", defaults.CardOutputDir)
		v.SetDefault("institution.consentText", defaults.ConsentText)
	}

	holder := &InstitutionHolder{}
	if err := holder.load(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if err := holder.load(v); err != nil {
			log.Printf("institution config reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

func (h *InstitutionHolder) load(v *viper.Viper) error {
	var cfg InstitutionConfig
	if err := v.UnmarshalKey("institution", &cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg = DefaultInstitutionConfig()
	}
	h.current.Store(cfg)
	return nil
}

// Current returns the latest institution profile.
func (h *InstitutionHolder) Current() InstitutionConfig {
	if cfg, ok := h.current.Load().(InstitutionConfig); ok {
		return cfg
	}
	return DefaultInstitutionConfig()
}
