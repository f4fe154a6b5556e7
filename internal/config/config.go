// Package config loads tool settings from an optional TOML file with
// environment overrides for everything captured from the app session.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joshp123/alexasweep/internal/alexa"
)

type Settings struct {
	LogLevel string

	Alexa    AlexaSettings
	Session  SessionSettings
	Sweep    SweepSettings
	Snapshot SnapshotSettings
	MQTT     MQTTSettings
	Metrics  MetricsSettings
}

// AlexaSettings locates the retail API. Host wins over Region when
// both are set.
type AlexaSettings struct {
	Host         string
	Region       string
	SkillID      string
	DeletePrefix string
	Timeout      time.Duration
}

// SessionSettings carries the captured app session. Cookie and
// AppToken can come from files so the secrets stay out of the TOML.
type SessionSettings struct {
	Cookie       string
	CookieFile   string
	CSRF         string
	AppToken     string
	AppTokenFile string
	UserAgent    string
}

type SweepSettings struct {
	Sources  []string
	Filter   string
	Throttle time.Duration
}

type SnapshotSettings struct {
	Dir string
	S3  S3Settings
}

type S3Settings struct {
	Endpoint      string
	Bucket        string
	Prefix        string
	AccessKeyFile string
	SecretKeyFile string
	Region        string
}

type MQTTSettings struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
}

type MetricsSettings struct {
	PushGateway string
	Job         string
}

// Load reads settings from the given TOML file, or from an optional
// alexasweep.toml in the working directory when path is empty.
// ALEXA_* environment variables override whatever the file says, and
// file-sourced secrets are resolved before returning.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("alexasweep")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	settings := &Settings{
		LogLevel: v.GetString("log_level"),
		Alexa: AlexaSettings{
			Host:         v.GetString("alexa.host"),
			Region:       v.GetString("alexa.region"),
			SkillID:      v.GetString("alexa.skill_id"),
			DeletePrefix: v.GetString("alexa.delete_prefix"),
			Timeout:      v.GetDuration("alexa.timeout"),
		},
		Session: SessionSettings{
			CookieFile:   v.GetString("session.cookie_file"),
			AppTokenFile: v.GetString("session.app_token_file"),
			UserAgent:    v.GetString("session.user_agent"),
		},
		Sweep: SweepSettings{
			Sources:  v.GetStringSlice("sweep.sources"),
			Filter:   v.GetString("sweep.filter"),
			Throttle: v.GetDuration("sweep.throttle"),
		},
		Snapshot: SnapshotSettings{
			Dir: v.GetString("snapshot.dir"),
			S3: S3Settings{
				Endpoint:      v.GetString("snapshot.s3.endpoint"),
				Bucket:        v.GetString("snapshot.s3.bucket"),
				Prefix:        v.GetString("snapshot.s3.prefix"),
				AccessKeyFile: v.GetString("snapshot.s3.access_key_file"),
				SecretKeyFile: v.GetString("snapshot.s3.secret_key_file"),
				Region:        v.GetString("snapshot.s3.region"),
			},
		},
		MQTT: MQTTSettings{
			Broker:      v.GetString("mqtt.broker"),
			Username:    v.GetString("mqtt.username"),
			Password:    v.GetString("mqtt.password"),
			TopicPrefix: v.GetString("mqtt.topic_prefix"),
		},
		Metrics: MetricsSettings{
			PushGateway: v.GetString("metrics.push_gateway"),
			Job:         v.GetString("metrics.job"),
		},
	}
	applyDefaults(settings)
	applyEnv(settings)
	if err := settings.resolveSecrets(); err != nil {
		return nil, err
	}
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Metrics.Job == "" {
		s.Metrics.Job = "alexasweep"
	}
}

func applyEnv(s *Settings) {
	for env, target := range map[string]*string{
		"ALEXA_HOST":         &s.Alexa.Host,
		"ALEXA_DELETE_SKILL": &s.Alexa.DeletePrefix,
		"ALEXA_COOKIE":       &s.Session.Cookie,
		"ALEXA_CSRF":         &s.Session.CSRF,
		"ALEXA_APP":          &s.Session.AppToken,
		"ALEXA_USER_AGENT":   &s.Session.UserAgent,
	} {
		if value := os.Getenv(env); value != "" {
			*target = value
		}
	}
}

func (s *Settings) resolveSecrets() error {
	var err error
	if s.Session.Cookie == "" && s.Session.CookieFile != "" {
		if s.Session.Cookie, err = readSecretFile(s.Session.CookieFile); err != nil {
			return fmt.Errorf("read cookie file: %w", err)
		}
	}
	if s.Session.AppToken == "" && s.Session.AppTokenFile != "" {
		if s.Session.AppToken, err = readSecretFile(s.Session.AppTokenFile); err != nil {
			return fmt.Errorf("read app token file: %w", err)
		}
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Validate enforces required invariants beyond TOML typing. Source
// names are checked here so a typo fails before enumeration starts.
func (s *Settings) Validate() error {
	if s.Session.Cookie == "" {
		return fmt.Errorf("alexa cookie is required (ALEXA_COOKIE or session.cookie_file)")
	}
	if s.Session.AppToken == "" {
		return fmt.Errorf("alexa app token is required (ALEXA_APP or session.app_token_file)")
	}
	if s.Alexa.Host == "" && s.Alexa.Region == "" {
		return fmt.Errorf("either alexa.host or alexa.region is required (ALEXA_HOST)")
	}
	if s.Sweep.Throttle < 0 {
		return fmt.Errorf("sweep.throttle must not be negative")
	}
	sources, err := s.SweepSources()
	if err != nil {
		return err
	}
	needsPrefix := len(sources) == 0
	for _, src := range sources {
		if src == alexa.SourceEntities {
			needsPrefix = true
		}
	}
	if needsPrefix && s.Alexa.DeletePrefix == "" {
		return fmt.Errorf("alexa.delete_prefix is required for the entities source (ALEXA_DELETE_SKILL)")
	}
	return nil
}

// AlexaConfig maps the settings onto the API client configuration.
func (s *Settings) AlexaConfig() alexa.Config {
	return alexa.Config{
		Host:         s.Alexa.Host,
		Region:       s.Alexa.Region,
		SkillID:      s.Alexa.SkillID,
		DeletePrefix: s.Alexa.DeletePrefix,
		Timeout:      s.Alexa.Timeout,
	}
}

// NewSession builds the captured app session.
func (s *Settings) NewSession() (*alexa.Session, error) {
	return alexa.NewSession(s.Session.Cookie, s.Session.CSRF, s.Session.AppToken, s.Session.UserAgent)
}

// SweepSources parses the configured source names. An empty list means
// the sweep default.
func (s *Settings) SweepSources() ([]alexa.Source, error) {
	sources := make([]alexa.Source, 0, len(s.Sweep.Sources))
	for _, name := range s.Sweep.Sources {
		src, err := alexa.ParseSource(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
