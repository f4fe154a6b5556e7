package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshp123/alexasweep/internal/alexa"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	t.Setenv("ALEXA_COOKIE", "csrf=tok; session-id=1")
	t.Setenv("ALEXA_APP", "app-token")

	settings, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", settings.LogLevel)
	require.Equal(t, "alexasweep", settings.Metrics.Job)
	require.Equal(t, "csrf=tok; session-id=1", settings.Session.Cookie)
	require.Equal(t, "app-token", settings.Session.AppToken)
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alexasweep.toml")
	toml := `
log_level = "debug"

[alexa]
host = "https://alexa.amazon.ca"
skill_id = "amzn1.ask.1p.smarthome"
delete_prefix = "SKILL_6f7i8u"
timeout = "20s"

[session]
user_agent = "custom-agent"

[sweep]
sources = ["entities", "endpoints"]
filter = "Home Assistant"
throttle = "250ms"

[snapshot]
dir = "snapshots"

[snapshot.s3]
endpoint = "https://minio.local:9000"
bucket = "alexasweep"

[mqtt]
broker = "tcp://mqtt.local:1883"
topic_prefix = "home/alexasweep"

[metrics]
push_gateway = "http://pushgateway:9091"
job = "cleanup"
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o600))

	settings, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", settings.LogLevel)
	require.Equal(t, "https://alexa.amazon.ca", settings.Alexa.Host)
	require.Equal(t, "SKILL_6f7i8u", settings.Alexa.DeletePrefix)
	require.Equal(t, 20*time.Second, settings.Alexa.Timeout)
	require.Equal(t, "custom-agent", settings.Session.UserAgent)
	require.Equal(t, []string{"entities", "endpoints"}, settings.Sweep.Sources)
	require.Equal(t, "Home Assistant", settings.Sweep.Filter)
	require.Equal(t, 250*time.Millisecond, settings.Sweep.Throttle)
	require.Equal(t, "snapshots", settings.Snapshot.Dir)
	require.Equal(t, "alexasweep", settings.Snapshot.S3.Bucket)
	require.Equal(t, "tcp://mqtt.local:1883", settings.MQTT.Broker)
	require.Equal(t, "home/alexasweep", settings.MQTT.TopicPrefix)
	require.Equal(t, "http://pushgateway:9091", settings.Metrics.PushGateway)
	require.Equal(t, "cleanup", settings.Metrics.Job)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alexasweep.toml")
	require.NoError(t, os.WriteFile(path, []byte("[alexa]\nhost = \"https://alexa.amazon.com\"\n"), 0o600))

	t.Setenv("ALEXA_HOST", "https://alexa.amazon.co.uk")
	t.Setenv("ALEXA_COOKIE", "csrf=tok")
	t.Setenv("ALEXA_APP", "app-token")
	t.Setenv("ALEXA_DELETE_SKILL", "SKILL_abc")

	settings, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://alexa.amazon.co.uk", settings.Alexa.Host)
	require.Equal(t, "SKILL_abc", settings.Alexa.DeletePrefix)
	require.Equal(t, "csrf=tok", settings.Session.Cookie)
	require.Equal(t, "app-token", settings.Session.AppToken)
}

func TestSecretFiles(t *testing.T) {
	dir := t.TempDir()
	cookiePath := filepath.Join(dir, "cookie")
	appPath := filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(cookiePath, []byte("csrf=tok; session-id=1\n"), 0o600))
	require.NoError(t, os.WriteFile(appPath, []byte("app-token\n"), 0o600))

	path := filepath.Join(dir, "alexasweep.toml")
	toml := fmt.Sprintf("[session]\ncookie_file = %q\napp_token_file = %q\n", cookiePath, appPath)
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o600))

	settings, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "csrf=tok; session-id=1", settings.Session.Cookie)
	require.Equal(t, "app-token", settings.Session.AppToken)
}

func TestSecretFileMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alexasweep.toml")
	toml := fmt.Sprintf("[session]\ncookie_file = %q\n", filepath.Join(dir, "nope"))
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "read cookie file")
}

func TestValidate(t *testing.T) {
	settings := &Settings{
		Session: SessionSettings{Cookie: "csrf=tok", AppToken: "app"},
		Alexa:   AlexaSettings{Region: "na", DeletePrefix: "SKILL_abc"},
		Sweep:   SweepSettings{Sources: []string{"entities"}},
	}
	require.NoError(t, settings.Validate())

	missingCookie := *settings
	missingCookie.Session.Cookie = ""
	require.ErrorContains(t, missingCookie.Validate(), "cookie is required")

	missingApp := *settings
	missingApp.Session.AppToken = ""
	require.ErrorContains(t, missingApp.Validate(), "app token is required")

	missingHost := *settings
	missingHost.Alexa = AlexaSettings{DeletePrefix: "SKILL_abc"}
	require.ErrorContains(t, missingHost.Validate(), "alexa.host or alexa.region")

	badSource := *settings
	badSource.Sweep.Sources = []string{"everything"}
	require.ErrorContains(t, badSource.Validate(), "unknown source")

	negativeThrottle := *settings
	negativeThrottle.Sweep.Throttle = -time.Second
	require.ErrorContains(t, negativeThrottle.Validate(), "throttle")

	missingPrefix := *settings
	missingPrefix.Alexa.DeletePrefix = ""
	require.ErrorContains(t, missingPrefix.Validate(), "delete_prefix")

	endpointsOnly := *settings
	endpointsOnly.Alexa.DeletePrefix = ""
	endpointsOnly.Sweep.Sources = []string{"endpoints"}
	require.NoError(t, endpointsOnly.Validate())
}

func TestBuilders(t *testing.T) {
	settings := &Settings{
		Alexa:   AlexaSettings{Host: "https://alexa.amazon.ca", DeletePrefix: "SKILL_abc", Timeout: 20 * time.Second},
		Session: SessionSettings{Cookie: "csrf=tok; session-id=1", AppToken: "app-token"},
		Sweep:   SweepSettings{Sources: []string{"entities", "graphql"}},
	}

	cfg := settings.AlexaConfig()
	require.Equal(t, "https://alexa.amazon.ca", cfg.Host)
	require.Equal(t, "SKILL_abc", cfg.DeletePrefix)
	require.Equal(t, 20*time.Second, cfg.Timeout)

	sess, err := settings.NewSession()
	require.NoError(t, err)
	require.NotNil(t, sess)

	sources, err := settings.SweepSources()
	require.NoError(t, err)
	require.Equal(t, []alexa.Source{alexa.SourceEntities, alexa.SourceEndpoints}, sources)
}
