// Package announce publishes sweep results over MQTT so home
// dashboards can react to deletions without polling the tool.
package announce

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/joshp123/alexasweep/internal/sweep"
)

var _ sweep.Announcer = (*Publisher)(nil)

// Config locates the broker. Broker takes the paho URL form,
// tcp://host:1883 or ssl://host:8883.
type Config struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
}

// Publisher sends per-deletion and per-run messages to an MQTT broker.
type Publisher struct {
	client mqtt.Client
	prefix string
}

// NewPublisher connects to the broker. The connection retries in the
// background after the initial handshake succeeds.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	prefix := strings.Trim(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = "alexasweep"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if strings.HasPrefix(cfg.Broker, "ssl://") {
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{client: client, prefix: prefix}, nil
}

// Close flushes in-flight messages and drops the connection.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// AnnounceDeletion publishes one deletion outcome to <prefix>/result.
func (p *Publisher) AnnounceDeletion(ctx context.Context, d sweep.Deletion) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.prefix+"/result", payload, false)
}

// AnnounceSummary publishes the run report to <prefix>/summary,
// retained so late subscribers still see the last run.
func (p *Publisher) AnnounceSummary(ctx context.Context, r *sweep.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.prefix+"/summary", payload, true)
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte, retained bool) error {
	token := p.client.Publish(topic, 0, retained, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	}
}

func randomClientID() string {
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)
	return "alexasweep-" + base64.RawURLEncoding.EncodeToString(nonce)
}
