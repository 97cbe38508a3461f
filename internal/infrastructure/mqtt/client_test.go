package mqtt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stagewire/cuemesh/internal/infrastructure/config"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "cuemesh-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain broker URL", func(t *testing.T) {
		opts := buildClientOptions(testMQTTConfig())

		if len(opts.Servers) != 1 {
			t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
		}
		if got := opts.Servers[0].String(); got != "tcp://localhost:1883" {
			t.Errorf("broker URL = %q, want tcp://localhost:1883", got)
		}
		if opts.ClientID != "cuemesh-test" {
			t.Errorf("ClientID = %q, want cuemesh-test", opts.ClientID)
		}
	})

	t.Run("tls scheme", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Broker.TLS = true

		opts := buildClientOptions(cfg)

		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
		if opts.TLSConfig == nil {
			t.Error("expected TLS config to be set")
		}
	})

	t.Run("credentials applied when set", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Auth.Username = "operator"
		cfg.Auth.Password = "hunter2"

		opts := buildClientOptions(cfg)

		if opts.Username != "operator" {
			t.Errorf("Username = %q, want operator", opts.Username)
		}
		if opts.Password != "hunter2" {
			t.Error("Password not applied")
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	cfg := testMQTTConfig()
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if opts.WillTopic != "cuemesh/system/status" {
		t.Errorf("WillTopic = %q, want cuemesh/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("LWT should be retained")
	}
	if !bytes.Contains(opts.WillPayload, []byte(`"status":"offline"`)) {
		t.Errorf("WillPayload = %s, want offline status", opts.WillPayload)
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"current", topics.StateCurrent(), "cuemesh/state/current"},
		{"nodes", topics.StateNodes(), "cuemesh/state/nodes"},
		{"pointer", topics.StatePointer(), "cuemesh/state/pointer"},
		{"status", topics.SystemStatus(), "cuemesh/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublishValidation(t *testing.T) {
	// A zero-value client is never connected, so the validation paths
	// can be exercised without a broker.
	c := &Client{cfg: testMQTTConfig()}

	t.Run("empty topic", func(t *testing.T) {
		err := c.Publish("", []byte("x"), 1, false)
		if !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
		}
	})

	t.Run("invalid qos", func(t *testing.T) {
		err := c.Publish("cuemesh/state/current", []byte("x"), 3, false)
		if !errors.Is(err, ErrInvalidQoS) {
			t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
		}
	})

	t.Run("oversize payload", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), maxPayloadSize+1)
		err := c.Publish("cuemesh/state/current", payload, 1, false)
		if !errors.Is(err, ErrPublishFailed) {
			t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
		}
	})

	t.Run("not connected", func(t *testing.T) {
		err := c.Publish("cuemesh/state/current", []byte("x"), 1, false)
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("Publish() error = %v, want ErrNotConnected", err)
		}
	})
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("cuemesh-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload = %s", online)
	}
	if !strings.Contains(online, "cuemesh-test") {
		t.Errorf("online payload missing client id: %s", online)
	}

	offline := buildOfflinePayload("cuemesh-test")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}
