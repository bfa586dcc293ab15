package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremqtt "github.com/kilianp07/pca-scheduler/core/mqtt"
	"github.com/kilianp07/pca-scheduler/core/model"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 || tlsCfg.RootCAs == nil {
		t.Fatalf("tls config incomplete")
	}
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without files")
	}
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if !strings.HasPrefix(opts.ClientID, "pcasched-") {
		t.Fatalf("unexpected generated client id %q", opts.ClientID)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config should be valid: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatalf("expected broker error")
	}
	if err := (Config{Enabled: true, Broker: "tcp://b:1883", QoS: 3}).Validate(); err == nil {
		t.Fatalf("expected qos error")
	}
}

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func sampleSet() model.ScheduleSet {
	s := model.NewSchedule(func(day int) model.Assignment {
		if day == 1 {
			return model.AssignedTo("Alice")
		}
		return model.Unassigned()
	})
	return model.ScheduleSet{ID: uuid.New(), Requested: 1, Trials: 1, Space: 1, Schedules: []model.Schedule{s}}
}

func TestPublishTopicsAndPayload(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", Topic: "ward/rota", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	set := sampleSet()
	if err := pub.Publish(context.Background(), set); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mc.published))
	}
	if mc.published[0].topic != "ward/rota/"+set.ID.String() || mc.published[1].topic != "ward/rota/latest" {
		t.Fatalf("unexpected topics %+v", mc.published)
	}
	if mc.published[0].qos != 1 || !mc.published[0].retained {
		t.Fatalf("qos/retain not applied")
	}
	var decoded model.ScheduleSet
	if err := json.Unmarshal(mc.published[0].payload, &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.ID != set.ID || decoded.Schedules[0] != set.Schedules[0] {
		t.Fatalf("payload does not match set")
	}
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := pub.Publish(context.Background(), sampleSet()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected one retry then one message, got %d publishes", len(mc.published))
	}
}

func TestPublishGivesUp(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	err = pub.Publish(context.Background(), sampleSet())
	if !errors.Is(err, coremqtt.ErrPublish) || !errors.Is(err, fail) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(mc.published))
	}
}

func TestConnectError(t *testing.T) {
	withMock(t, &mockClient{connectErr: fmt.Errorf("refused")})
	if _, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"}); err == nil {
		t.Fatalf("expected connect error")
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	published []struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}
	publishErrs []error
	connectErr  error
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return &dummyToken{err: m.connectErr} }
func (m *mockClient) Disconnect(uint)     {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
