package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/retailops/fleetalloc/core/events"
	"github.com/retailops/fleetalloc/core/model"
	"github.com/retailops/fleetalloc/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker          string          `json:"broker"`
	ClientID        string          `json:"client_id"`
	Username        string          `json:"username"`
	Password        string          `json:"password"`
	RequestTopic    string          `json:"request_topic"`
	AssignmentTopic string          `json:"assignment_topic"`
	StatusTopic     string          `json:"status_topic"`
	UseTLS          bool            `json:"use_tls"`
	ClientCert      string          `json:"client_cert"`
	ClientKey       string          `json:"client_key"`
	CABundle        string          `json:"ca_bundle"`
	AuthMethod      string          `json:"auth_method"`
	QoS             map[string]byte `json:"qos"`
	LWTTopic        string          `json:"lwt_topic"`
	LWTPayload      string          `json:"lwt_payload"`
	LWTQoS          byte            `json:"lwt_qos"`
	LWTRetain       bool            `json:"lwt_retain"`
	MaxRetries      int             `json:"max_retries"`
	BackoffMS       int             `json:"backoff_ms"`
	TLSConfig       *tls.Config     `json:"-"`
}

// RequestHandler receives restock requests decoded from the request topic.
type RequestHandler func(model.RestockRequest)

// pahoClient is the subset of the Paho client the publisher needs; it is
// swapped out in tests.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes allocation events and consumes restock requests over
// MQTT using Eclipse Paho.
type PahoClient struct {
	cli             pahoClient
	requestTopic    string
	assignmentTopic string
	statusTopic     string
	qos             map[string]byte
	handler         RequestHandler
	logger          logger.Logger
	maxRetries      int
	backoff         time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker. When handler is non-nil the
// client subscribes to the request topic and feeds decoded restock requests
// to it; the subscription is re-established on every reconnect.
func NewPahoClient(cfg Config, handler RequestHandler) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	pc := &PahoClient{
		requestTopic:    cfg.RequestTopic,
		assignmentTopic: cfg.AssignmentTopic,
		statusTopic:     cfg.StatusTopic,
		qos:             cfg.QoS,
		handler:         handler,
		logger:          logger,
		maxRetries:      cfg.MaxRetries,
		backoff:         time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.assignmentTopic == "" {
		pc.assignmentTopic = "fleet/assignments"
	}
	if pc.statusTopic == "" {
		pc.statusTopic = "fleet/status"
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if pc.handler == nil || pc.requestTopic == "" {
			return
		}
		qos := byte(0)
		if q, ok := pc.qos["request"]; ok {
			qos = q
		}
		if token := c.Subscribe(pc.requestTopic, qos, pc.onRequest); token.Wait() && token.Error() != nil {
			logger.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) onRequest(_ paho.Client, msg paho.Message) {
	var req model.RestockRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		p.logger.Errorf("failed to decode restock request: %v", err)
		return
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	p.logger.Infof("received request %s from store %s", req.RequestID, req.StoreID)
	p.handler(req)
}

// PublishAssignment publishes the assignment on the store-scoped topic.
func (p *PahoClient) PublishAssignment(ev events.AssignmentEvent) error {
	topic := fmt.Sprintf("%s/%s", p.assignmentTopic, ev.StoreID)
	return p.publish(topic, "assignment", ev)
}

// PublishStatus publishes the status transition on the store-scoped topic.
func (p *PahoClient) PublishStatus(ev events.RequestStatusEvent) error {
	topic := fmt.Sprintf("%s/%s", p.statusTopic, ev.StoreID)
	return p.publish(topic, "status", ev)
}

func (p *PahoClient) publish(topic, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	qos := byte(0)
	if q, ok := p.qos[kind]; ok {
		qos = q
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s to %s", kind, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
