package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gridopt/tnep/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker        string      `json:"broker"`
	ClientID      string      `json:"client_id"`
	Username      string      `json:"username"`
	Password      string      `json:"password"`
	RequestTopic  string      `json:"request_topic"`
	ResponseTopic string      `json:"response_topic"`
	UseTLS        bool        `json:"use_tls"`
	ClientCert    string      `json:"client_cert"`
	ClientKey     string      `json:"client_key"`
	CABundle      string      `json:"ca_bundle"`
	QoS           byte        `json:"qos"`
	MaxRetries    int         `json:"max_retries"`
	BackoffMS     int         `json:"backoff_ms"`
	TLSConfig     *tls.Config `json:"-"`
}

// RequestHandler is invoked for every decoded solve request.
type RequestHandler func(req SolveRequest)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Client listens for solve requests and publishes responses over MQTT.
type Client struct {
	cli           pahoClient
	requestTopic  string
	responseTopic string
	qos           byte
	maxRetries    int
	backoff       time.Duration
	log           logger.Logger

	mu      sync.Mutex
	handler RequestHandler
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClient connects to the MQTT broker and subscribes to the request topic.
// The handler runs on the Paho callback goroutine.
func NewClient(cfg Config, handler RequestHandler) (*Client, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt-client")
	c := &Client{
		requestTopic:  cfg.RequestTopic,
		responseTopic: cfg.ResponseTopic,
		qos:           cfg.QoS,
		maxRetries:    cfg.MaxRetries,
		backoff:       time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:           log,
		handler:       handler,
	}

	opts.OnConnect = func(pc paho.Client) {
		log.Infof("MQTT connected")
		if token := pc.Subscribe(c.requestTopic, c.qos, c.onRequest); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
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

func (c *Client) onRequest(_ paho.Client, msg paho.Message) {
	var req SolveRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		c.log.Errorf("failed to decode solve request: %v", err)
		return
	}
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		c.log.Warnf("dropping request %s: no handler", req.RequestID)
		return
	}
	c.log.Infof("received solve request %s", req.RequestID)
	h(req)
}

// PublishResponse sends the solve outcome on the response topic, retrying
// with exponential backoff on transient publish failures.
func (c *Client) PublishResponse(resp SolveResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 3
	}
	if c.backoff <= 0 {
		c.backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		token := c.cli.Publish(c.responseTopic, c.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			c.log.Infof("published response %s to %s", resp.RequestID, c.responseTopic)
			return nil
		}
		c.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(c.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
