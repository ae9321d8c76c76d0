package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockToken struct {
	err error
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type mockClient struct {
	mu           sync.Mutex
	connected    bool
	connectErr   error
	publishErrs  []error
	publishCalls []published
	subscribed   map[string]paho.MessageHandler
	disconnected bool
}

func (m *mockClient) IsConnected() bool { return m.connected }

func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &mockToken{err: m.connectErr}
	}
	m.connected = true
	return &mockToken{}
}

func (m *mockClient) Disconnect(uint) {
	m.connected = false
	m.disconnected = true
}

func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCalls = append(m.publishCalls, published{topic: topic, qos: qos, payload: payload.([]byte)})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &mockToken{err: err}
	}
	return &mockToken{}
}

func (m *mockClient) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	if m.subscribed == nil {
		m.subscribed = map[string]paho.MessageHandler{}
	}
	m.subscribed[topic] = cb
	return &mockToken{}
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 1 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 1 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

func withMockPaho(t *testing.T, mc *mockClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mc }
	t.Cleanup(func() { newMQTTClient = orig })
}

func testConfig() Config {
	return Config{
		Broker:        "tcp://localhost:1883",
		ClientID:      "tnep-test",
		RequestTopic:  "tnep/request",
		ResponseTopic: "tnep/response",
		QoS:           1,
		MaxRetries:    2,
		BackoffMS:     1,
	}
}

func TestNewClient_ConnectError(t *testing.T) {
	withMockPaho(t, &mockClient{connectErr: errors.New("broker down")})

	_, err := NewClient(testConfig(), nil)
	assert.EqualError(t, err, "broker down")
}

func TestClient_OnRequest(t *testing.T) {
	mc := &mockClient{}
	withMockPaho(t, mc)

	var got SolveRequest
	cli, err := NewClient(testConfig(), func(req SolveRequest) { got = req })
	require.NoError(t, err)

	req := SolveRequest{
		RequestID: "r-1",
		Network:   json.RawMessage(`{"bus": []}`),
		Model:     "transport",
		Options:   map[string]any{"mip_gap": 0.05},
	}
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	cli.onRequest(nil, &mockMessage{topic: "tnep/request", payload: payload})

	assert.Equal(t, "r-1", got.RequestID)
	assert.Equal(t, "transport", got.Model)
	assert.JSONEq(t, `{"bus": []}`, string(got.Network))
	assert.Equal(t, 0.05, got.Options["mip_gap"])
}

func TestClient_OnRequest_BadPayload(t *testing.T) {
	mc := &mockClient{}
	withMockPaho(t, mc)

	called := false
	cli, err := NewClient(testConfig(), func(SolveRequest) { called = true })
	require.NoError(t, err)

	cli.onRequest(nil, &mockMessage{payload: []byte(`{`)})
	assert.False(t, called)
}

func TestClient_PublishResponse(t *testing.T) {
	mc := &mockClient{}
	withMockPaho(t, mc)

	cli, err := NewClient(testConfig(), nil)
	require.NoError(t, err)

	resp := SolveResponse{RequestID: "r-2", Report: json.RawMessage(`{"status":"optimal"}`)}
	require.NoError(t, cli.PublishResponse(resp))

	require.Len(t, mc.publishCalls, 1)
	assert.Equal(t, "tnep/response", mc.publishCalls[0].topic)
	assert.Equal(t, byte(1), mc.publishCalls[0].qos)

	var back SolveResponse
	require.NoError(t, json.Unmarshal(mc.publishCalls[0].payload, &back))
	assert.Equal(t, "r-2", back.RequestID)
}

func TestClient_PublishResponse_RetriesThenSucceeds(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("transient")}}
	withMockPaho(t, mc)

	cli, err := NewClient(testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, cli.PublishResponse(SolveResponse{RequestID: "r-3"}))
	assert.Len(t, mc.publishCalls, 2)
}

func TestClient_PublishResponse_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	mc := &mockClient{publishErrs: []error{boom, boom, boom}}
	withMockPaho(t, mc)

	cli, err := NewClient(testConfig(), nil)
	require.NoError(t, err)

	err = cli.PublishResponse(SolveResponse{RequestID: "r-4"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mc.publishCalls, 3)
}

func TestClient_Close(t *testing.T) {
	mc := &mockClient{}
	withMockPaho(t, mc)

	cli, err := NewClient(testConfig(), nil)
	require.NoError(t, err)

	cli.Close()
	assert.True(t, mc.disconnected)
}

func TestConfig_LoadTLSConfig_Missing(t *testing.T) {
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}
