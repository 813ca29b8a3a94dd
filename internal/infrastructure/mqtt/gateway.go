package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/mxvision/iothub-ota-service/internal/config"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
)

const (
	connectTimeout = 4 * time.Second
	tokenTimeout   = 5 * time.Second
)

// Gateway is the paho-backed transport. It owns the set of subscribed topics:
// the set is mutated only through Subscribe and replayed on reconnect.
type Gateway struct {
	client  pahomqtt.Client
	qos     byte
	metrics *metrics.OTAMetrics

	mu         sync.Mutex
	subscribed map[string]struct{}

	inbound chan domain.InboundMessage
}

func NewGateway(cfg config.MQTTBroker, m *metrics.OTAMetrics) *Gateway {
	g := &Gateway{
		qos:        cfg.DownstreamQoS,
		metrics:    m,
		subscribed: make(map[string]struct{}),
		inbound:    make(chan domain.InboundMessage, cfg.InboundQueue),
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientIDPrefix, uuid.NewString()[:8])).
		SetCleanSession(true).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetryInterval(time.Second).
		SetOnConnectHandler(g.onConnect).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			slog.Warn("mqtt connection lost", "error", err.Error())
		})

	g.client = pahomqtt.NewClient(opts)
	return g
}

func (g *Gateway) Connect() error {
	token := g.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (g *Gateway) Disconnect() {
	g.client.Disconnect(250)
}

func (g *Gateway) IsConnected() bool {
	return g.client.IsConnectionOpen()
}

func (g *Gateway) Messages() <-chan domain.InboundMessage {
	return g.inbound
}

// Publish sends a payload at the given QoS, waiting on the token for a bounded
// time. Callers treat failures as non-fatal.
func (g *Gateway) Publish(topic string, payload []byte, qos byte) error {
	token := g.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe adds topics to the owned set and subscribes the new ones.
func (g *Gateway) Subscribe(topics ...string) error {
	g.mu.Lock()
	fresh := make(map[string]byte)
	for _, topic := range topics {
		if _, ok := g.subscribed[topic]; !ok {
			fresh[topic] = g.qos
		}
	}
	g.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	token := g.client.SubscribeMultiple(fresh, g.onMessage)
	if !token.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("mqtt subscribe timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe: %w", err)
	}

	g.mu.Lock()
	for topic := range fresh {
		g.subscribed[topic] = struct{}{}
	}
	g.mu.Unlock()

	slog.Info("mqtt subscribed", "topics", len(fresh))
	return nil
}

// onConnect replays the subscription set after a reconnect.
func (g *Gateway) onConnect(client pahomqtt.Client) {
	g.mu.Lock()
	replay := make(map[string]byte, len(g.subscribed))
	for topic := range g.subscribed {
		replay[topic] = g.qos
	}
	g.mu.Unlock()

	slog.Info("mqtt connected", "resubscribing", len(replay))
	if len(replay) == 0 {
		return
	}
	token := client.SubscribeMultiple(replay, g.onMessage)
	if !token.WaitTimeout(tokenTimeout) || token.Error() != nil {
		slog.Error("mqtt resubscribe failed", "error", fmt.Sprint(token.Error()))
	}
}

// onMessage feeds the bounded inbound queue. When the queue is full the oldest
// message is discarded so fresh telemetry keeps flowing; drops are metered.
func (g *Gateway) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	m := domain.InboundMessage{Topic: msg.Topic(), Payload: msg.Payload()}
	for {
		select {
		case g.inbound <- m:
			return
		default:
		}
		select {
		case <-g.inbound:
			if g.metrics != nil {
				g.metrics.InboundDroppedTotal.Inc()
			}
		default:
		}
	}
}
