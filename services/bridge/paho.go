package bridge

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type pahoClient struct {
	client mqtt.Client
	lost   chan error
}

// dialPaho connects without paho's own reconnect; runLink owns retries.
func dialPaho(ctx context.Context, cfg Config) (Client, error) {
	p := &pahoClient{lost: make(chan error, 1)}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "pixelit"
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker()).SetClientID(clientID)
	if cfg.User != "" {
		opts.SetUsername(cfg.User)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(false)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		select {
		case p.lost <- err:
		default:
		}
	})
	p.client = mqtt.NewClient(opts)

	token := p.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return p, nil
}

func (p *pahoClient) Publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 0, retained, payload)
	token.Wait()
	return token.Error()
}

func (p *pahoClient) Lost() <-chan error { return p.lost }

func (p *pahoClient) Close() { p.client.Disconnect(250) }
