package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
)

// ErrBrokerNotConnected is reported while the MQTT client has no live session.
var ErrBrokerNotConnected = errors.New("mqtt broker is not connected")

// MQTTClient is the part of mqtt.Client the publisher relies on.
type MQTTClient interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// TopicMessage is one MQTT publication.
type TopicMessage struct {
	Topic   string
	Payload string
}

// SensorTopics maps a state onto the topics the home dashboard subscribes to.
// Payloads are JSON scalars.
func SensorTopics(state simDomain.SensorState) []TopicMessage {
	return []TopicMessage{
		{Topic: "home/sensors/temperature", Payload: formatFloat(state.Temperature)},
		{Topic: "home/sensors/humidity", Payload: formatFloat(state.Humidity)},
		{Topic: "home/sensors/motion", Payload: strconv.FormatBool(state.Motion)},
		{Topic: "home/sensors/light", Payload: formatFloat(state.LightLevel)},
		{Topic: "home/sensors/smoke", Payload: strconv.FormatBool(state.SmokeAlarm)},
		{Topic: "home/security/doors/front/state", Payload: strconv.FormatBool(state.DoorClosed)},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// MQTTPublisher mirrors sensor readings to an MQTT broker with QoS 0.
type MQTTPublisher struct {
	client  MQTTClient
	timeout time.Duration
}

// Send publishes every sensor topic, sharing one timeout across all of them.
// An earlier deadline on ctx takes precedence.
func (p *MQTTPublisher) Send(ctx context.Context, state simDomain.SensorState) simDomain.SendResult {
	start := time.Now()
	if !p.client.IsConnected() {
		return simDomain.Unreachable(start, 0, ErrBrokerNotConnected)
	}

	deadline := start.Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	for _, msg := range SensorTopics(state) {
		if err := ctx.Err(); err != nil {
			return simDomain.Unreachable(start, time.Since(start), err)
		}

		token := p.client.Publish(msg.Topic, 0, false, msg.Payload)
		if !token.WaitTimeout(time.Until(deadline)) {
			return simDomain.Unreachable(start, time.Since(start),
				fmt.Errorf("publishing to %s: %w", msg.Topic, context.DeadlineExceeded))
		}
		if err := token.Error(); err != nil {
			return simDomain.Unreachable(start, time.Since(start),
				fmt.Errorf("publishing to %s: %w", msg.Topic, err))
		}
	}

	return simDomain.Success(start, time.Since(start))
}

// NewMQTTPublisher creates a publisher over an already configured client.
func NewMQTTPublisher(client MQTTClient, timeout simDomain.SendTimeout) *MQTTPublisher {
	return &MQTTPublisher{client: client, timeout: time.Duration(timeout)}
}

// NewMQTTClient configures a paho client that keeps reconnecting in the
// background, so a missing broker never blocks the simulation.
func NewMQTTClient(broker string, deviceID simDomain.DeviceID, logger simDomain.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("simulator-%s", deviceID))
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("connected to MQTT broker %s", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Error("lost connection to MQTT broker %s: %s", broker, err.Error())
	})

	return mqtt.NewClient(opts)
}

// RunMQTTSession connects the client and holds the session until ctx ends.
func RunMQTTSession(ctx context.Context, client mqtt.Client, logger simDomain.Logger) error {
	// with ConnectRetry the token completes only once connected, so do not wait on it
	token := client.Connect()
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			logger.Error("MQTT connect error: %s", err.Error())
		}
	}()

	<-ctx.Done()
	logger.Info("disconnecting from MQTT broker...")
	client.Disconnect(250)
	return nil
}
