/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends verdicts somewhere.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close()
}

// MQTTPublisher publishes each verdict to a fixed topic.
type MQTTPublisher struct {
	Client  mqtt.Client
	Topic   string
	QoS     byte
	Quiesce uint
}

func NewMQTTPublisher(c *MQTTConfig) *MQTTPublisher {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.Broker)
	opts.SetClientID(c.ClientId)
	opts.SetKeepAlive(10 * time.Second)
	opts.Username = c.Username
	opts.Password = c.Password
	opts.AutoReconnect = true
	opts.CleanSession = true

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	return &MQTTPublisher{
		Client:  mqtt.NewClient(opts),
		Topic:   c.Topic,
		QoS:     c.QoS,
		Quiesce: c.Quiesce,
	}
}

// Start creates the MQTT session.
func (p *MQTTPublisher) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker")
	if token := p.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")
	return nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, payload []byte) error {
	token := p.Client.Publish(p.Topic, p.QoS, false, payload)
	token.Wait()
	return token.Error()
}

// Close terminates the MQTT session.
func (p *MQTTPublisher) Close() {
	log.Printf("Disconnecting")
	p.Client.Disconnect(p.Quiesce)
}
