package main

import (
	"fmt"
	"io/ioutil"

	"github.com/Comcast/corrcheck/fresh"

	"github.com/gorhill/cronexpr"
	"github.com/jsccast/yaml"
)

// Config is checkd's YAML configuration.
//
//	listen: ":8080"
//	db: checkd.db
//	maxHistory: 100
//	websockets: true
//	schedule: "*/15 * * * *"
//	watch: true
//	programs:
//	  - shop.yaml
//	  - https://example.com/orders.yaml
//	mqtt:
//	  broker: tcp://localhost:1883
//	  topic: corrcheck/verdicts
type Config struct {
	Listen string `json:"listen" yaml:"listen"`

	// DB is a BoltDB filename for verdict history.  Empty means
	// no history.
	DB string `json:"db,omitempty" yaml:"db,omitempty"`

	MaxHistory int `json:"maxHistory,omitempty" yaml:"maxHistory,omitempty"`

	WebSockets bool `json:"websockets,omitempty" yaml:"websockets,omitempty"`

	// Programs are document references that are rechecked at
	// startup, on Schedule, and (for local files) when they
	// change if Watch is set.
	Programs []string `json:"programs,omitempty" yaml:"programs,omitempty"`

	// Schedule is a cron expression.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`

	// Fresh replaces the default fresh-value sources.
	Fresh *fresh.AllowList `json:"fresh,omitempty" yaml:"fresh,omitempty"`

	MQTT *MQTTConfig `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`

	schedule *cronexpr.Expression
}

type MQTTConfig struct {
	Broker   string `json:"broker" yaml:"broker"`
	ClientId string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Topic    string `json:"topic" yaml:"topic"`
	QoS      byte   `json:"qos,omitempty" yaml:"qos,omitempty"`

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint `json:"quiesce,omitempty" yaml:"quiesce,omitempty"`
}

// ParseConfig parses and validates YAML configuration.
func ParseConfig(bs []byte) (*Config, error) {
	c := Config{
		Listen:     ":8080",
		MaxHistory: 100,
	}
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}

	if c.Schedule != "" {
		x, err := cronexpr.Parse(c.Schedule)
		if err != nil {
			return nil, fmt.Errorf("bad schedule %q: %v", c.Schedule, err)
		}
		c.schedule = x
	}

	if c.Fresh != nil {
		if err := c.Fresh.Compile(); err != nil {
			return nil, err
		}
	}

	if m := c.MQTT; m != nil {
		if m.Broker == "" {
			return nil, fmt.Errorf("mqtt needs a broker")
		}
		if m.Topic == "" {
			m.Topic = "corrcheck/verdicts"
		}
		if m.Quiesce == 0 {
			m.Quiesce = 100
		}
	}

	return &c, nil
}

func ReadConfig(filename string) (*Config, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(bs)
}
