package main

import (
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	src := `
listen: ":9090"
db: checkd.db
schedule: "*/15 * * * *"
watch: true
programs: [a.yaml, "https://example.com/b.yaml"]
fresh:
  sources:
    - service: Vault
      operation: "?op"
mqtt:
  broker: tcp://localhost:1883
`
	c, err := ParseConfig([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if c.Listen != ":9090" || c.DB != "checkd.db" || !c.Watch {
		t.Fatalf("%#v", c)
	}
	if c.MaxHistory != 100 {
		t.Fatal(c.MaxHistory)
	}
	if len(c.Programs) != 2 {
		t.Fatal(c.Programs)
	}
	if c.schedule == nil {
		t.Fatal("no schedule")
	}
	if !c.Fresh.IsFresh("Vault", "mint") {
		t.Fatal("Vault should be fresh")
	}
	if c.Fresh.IsFresh("SecurityUtils", "createSecureToken") {
		t.Fatal("default sources should be replaced")
	}
	if c.MQTT.Topic != "corrcheck/verdicts" || c.MQTT.Quiesce != 100 {
		t.Fatalf("%#v", c.MQTT)
	}
}

func TestParseConfigErrors(t *testing.T) {
	for name, src := range map[string]string{
		"schedule": `schedule: "tacos"`,
		"broker":   "mqtt:\n  topic: x\n",
		"yaml":     "listen: [",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(src)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestParseConfigDefaults(t *testing.T) {
	c, err := ParseConfig([]byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Listen != ":8080" || c.DB != "" || c.schedule != nil || c.MQTT != nil {
		t.Fatalf("%#v", c)
	}
}

func TestUntilNext(t *testing.T) {
	c, err := ParseConfig([]byte(`schedule: "0 * * * *"`))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	d, ok := untilNext(c.schedule, now)
	if !ok {
		t.Fatal("no next")
	}
	if d != 30*time.Minute {
		t.Fatal(d)
	}
}
