package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/storage"
	"github.com/Comcast/corrcheck/storage/bolt"

	"github.com/gorilla/websocket"
)

const testdata = "../../loader/testdata/"

// recorder is a Publisher that keeps what it's given.
type recorder struct {
	c chan []byte
}

func (r *recorder) Publish(ctx context.Context, payload []byte) error {
	select {
	case r.c <- payload:
	default:
	}
	return nil
}

func (r *recorder) Close() {
}

func read(t *testing.T, name string) []byte {
	bs, err := ioutil.ReadFile(testdata + name)
	if err != nil {
		t.Fatal(err)
	}
	return bs
}

func testService(t *testing.T, cfg *Config) (*Service, *recorder, func()) {
	dir, err := ioutil.TempDir("", "checkd")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	db, err := bolt.NewStorage(filepath.Join(dir, "checkd.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err = db.Open(ctx); err != nil {
		t.Fatal(err)
	}
	f, err := loader.NewFetcher()
	if err != nil {
		t.Fatal(err)
	}
	pub := &recorder{c: make(chan []byte, 8)}
	s := newService(cfg)
	s.Storage = db
	s.Fetcher = f
	s.Publisher = pub
	return s, pub, func() {
		s.Close(ctx)
		os.RemoveAll(dir)
	}
}

func TestCheckSource(t *testing.T) {
	s, pub, done := testService(t, &Config{})
	defer done()

	ctx := context.Background()
	v, err := s.CheckSource(ctx, "nofresh", read(t, "nofresh.json"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Record.Valid || v.Report.Count(core.NoFreshCorrelationValue) != 1 {
		t.Fatal(v.Report)
	}
	if v.Record.Digest != storage.Digest(read(t, "nofresh.json")) {
		t.Fatal(v.Record.Digest)
	}

	select {
	case js := <-pub.c:
		var r storage.Record
		if err := json.Unmarshal(js, &r); err != nil {
			t.Fatal(err)
		}
		if r.Program != "nofresh" || r.Valid {
			t.Fatalf("%#v", r)
		}
	default:
		t.Fatal("nothing published")
	}

	rs, err := s.Storage.GetHistory(ctx, "nofresh")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 {
		t.Fatal(len(rs))
	}

	if _, err = s.CheckSource(ctx, "bad", []byte("program: 42")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestRecheckAll(t *testing.T) {
	s, _, done := testService(t, &Config{
		Programs: []string{
			testdata + "login.yaml",
			testdata + "nofresh.json",
			testdata + "missing.yaml",
		},
	})
	defer done()

	ctx := context.Background()
	if err := s.RecheckAll(ctx); err != nil {
		t.Fatal(err)
	}
	ps, err := s.Storage.Programs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 {
		t.Fatal(ps)
	}
}

func TestHTTP(t *testing.T) {
	s, _, done := testService(t, &Config{
		WebSockets: true,
		Programs:   []string{testdata + "nofresh.json"},
	})
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := httptest.NewServer(s.Handler(ctx))
	defer ts.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	for i := 0; s.Listeners() == 0; i++ {
		if i == 100 {
			t.Fatal("no listener")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/check?program=login", "application/yaml", bytes.NewReader(read(t, "login.yaml")))
	if err != nil {
		t.Fatal(err)
	}
	var v Verdict
	err = json.NewDecoder(resp.Body).Decode(&v)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !v.Report.Valid {
		t.Fatalf("%d %#v", resp.StatusCode, v.Report)
	}

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var r storage.Record
	if err = json.Unmarshal(msg, &r); err != nil {
		t.Fatal(err)
	}
	if r.Program != "login" || !r.Valid {
		t.Fatalf("%s", msg)
	}

	resp, err = http.Get(ts.URL + "/history?program=login")
	if err != nil {
		t.Fatal(err)
	}
	var rs []*storage.Record
	err = json.NewDecoder(resp.Body).Decode(&rs)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 {
		t.Fatal(len(rs))
	}

	resp, err = http.Post(ts.URL+"/check", "application/yaml", strings.NewReader("format: 2.0.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatal(resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/check")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatal(resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/report?program=" + testdata + "nofresh.json")
	if err != nil {
		t.Fatal(err)
	}
	page, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "**Invalid**") && !strings.Contains(string(page), "<strong>Invalid</strong>") {
		t.Fatalf("%s", page)
	}
}

func TestUnconfiguredPrograms(t *testing.T) {
	dir, err := ioutil.TempDir("", "checkd-refs")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	secret := filepath.Join(dir, "secret.txt")
	if err = ioutil.WriteFile(secret, []byte("hunter2"), 0644); err != nil {
		t.Fatal(err)
	}

	login := testdata + "login.yaml"
	s, _, done := testService(t, &Config{
		Programs: []string{login},
	})
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := httptest.NewServer(s.Handler(ctx))
	defer ts.Close()

	do := func(method, endpoint, ref string) (int, string) {
		req, err := http.NewRequest(method, ts.URL+endpoint+"?program="+ref, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return resp.StatusCode, string(body)
	}

	for _, ref := range []string{secret, "file://" + secret, testdata + "nofresh.json"} {
		for _, x := range []struct{ method, endpoint string }{
			{"POST", "/recheck"},
			{"GET", "/report"},
		} {
			status, body := do(x.method, x.endpoint, ref)
			if status != http.StatusNotFound {
				t.Fatalf("%s %s %s: %d", x.method, x.endpoint, ref, status)
			}
			if strings.Contains(body, "hunter2") {
				t.Fatalf("%s %s %s: %s", x.method, x.endpoint, ref, body)
			}
		}
	}

	if status, body := do("POST", "/recheck", login); status != http.StatusOK {
		t.Fatalf("%d %s", status, body)
	}
	if status, body := do("GET", "/report", login); status != http.StatusOK {
		t.Fatalf("%d %s", status, body)
	}

	ps, err := s.Storage.Programs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0] != login {
		t.Fatal(ps)
	}
}

// TestConcurrentAnnounce is most useful with -race.
func TestConcurrentAnnounce(t *testing.T) {
	s, _, done := testService(t, &Config{WebSockets: true})
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := read(t, "login.yaml")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Handler(ctx)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			if _, err := s.CheckSource(ctx, "login", src); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	rs, err := s.Storage.GetHistory(ctx, "login")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 10 {
		t.Fatal(len(rs))
	}
}

func TestWatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "checkd-watch")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "login.yaml")
	src := read(t, "login.yaml")
	if err = ioutil.WriteFile(filename, src, 0644); err != nil {
		t.Fatal(err)
	}

	s, pub, done := testService(t, &Config{
		Programs: []string{filename},
		Watch:    true,
	})
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := s.Watch(ctx); err != nil {
			t.Error(err)
		}
	}()

	// Give the watcher a moment to start.
	time.Sleep(200 * time.Millisecond)

	if err = ioutil.WriteFile(filename, src, 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case js := <-pub.c:
		if !strings.Contains(string(js), "login.yaml") {
			t.Fatalf("%s", js)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no recheck")
	}
}

func TestLocalFile(t *testing.T) {
	if _, ok := localFile("https://example.com/x.yaml"); ok {
		t.Fatal("remote")
	}
	name, ok := localFile("file:///tmp/x.yaml")
	if !ok || name != "/tmp/x.yaml" {
		t.Fatal(name)
	}
}
