package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSockets returns a handler that streams every verdict record to
// every connected client.
//
// The firehose isn't filtered.  Each client gets everything.
func (s *Service) WebSockets(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case x := <-s.firehose:
				s.conns.Range(func(k, v interface{}) bool {
					c := v.(chan interface{})
					select {
					case c <- x:
					default:
						log.Printf("%v firehose blocked", k)
					}
					return true
				})
			}
		}
	}()

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		firehose := make(chan interface{}, 32)

		id := c.RemoteAddr().String()
		s.conns.Store(id, firehose)
		defer s.conns.Delete(id)

		done := make(chan bool)
		defer close(done)

		go func() {
			for {
				select {
				case <-done:
					return
				case <-ctx.Done():
					return
				case x := <-firehose:
					js, err := json.Marshal(&x)
					if err != nil {
						log.Printf("firehose Marshal error %v on %#v", err, x)
						continue
					}
					if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
						log.Println("firehose write:", err)
					}
				}
			}
		}()

		// Clients don't say anything.  We read to notice when
		// they leave.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				log.Println("read error", err)
				break
			}
		}
	}
}

// Listeners returns the number of connected WebSocket clients.
func (s *Service) Listeners() int {
	n := 0
	s.conns.Range(func(k, v interface{}) bool {
		n++
		return true
	})
	return n
}
