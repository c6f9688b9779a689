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

// Package main is checkd, a service that checks programs on request,
// on a schedule, and when their files change.  Verdicts are kept in
// BoltDB and announced over MQTT and WebSockets.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/Comcast/corrcheck/util"

	"golang.org/x/sync/errgroup"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		configFile = flag.String("c", "checkd.yaml", "configuration filename")
		verbose    = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	util.Logging = *verbose

	cfg, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		log.Printf("interrupted")
		cancel()
	}()

	s, err := NewService(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close(context.Background())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(gctx, cfg.Listen)
	})

	g.Go(func() error {
		return s.RecheckAll(gctx)
	})

	if cfg.Schedule != "" {
		g.Go(func() error {
			return s.Scheduled(gctx)
		})
	}

	if cfg.Watch {
		g.Go(func() error {
			return s.Watch(gctx)
		})
	}

	if err = g.Wait(); err != nil {
		log.Printf("checkd error %v", err)
	}

	log.Printf("main terminating")
}
