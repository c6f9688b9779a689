package main

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/storage"
	"github.com/Comcast/corrcheck/storage/bolt"

	"golang.org/x/sync/errgroup"
)

// Verdict is what a check produces: the stored record and the full
// report.
type Verdict struct {
	Record *storage.Record `json:"record"`
	Report *core.Report    `json:"report"`
}

// Service checks documents, keeps their history, and tells listeners
// about the verdicts.
type Service struct {
	Config    *Config
	Storage   storage.Storage
	Fetcher   *loader.Fetcher
	Publisher Publisher

	// Parallelism, if positive, limits concurrent rechecks.
	Parallelism int

	firehose chan interface{}
	conns    sync.Map
}

// NewService makes a Service from the configuration.  Storage is
// opened and the MQTT session (if any) is started.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	f, err := loader.NewFetcher()
	if err != nil {
		return nil, err
	}

	s := newService(cfg)
	s.Fetcher = f

	if cfg.DB != "" {
		db, err := bolt.NewStorage(cfg.DB)
		if err != nil {
			return nil, err
		}
		db.MaxHistory = cfg.MaxHistory
		s.Storage = db
	}
	if err = s.Storage.Open(ctx); err != nil {
		return nil, err
	}

	if cfg.MQTT != nil {
		p := NewMQTTPublisher(cfg.MQTT)
		if err = p.Start(ctx); err != nil {
			s.Storage.Close(ctx)
			return nil, err
		}
		s.Publisher = p
	}

	return s, nil
}

// newService makes a Service with no-op storage.  The firehose is
// made here, before any goroutine can announce a verdict.
func newService(cfg *Config) *Service {
	return &Service{
		Config:      cfg,
		Storage:     &storage.NoopStorage{},
		Parallelism: 4,
		firehose:    make(chan interface{}, 1024),
	}
}

// Configured reports whether the reference is one of the configured
// programs.  Only those can be fetched on a client's behalf.
func (s *Service) Configured(ref string) bool {
	if s.Config == nil {
		return false
	}
	for _, p := range s.Config.Programs {
		if p == ref {
			return true
		}
	}
	return false
}

func (s *Service) Close(ctx context.Context) error {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	return s.Storage.Close(ctx)
}

// CheckSource decodes, checks, and records the program.  A document
// that can't be decoded gets an error, not a verdict.
func (s *Service) CheckSource(ctx context.Context, program string, src []byte) (*Verdict, error) {
	doc, err := loader.Decode(program, src)
	if err != nil {
		return nil, err
	}

	c := doc.Checker()
	if s.Config != nil && s.Config.Fresh != nil {
		c.Fresh = s.Config.Fresh
	}
	r := c.Check()

	v := &Verdict{
		Record: storage.NewRecord(program, src, r, time.Now()),
		Report: r,
	}

	if err = s.Storage.WriteRecord(ctx, v.Record); err != nil {
		return nil, err
	}

	s.announce(ctx, v)

	return v, nil
}

func (s *Service) announce(ctx context.Context, v *Verdict) {
	if s.Publisher != nil {
		js, err := json.Marshal(v.Record)
		if err != nil {
			log.Printf("Service.announce Marshal error %v", err)
		} else if err = s.Publisher.Publish(ctx, js); err != nil {
			log.Printf("Service.announce Publish error %v", err)
		}
	}

	if s.Config != nil && s.Config.WebSockets {
		select {
		case s.firehose <- v.Record:
		default:
			log.Printf("firehose blocked")
		}
	}
}

// Recheck fetches and checks the referenced program.
func (s *Service) Recheck(ctx context.Context, ref string) (*Verdict, error) {
	bs, err := s.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.CheckSource(ctx, ref, bs)
}

// RecheckAll rechecks every configured program.  A program that
// can't be fetched or decoded is logged and skipped.
func (s *Service) RecheckAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if 0 < s.Parallelism {
		g.SetLimit(s.Parallelism)
	}
	for _, ref := range s.Config.Programs {
		ref := ref
		g.Go(func() error {
			v, err := s.Recheck(gctx, ref)
			if err != nil {
				log.Printf("recheck %s: %v", ref, err)
				return nil
			}
			log.Printf("recheck %s: valid=%v", ref, v.Record.Valid)
			return nil
		})
	}
	return g.Wait()
}
