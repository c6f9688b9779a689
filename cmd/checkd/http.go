package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/tools"
)

// Handler returns the HTTP API:
//
//	POST /check?program=NAME   body is a document
//	POST /recheck?program=REF  fetches a configured document first
//	GET  /history?program=NAME
//	GET  /programs
//	GET  /report?program=REF   HTML report for a configured document
//	GET  /ws                   verdict firehose (if enabled)
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	puntf := func(w http.ResponseWriter, status int, format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		log.Println(msg)

		js, err := json.Marshal(map[string]interface{}{
			"error": msg,
		})
		if err != nil {
			js = []byte(msg)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, "%s\n", js)
	}

	reply := func(w http.ResponseWriter, x interface{}) {
		js, err := json.Marshal(x)
		if err != nil {
			puntf(w, http.StatusInternalServerError, "Marshal error %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "%s\n", js)
	}

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "\"pong\"\n")
	})

	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			puntf(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		program := r.FormValue("program")
		if program == "" {
			program = "posted"
		}
		bs, err := ioutil.ReadAll(r.Body)
		if err != nil {
			puntf(w, http.StatusBadRequest, "ReadAll error %v", err)
			return
		}
		if err := r.Body.Close(); err != nil {
			log.Printf("Service.Handler warning on Body.Close(): %v", err)
		}
		v, err := s.CheckSource(r.Context(), program, bs)
		if err != nil {
			puntf(w, http.StatusBadRequest, "%v", err)
			return
		}
		reply(w, v)
	})

	mux.HandleFunc("/recheck", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			puntf(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		ref := r.FormValue("program")
		if !s.Configured(ref) {
			puntf(w, http.StatusNotFound, "unknown program %q", ref)
			return
		}
		v, err := s.Recheck(r.Context(), ref)
		if err != nil {
			puntf(w, http.StatusBadRequest, "%v", err)
			return
		}
		reply(w, v)
	})

	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		rs, err := s.Storage.GetHistory(r.Context(), r.FormValue("program"))
		if err != nil {
			puntf(w, http.StatusInternalServerError, "GetHistory error %v", err)
			return
		}
		reply(w, rs)
	})

	mux.HandleFunc("/programs", func(w http.ResponseWriter, r *http.Request) {
		ps, err := s.Storage.Programs(r.Context())
		if err != nil {
			puntf(w, http.StatusInternalServerError, "Programs error %v", err)
			return
		}
		reply(w, ps)
	})

	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		ref := r.FormValue("program")
		if !s.Configured(ref) {
			puntf(w, http.StatusNotFound, "unknown program %q", ref)
			return
		}
		bs, err := s.Fetcher.Fetch(r.Context(), ref)
		if err != nil {
			puntf(w, http.StatusBadRequest, "%v", err)
			return
		}
		doc, err := loader.Decode(ref, bs)
		if err != nil {
			puntf(w, http.StatusBadRequest, "%v", err)
			return
		}
		c := doc.Checker()
		if s.Config != nil && s.Config.Fresh != nil {
			c.Fresh = s.Config.Fresh
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err = tools.RenderReportPage(doc, c.Check(), w, nil); err != nil {
			log.Printf("RenderReportPage error %v", err)
		}
	})

	if s.Config != nil && s.Config.WebSockets {
		mux.HandleFunc("/ws", s.WebSockets(ctx))
	}

	return mux
}

// Serve runs the HTTP service until the context is done.
func (s *Service) Serve(ctx context.Context, addr string) error {
	log.Printf("Service.Serve starting on %s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(ctx),
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Service.Serve Shutdown error %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
