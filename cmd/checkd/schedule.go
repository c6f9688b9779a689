package main

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorhill/cronexpr"
)

// untilNext returns how long to wait for the expression's next time
// after now.  False means there is no next time.
func untilNext(x *cronexpr.Expression, now time.Time) (time.Duration, bool) {
	next := x.Next(now)
	if next.IsZero() {
		return 0, false
	}
	return next.Sub(now), true
}

// Scheduled rechecks all programs whenever the configured cron
// expression fires.
func (s *Service) Scheduled(ctx context.Context) error {
	x := s.Config.schedule
	if x == nil {
		return nil
	}
	for {
		d, ok := untilNext(x, time.Now())
		if !ok {
			log.Printf("schedule %q has no more times", s.Config.Schedule)
			return nil
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		if err := s.RecheckAll(ctx); err != nil {
			return err
		}
	}
}

// localFile returns the filename for a reference to a local file.
func localFile(ref string) (string, bool) {
	if strings.HasPrefix(ref, "file://") {
		ref = ref[len("file://"):]
	} else if strings.Contains(ref, "://") {
		return "", false
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", false
	}
	return abs, true
}

// Watch rechecks a local program when its file is written.  The
// watcher is on each file's directory since editors often replace
// files rather than write them.
func (s *Service) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	refs := make(map[string]string)
	dirs := make(map[string]bool)
	for _, ref := range s.Config.Programs {
		filename, ok := localFile(ref)
		if !ok {
			continue
		}
		refs[filename] = ref
		dir := filepath.Dir(filename)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}

	log.Printf("watching %d programs", len(refs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			ref, have := refs[abs]
			if !have {
				continue
			}
			if _, err := s.Recheck(ctx, ref); err != nil {
				log.Printf("recheck %s: %v", ref, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error %v", err)
		}
	}
}
