package bolt

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Comcast/corrcheck/ast"
	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func open(t *testing.T, filename string) (*Storage, func()) {
	s, err := NewStorage(filename)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	return s, func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBasics(t *testing.T) {
	s, done := open(t, "storage.db")
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		program = "shop.yaml"
		then    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	)

	good := &core.Report{Valid: true}
	bad := &core.Report{
		Diagnostics: []*core.Diagnostic{
			{
				Kind:    core.NoFreshCorrelationValue,
				Context: ast.Context{Source: "shop.ol", Line: 4},
				Message: "correlation set Cart has no fresh value",
			},
		},
	}

	if err := s.WriteRecord(ctx, storage.NewRecord(program, []byte("v1"), bad, then)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(ctx, storage.NewRecord(program, []byte("v2"), good, then.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}

	rs, err := s.GetHistory(ctx, program)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatal(len(rs))
	}
	if rs[0].Valid || !rs[1].Valid {
		t.Fatal("order")
	}
	if rs[0].Digest == rs[1].Digest {
		t.Fatal("same digest")
	}
	if len(rs[0].Diagnostics) != 1 || rs[0].Diagnostics[0].Kind != core.NoFreshCorrelationValue {
		t.Fatal(JS(rs[0]))
	}
	if rs[0].Diagnostics[0].Context.Line != 4 {
		t.Fatal(rs[0].Diagnostics[0].Context)
	}

	programs, err := s.Programs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 1 || programs[0] != program {
		t.Fatal(programs)
	}

	if err := s.RemProgram(ctx, program); err != nil {
		t.Fatal(err)
	}
	if rs, err = s.GetHistory(ctx, program); err != nil {
		t.Fatal(err)
	}
	if rs != nil {
		t.Fatal(rs)
	}
	if err := s.RemProgram(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
}

func TestMaxHistory(t *testing.T) {
	s, done := open(t, "history.db")
	defer done()
	s.MaxHistory = 3

	ctx := context.Background()
	then := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := storage.NewRecord("p", []byte{byte(i)}, &core.Report{Valid: i%2 == 0}, then.Add(time.Duration(i)*time.Second))
		if err := s.WriteRecord(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	rs, err := s.GetHistory(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 3 {
		t.Fatal(len(rs))
	}
	if !rs[0].At.Equal(then.Add(2 * time.Second)) {
		t.Fatal(rs[0].At)
	}
}

func TestSameInstant(t *testing.T) {
	s, done := open(t, "instant.db")
	defer done()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := storage.NewRecord("p", []byte{byte(i)}, &core.Report{Valid: i == 2}, now)
		if err := s.WriteRecord(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	rs, err := s.GetHistory(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 3 {
		t.Fatal(len(rs))
	}
	if !rs[2].Valid || rs[0].Valid {
		t.Fatal("records out of order")
	}
}

// BenchmarkBolt is just for fun.  Bolt is slow.
func BenchmarkBolt(b *testing.B) {
	filename := "storage.db"

	s, err := NewStorage(filename)
	if err != nil {
		b.Fatal(err)
	}

	defer func() {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return
		}
		if err := os.Remove(filename); err != nil {
			b.Fatal(err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		b.Fatal(err)
	}

	defer func() {
		if err := s.Close(ctx); err != nil {
			b.Fatal(err)
		}
	}()

	then := time.Now()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var err error
		if i%2 == 0 {
			r := storage.NewRecord("p", nil, &core.Report{Valid: true}, then.Add(time.Duration(i)))
			err = s.WriteRecord(ctx, r)
		} else {
			_, err = s.GetHistory(ctx, "p")
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}
