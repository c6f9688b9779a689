package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/Comcast/corrcheck/core"
)

// Record is one verdict for one program as stored in a Storage
// system.
type Record struct {
	// Program is the reference to the checked document.
	Program string `json:"program" yaml:"program"`

	At time.Time `json:"at" yaml:"at"`

	// Digest is a hash of the document's bytes so a reader can
	// tell whether the program changed between records.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`

	Valid       bool               `json:"valid" yaml:"valid"`
	Diagnostics []*core.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewRecord makes a Record for a report.
func NewRecord(program string, src []byte, r *core.Report, at time.Time) *Record {
	return &Record{
		Program:     program,
		At:          at.UTC(),
		Digest:      Digest(src),
		Valid:       r.Valid,
		Diagnostics: r.Diagnostics,
	}
}

// Digest returns a base64 SHA-256 of the bytes.
func Digest(src []byte) string {
	if src == nil {
		return ""
	}
	h := sha256.Sum256(src)
	return base64.StdEncoding.EncodeToString(h[:])
}

// Storage is a persistence interface for verdict history.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	// WriteRecord appends a record to its program's history.
	WriteRecord(ctx context.Context, r *Record) error

	// GetHistory returns a program's records, oldest first.
	GetHistory(ctx context.Context, program string) ([]*Record, error)

	// RemProgram forgets a program's history.
	RemProgram(ctx context.Context, program string) error

	// Programs lists the programs with history.
	Programs(ctx context.Context) ([]string, error)
}
