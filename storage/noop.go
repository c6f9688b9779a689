package storage

import "context"

type NoopStorage struct {
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) WriteRecord(ctx context.Context, r *Record) error {
	return nil
}

func (s *NoopStorage) GetHistory(ctx context.Context, program string) ([]*Record, error) {
	return nil, nil
}

func (s *NoopStorage) RemProgram(ctx context.Context, program string) error {
	return nil
}

func (s *NoopStorage) Programs(ctx context.Context) ([]string, error) {
	return nil, nil
}
