package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/trawlhq/trawl/internal/db"
)

// HSet writes hash fields at key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	b := s.b().Hset().Key(key).FieldValue()
	for f, v := range fields {
		b = b.FieldValue(f, v)
	}
	if err := s.do(ctx, b.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HMGet reads the requested hash fields; missing fields are omitted from
// the result.
func (s *Store) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	cmd := s.b().Hmget().Key(key).Field(fields...).Build()
	arr, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpHMGet, Err: err}
	}

	out := make(map[string]string, len(fields))
	for i, msg := range arr {
		if i >= len(fields) {
			break
		}
		val, err := msg.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpHMGet, Err: err}
		}
		out[fields[i]] = val
	}
	return out, nil
}
