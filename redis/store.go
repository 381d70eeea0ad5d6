// Package redis executes compiled lattice command batches against a Redis
// server, using MULTI/EXEC for batch atomicity and ZRANGEBYLEX for prefix
// search.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jacentio/lattice/model"
)

// Store adapts a Redis client to the model.Store boundary. Every batch runs
// on one transactional pipeline, so either all of its commands apply or none
// do; partial application is never observable.
type Store struct {
	client  *redis.Client
	isOwner bool
}

var _ model.Store = (*Store)(nil)

// Open dials a Redis server and returns a Store owning the connection.
func Open(options Options) *Store {
	return &Store{
		client:  openClient(options),
		isOwner: true,
	}
}

// NewStore wraps an existing client. The caller keeps ownership; Close is a
// no-op on the returned Store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the connection when this Store owns it.
func (s *Store) Close() error {
	if !s.isOwner || s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Ping tests connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("lattice/redis: connection is not open")
	}
	return s.client.Ping(ctx).Err()
}

// ExecBatch queues every command on one MULTI/EXEC pipeline and maps the raw
// replies back positionally.
func (s *Store) ExecBatch(ctx context.Context, cmds []model.Command) ([]model.Result, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	if s.client == nil {
		return nil, fmt.Errorf("lattice/redis: connection is not open")
	}

	pipe := s.client.TxPipeline()
	queued := make([]redis.Cmder, len(cmds))
	for i, cmd := range cmds {
		switch cmd.Op {
		case model.OpHashSet:
			queued[i] = pipe.HSet(ctx, cmd.Key, cmd.Fields)
		case model.OpHashGetAll:
			queued[i] = pipe.HGetAll(ctx, cmd.Key)
		case model.OpDelete:
			queued[i] = pipe.Del(ctx, cmd.Key)
		case model.OpIndexAdd:
			queued[i] = pipe.ZAdd(ctx, cmd.Key, redis.Z{Score: 0, Member: cmd.Token})
		case model.OpIndexRemove:
			queued[i] = pipe.ZRem(ctx, cmd.Key, cmd.Token)
		default:
			return nil, fmt.Errorf("lattice/redis: unknown command op %d", cmd.Op)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	results := make([]model.Result, len(cmds))
	for i, c := range queued {
		switch reply := c.(type) {
		case *redis.MapStringStringCmd:
			results[i] = model.Result{Hash: reply.Val()}
		case *redis.IntCmd:
			results[i] = model.Result{Ack: reply.Val()}
		}
	}
	return results, nil
}

// RangeByLex returns the index tokens within [min, max] lexical bounds in
// sorted order. Bounds arrive already carrying the "[" inclusive markers.
func (s *Store) RangeByLex(ctx context.Context, key, min, max string) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("lattice/redis: connection is not open")
	}
	return s.client.ZRangeByLex(ctx, key, &redis.ZRangeBy{Min: min, Max: max}).Result()
}
