//go:build e2e

// Package e2e contains end-to-end integration tests against a real Redis
// server. Run with: go test -tags=e2e -v ./e2e/...
//
// The server address comes from LATTICE_E2E_REDIS_ADDR; the suite is skipped
// when it is unset. Every run works under a unique key namespace and cleans
// it up afterwards.
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jacentio/lattice/model"
	"github.com/jacentio/lattice/redis"
)

const addrEnv = "LATTICE_E2E_REDIS_ADDR"

var (
	testID    string
	modelName string

	client    *goredis.Client
	testStore *redis.Store
	users     *model.Model
)

func TestMain(m *testing.M) {
	addr := os.Getenv(addrEnv)
	if addr == "" {
		fmt.Printf("skipping e2e suite: %s not set\n", addrEnv)
		os.Exit(0)
	}

	// Unique namespace per test run to avoid conflicts
	testID = uuid.New().String()[:8]
	modelName = fmt.Sprintf("lattice-e2e-%s", testID)
	fmt.Printf("Test ID: %s\n", testID)
	fmt.Printf("Model namespace: %s\n", modelName)

	ctx := context.Background()

	opts := redis.DefaultOptions()
	opts.Address = addr
	testStore = redis.Open(opts)
	if err := testStore.Ping(ctx); err != nil {
		fmt.Printf("failed to reach Redis at %s: %v\n", addr, err)
		os.Exit(1)
	}

	// Raw client for index inspection and cleanup.
	client = goredis.NewClient(&goredis.Options{Addr: addr})

	var err error
	users, err = model.New(testStore, model.Options{Name: modelName}, map[string]model.Field{
		"name":  {Mutable: true, Lexical: true},
		"email": {Mutable: true},
	})
	if err != nil {
		fmt.Printf("failed to build model: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	cleanup(ctx)
	testStore.Close()
	client.Close()
	os.Exit(code)
}

func cleanup(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, modelName+":*", 100).Result()
		if err != nil {
			fmt.Printf("cleanup scan failed: %v\n", err)
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// indexTokens returns the full contents of a field's index.
func indexTokens(t *testing.T, field string) []string {
	t.Helper()
	key := fmt.Sprintf("%s:index:%s", modelName, field)
	tokens, err := client.ZRangeByLex(context.Background(), key, &goredis.ZRangeBy{
		Min: "-", Max: "+",
	}).Result()
	if err != nil {
		t.Fatalf("failed to read index %s: %v", key, err)
	}
	return tokens
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	// Create
	ids, err := users.Create(ctx,
		model.Record{"name": "Oscar", "email": "oscar@example.com"},
		model.Record{"name": "Olga", "email": "olga@example.com"},
	)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}

	// Get round-trip
	records, err := users.Get(ctx, ids...)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if records[0]["name"] != "Oscar" || records[1]["name"] != "Olga" {
		t.Fatalf("expected input order preserved, got %v", records)
	}
	if records[0]["id"] != ids[0] || records[0]["created"] == "" {
		t.Errorf("expected seeded id and created fields, got %v", records[0])
	}

	// Prefix search, normalized
	hits, err := users.Search(ctx, model.Query{Field: "name", Term: "OSC"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0] != ids[0] {
		t.Errorf("expected [%s], got %v", ids[0], hits)
	}

	// Shared prefix matches both
	hits, err = users.Search(ctx, model.Query{Field: "name", Term: "o"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %v", hits)
	}

	// Substring does not match
	hits, err = users.Search(ctx, model.Query{Field: "name", Term: "car"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no substring matches, got %v", hits)
	}

	// Update re-indexes
	if _, err := users.Update(ctx, model.Record{"id": ids[0], "name": "Wilde"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	hits, err = users.Search(ctx, model.Query{Field: "name", Term: "osc"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected old entry retracted, got %v", hits)
	}
	hits, err = users.Search(ctx, model.Query{Field: "name", Term: "wil"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0] != ids[0] {
		t.Errorf("expected [%s], got %v", ids[0], hits)
	}

	// The name index holds exactly one token per live record.
	tokens := indexTokens(t, "name")
	if len(tokens) != 2 {
		t.Errorf("expected 2 index tokens, got %v", tokens)
	}

	// Remove retracts everything in the same batch
	acks, err := users.Remove(ctx, ids...)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(acks) != 2 {
		t.Errorf("expected 2 acks, got %v", acks)
	}
	if tokens := indexTokens(t, "name"); len(tokens) != 0 {
		t.Errorf("expected empty name index after remove, got %v", tokens)
	}
	if tokens := indexTokens(t, "created"); len(tokens) != 0 {
		t.Errorf("expected empty created index after remove, got %v", tokens)
	}

	records, err = users.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(records[0]) != 0 {
		t.Errorf("expected empty record after remove, got %v", records[0])
	}
}

func TestRemoveTwice(t *testing.T) {
	ctx := context.Background()

	ids, err := users.Create(ctx, model.Record{"name": "Ephemeral"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := users.Remove(ctx, ids...); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, err := users.Remove(ctx, ids...); err == nil {
		t.Error("expected error on second remove")
	}
}

func TestCreatedOrderSearchable(t *testing.T) {
	ctx := context.Background()

	ids, err := users.Create(ctx,
		model.Record{"name": "First"},
		model.Record{"name": "Second"},
	)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	defer users.Remove(ctx, ids...)

	// The created index orders by creation time; an empty term matches
	// every live record.
	hits, err := users.Search(ctx, model.Query{Field: "created", Term: ""})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	pos := map[string]int{}
	for i, id := range hits {
		pos[id] = i
	}
	first, okFirst := pos[ids[0]]
	second, okSecond := pos[ids[1]]
	if !okFirst || !okSecond {
		t.Fatalf("expected both ids in created index, got %v", hits)
	}
	if first >= second {
		t.Errorf("expected creation order preserved, got positions %d and %d", first, second)
	}
}
