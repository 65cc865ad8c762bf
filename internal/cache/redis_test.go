package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// go test -v --run TestRedisRoundTrip
// requires RUNETICK_TEST_REDIS_ADDR, e.g. localhost:6379
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("RUNETICK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RUNETICK_TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Connect(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer client.Close()

	c := NewRedis(client, "runetick-test:")
	defer c.Delete(ctx, "k")

	if err := c.Set(ctx, "k", []int{1, 2, 3}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	var got []int
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok || len(got) != 3 {
		t.Fatalf("unexpected get result ok=%v err=%v got=%v", ok, err, got)
	}

	c.Delete(ctx, "k")
	ok, err = c.Get(ctx, "k", &got)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}
