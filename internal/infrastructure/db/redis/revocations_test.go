package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreachable returns a client whose every command fails fast.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRevoke_ExpiredTokenIsNoop(t *testing.T) {
	client := unreachable()
	defer client.Close()
	list := NewRevocationList(client)

	if err := list.Revoke(context.Background(), "01HZX", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("expired token should be ignored without a round trip, got %v", err)
	}
}

func TestRevocationList_SurfacesConnectionErrors(t *testing.T) {
	client := unreachable()
	defer client.Close()
	list := NewRevocationList(client)
	ctx := context.Background()

	if err := list.Revoke(ctx, "01HZX", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected revoke to fail against an unreachable server")
	}
	if revoked, err := list.IsRevoked(ctx, "01HZX"); err == nil || revoked {
		t.Fatalf("expected revocation check to fail closed with an error, got revoked=%v err=%v", revoked, err)
	}
	if err := list.Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail")
	}
}

func TestKey(t *testing.T) {
	if got := key("abc"); got != "revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestConfigOptions(t *testing.T) {
	t.Run("host and port", func(t *testing.T) {
		opts, err := Config{Addr: "cache:6379", Password: "pw", DB: 2}.options()
		if err != nil {
			t.Fatalf("options: %v", err)
		}
		if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		if opts.ReadTimeout != defaultTimeout {
			t.Fatalf("expected default timeout, got %s", opts.ReadTimeout)
		}
	})

	t.Run("url with overrides", func(t *testing.T) {
		opts, err := Config{Addr: "redis://:from-url@cache:6380/1", DB: 3, Timeout: time.Second}.options()
		if err != nil {
			t.Fatalf("options: %v", err)
		}
		if opts.Addr != "cache:6380" || opts.Password != "from-url" || opts.DB != 3 {
			t.Fatalf("unexpected options: %+v", opts)
		}
		if opts.DialTimeout != time.Second {
			t.Fatalf("expected 1s dial timeout, got %s", opts.DialTimeout)
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if _, err := (Config{Addr: "redis://cache:6379/notadb"}).options(); err == nil {
			t.Fatal("expected an error for an invalid db number")
		}
	})
}

func TestConnect_UnreachableServer(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a ping error")
	}
}
