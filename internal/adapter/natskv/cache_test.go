package natskv

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/TaskForge/internal/port/cache/cachetest"
)

var kvKeyPattern = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

func TestEncodeKeyUsesKVAlphabet(t *testing.T) {
	for _, key := range []string{"idem:POST:/api/v1/tasks:abc", "with space", "ünïcode"} {
		got := encodeKey(key)
		if !kvKeyPattern.MatchString(got) {
			t.Errorf("encodeKey(%q) = %q is not a valid KV key", key, got)
		}
	}
	if encodeKey("a") == encodeKey("b") {
		t.Error("expected distinct keys to stay distinct")
	}
}

func TestCacheCompliance(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: "TASKFORGE_TEST", TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = js.DeleteKeyValue(context.Background(), "TASKFORGE_TEST") })

	cachetest.RunCompliance(t, New(kv), nil)
}
