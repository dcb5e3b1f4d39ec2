package storage_test

import (
	"strings"
	"testing"

	"github.com/stonebriar/sagerelay/pkg/storage"
)

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_BUCKET", "override-bucket")
	t.Setenv("TEST_PREFIX", "override/prefix")

	env := &storage.Env{
		Bucket: "TEST_BUCKET",
		Prefix: "TEST_PREFIX",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Bucket != "override-bucket" {
		t.Errorf("bucket: got %s, want override-bucket", cfg.Bucket)
	}
	if cfg.Prefix != "override/prefix" {
		t.Errorf("prefix: got %s, want override/prefix", cfg.Prefix)
	}
}

func TestFinalizeValidation(t *testing.T) {
	cfg := storage.Config{}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bucket required") {
		t.Errorf("error %q does not mention the bucket", err.Error())
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Bucket: "base-bucket",
		Prefix: "base",
	}

	overlay := storage.Config{Bucket: "overlay-bucket"}
	base.Merge(&overlay)

	if base.Bucket != "overlay-bucket" {
		t.Errorf("bucket: got %s, want overlay-bucket", base.Bucket)
	}
	if base.Prefix != "base" {
		t.Errorf("prefix should remain base, got %s", base.Prefix)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "data/file.csv", want: "data/file.csv"},
		{name: "with prefix", prefix: "projects/prj-123", key: "data/file.csv", want: "projects/prj-123/data/file.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := storage.Config{Bucket: "b", Prefix: tt.prefix}
			if got := cfg.Key(tt.key); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
