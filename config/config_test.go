package config_test

import (
	"testing"

	"github.com/exascience/amorphous/config"
)

func setEnv(t *testing.T, kvs map[string]string) {
	t.Helper()
	for k, v := range kvs {
		t.Setenv(k, v)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"AMORPHOUS_PARTITION_BASE": "/data/toy",
		"AMORPHOUS_NUM_HOSTS":      "4",
		"AMORPHOUS_HOST_ID":        "1",
	})

	cfg, err := config.Load("AMORPHOUS_")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
	if cfg.WorklistChunk != 1024 {
		t.Errorf("WorklistChunk = %d, want default 1024", cfg.WorklistChunk)
	}
	if cfg.HostID != 1 || cfg.NumHosts != 4 {
		t.Errorf("HostID/NumHosts = %d/%d, want 1/4", cfg.HostID, cfg.NumHosts)
	}
	if cfg.PartitionBase != "/data/toy" {
		t.Errorf("PartitionBase = %q, want /data/toy", cfg.PartitionBase)
	}
}

func TestLoadRequiresPartitionBase(t *testing.T) {
	setEnv(t, map[string]string{
		"AMORPHOUS_PARTITION_BASE": "",
	})
	if _, err := config.Load("AMORPHOUS_"); err == nil {
		t.Fatal("Load with empty PartitionBase returned no error")
	}
}

func TestLoadRejectsHostIDOutOfRange(t *testing.T) {
	setEnv(t, map[string]string{
		"AMORPHOUS_PARTITION_BASE": "/data/toy",
		"AMORPHOUS_NUM_HOSTS":      "2",
		"AMORPHOUS_HOST_ID":        "2",
	})
	if _, err := config.Load("AMORPHOUS_"); err == nil {
		t.Fatal("Load with HostID >= NumHosts returned no error")
	}
}
