package timeouts_test

import (
	"testing"
	"time"

	"github.com/dalemusser/teamspace/internal/app/system/timeouts"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	cases := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"ping", timeouts.Ping(), timeouts.DefaultPing},
		{"short", timeouts.Short(), timeouts.DefaultShort},
		{"medium", timeouts.Medium(), timeouts.DefaultMedium},
		{"long", timeouts.Long(), timeouts.DefaultLong},
		{"batch", timeouts.Batch(), timeouts.DefaultBatch},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TEAMSPACE_TIMEOUT_SHORT", "750ms")
	t.Setenv("TEAMSPACE_TIMEOUT_BATCH", "2m")
	timeouts.FromEnv()
	t.Cleanup(timeouts.Reset)

	if got := timeouts.Short(); got != 750*time.Millisecond {
		t.Errorf("short: got %v", got)
	}
	if got := timeouts.Batch(); got != 2*time.Minute {
		t.Errorf("batch: got %v", got)
	}
	// Unset tiers keep their defaults.
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("medium: got %v", got)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TEAMSPACE_TIMEOUT_LONG", "not-a-duration")
	t.Setenv("TEAMSPACE_TIMEOUT_PING", "-5s")
	timeouts.FromEnv()
	t.Cleanup(timeouts.Reset)

	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("long: got %v", got)
	}
	if got := timeouts.Ping(); got != timeouts.DefaultPing {
		t.Errorf("ping: got %v", got)
	}
}
