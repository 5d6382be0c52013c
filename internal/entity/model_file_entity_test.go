package entity

import (
	"testing"
	"time"
)

func TestModelFileSizeFactor(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }

	tests := []struct {
		name   string
		params *float64
		want   int
	}{
		{"unknown size", nil, 1},
		{"small model", ptr(7.0), 1},
		{"boundary 13B", ptr(13.0), 1},
		{"medium model", ptr(30.0), 2},
		{"boundary 70B", ptr(70.0), 2},
		{"large model", ptr(70.5), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ModelFile{ParameterCount: tt.params}
			if got := f.SizeFactor(); got != tt.want {
				t.Errorf("SizeFactor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModelFileExpired(t *testing.T) {
	now := time.Now()

	f := &ModelFile{}
	if f.Expired(now) {
		t.Error("file without expiry never expires")
	}

	past := now.Add(-time.Minute)
	f.ExpiresAt = &past
	if !f.Expired(now) {
		t.Error("file past expiry should be expired")
	}

	future := now.Add(time.Minute)
	f.ExpiresAt = &future
	if f.Expired(now) {
		t.Error("file before expiry should not be expired")
	}
}
