package main

import (
	"os"
	"path/filepath"
	"testing"

	"battery-health/internal/features"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func TestLoadReadings(t *testing.T) {
	path := writeInput(t, "voltage,current,temperature\n48.5, 2.1, 30\n52,3,25.5\n")

	got, err := loadReadings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []features.SensorReading{
		{Voltage: 48.5, Current: 2.1, Temperature: 30},
		{Voltage: 52, Current: 3, Temperature: 25.5},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d readings, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reading %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLoadReadings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "voltage,current,temperature\n"},
		{"bad value after header", "voltage,current,temperature\n48,x,30\n"},
		{"wrong field count", "48,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadReadings(writeInput(t, tt.content)); err == nil {
				t.Error("expected error but got none")
			}
		})
	}

	if _, err := loadReadings(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
