package main

import (
	"testing"

	"prestes/internal/config"
)

func TestMirrorsInProcess(t *testing.T) {
	tests := []struct {
		name    string
		sheet   string
		amqpURL string
		bridged bool
		want    bool
	}{
		{"no spreadsheet", "", "", false, false},
		{"no broker configured", "sheet-id", "", false, true},
		{"broker connected", "sheet-id", "amqp://localhost", true, false},
		{"broker configured but unreachable", "sheet-id", "amqp://localhost", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{GoogleSpreadsheetID: tt.sheet, AMQPURL: tt.amqpURL}
			if got := mirrorsInProcess(cfg, tt.bridged); got != tt.want {
				t.Errorf("mirrorsInProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}
