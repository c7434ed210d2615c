package utils

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{name: "calendar_date", raw: "2024-01-10", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", raw: "2024-01-10T09:30:00Z", want: time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)},
		{name: "offset_normalised", raw: "2024-01-10T09:30:00+02:00", want: time.Date(2024, 1, 10, 7, 30, 0, 0, time.UTC)},
		{name: "blank", raw: "  ", wantErr: true},
		{name: "garbage", raw: "10/01/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateUnmarshalJSON(t *testing.T) {
	var payload struct {
		Start *Date `json:"start"`
		End   *Date `json:"end"`
	}

	if err := json.Unmarshal([]byte(`{"start":"2024-01-10","end":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if payload.Start == nil || payload.Start.Year() != 2024 {
		t.Fatalf("start not parsed: %+v", payload.Start)
	}
	if payload.End != nil {
		t.Fatalf("expected nil end, got %+v", payload.End)
	}

	if err := json.Unmarshal([]byte(`{"start":12}`), &payload); err == nil {
		t.Fatalf("expected error for numeric date")
	}
}
