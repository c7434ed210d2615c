package utils

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type patchBody struct {
	EndDate Nullable[Date]    `json:"endDate"`
	Budget  Nullable[float64] `json:"budget"`
}

func TestNullable_AbsentNullAndValue(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"endDate":null,"budget":null}`, wantSet: true},
		{name: "value", body: `{"endDate":"2024-06-01","budget":12.5}`, wantSet: true, wantValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got patchBody
			if err := json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got.EndDate.Set != tt.wantSet || got.Budget.Set != tt.wantSet {
				t.Fatalf("set = %v/%v, want %v", got.EndDate.Set, got.Budget.Set, tt.wantSet)
			}
			if (got.EndDate.Value != nil) != tt.wantValue || (got.Budget.Value != nil) != tt.wantValue {
				t.Fatalf("value presence = %v/%v, want %v", got.EndDate.Value != nil, got.Budget.Value != nil, tt.wantValue)
			}
			if tt.wantValue {
				if !got.EndDate.Value.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) || *got.Budget.Value != 12.5 {
					t.Fatalf("unexpected values: %v %v", got.EndDate.Value.Time, *got.Budget.Value)
				}
			}
		})
	}
}

func TestNullable_PropagatesDateErrors(t *testing.T) {
	var got patchBody
	err := json.Unmarshal([]byte(`{"endDate":"June 1"}`), &got)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("want ErrInvalidDate, got %v", err)
	}
}
