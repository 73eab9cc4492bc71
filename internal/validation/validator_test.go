// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/clusterrec/internal/recommend"
)

type limitRequest struct {
	UserID int64 `validate:"min=0"`
	Limit  int   `validate:"min=0,max=1000"`
}

func TestValidateStruct_Interaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{"lowest", 1, false},
		{"highest", 5, false},
		{"neutral", 3, false},
		{"zero", 0, true},
		{"six", 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&recommend.Interaction{UserID: 0, ContentID: 7, Rating: tt.rating})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct_Embedding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		embedding []float64
		wantTag   string
	}{
		{"valid", []float64{0.1, -2}, ""},
		{"nil", nil, "required"},
		{"nan", []float64{1, math.NaN()}, "finite"},
		{"inf", []float64{math.Inf(-1)}, "finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&recommend.ContentItem{ContentID: 1, Embedding: tt.embedding})
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() should fail")
			}
			if got := err.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("tag = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&limitRequest{UserID: 1, Limit: 5000})
	if err == nil {
		t.Fatal("expected validation error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Message != "Limit must be at most 1000" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&limitRequest{UserID: -1, Limit: -1}).ToAPIError()
	if !strings.Contains(multi.Message, "UserID") || !strings.Contains(multi.Message, "Limit") {
		t.Errorf("message = %q", multi.Message)
	}
	if _, ok := multi.Details["fields"]; !ok {
		t.Errorf("details = %v", multi.Details)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
