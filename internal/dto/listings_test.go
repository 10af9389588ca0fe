package dto

import (
	"encoding/json"
	"testing"
)

func TestListingID_UnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		payload   string
		expect    ListingID
		expectErr bool
	}{
		"numeric":         {payload: `{"listingId": 42}`, expect: 42},
		"quoted":          {payload: `{"listingId": "42"}`, expect: 42},
		"not a number":    {payload: `{"listingId": "forty-two"}`, expectErr: true},
		"wrong json type": {payload: `{"listingId": [42]}`, expectErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var req SuppressRequest
			err := json.Unmarshal([]byte(tt.payload), &req)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got listingId %d", req.ListingID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.ListingID != tt.expect {
				t.Fatalf("expected listingId %d, got %d", tt.expect, req.ListingID)
			}
		})
	}
}
