package utils

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lower-cases", input: "Kovax", want: "kovax"},
		{name: "digits allowed", input: "david2", want: "david2"},
		{name: "space rejected", input: "da vid", wantErr: true},
		{name: "punctuation rejected", input: "david!", wantErr: true},
		{name: "path traversal rejected", input: "../ledger", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.input)
			if tt.wantErr {
				if err != ErrIllegalCharacters {
					t.Errorf("expected ErrIllegalCharacters, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %q, got %q (err %v)", tt.want, got, err)
			}
		})
	}
}

func TestTableName(t *testing.T) {
	if got := TableName("ledger", true); got != "ledgerTest" {
		t.Errorf("expected ledgerTest, got %s", got)
	}
	if got := TableName("ledger", false); got != "ledger" {
		t.Errorf("expected ledger, got %s", got)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("5182")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !CheckPassword("5182", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("0000", hash) {
		t.Error("expected wrong password to be rejected")
	}
}
