package history

import (
	"testing"

	"github.com/diogo/pulsechat/internal/models"
)

func TestResolve(t *testing.T) {
	convs := []*models.Conversation{
		{ID: "sarah-chen", Name: "Sarah Chen"},
		{ID: "alex-rivera", Name: "Alex Rivera"},
		{ID: "jordan-kim", Name: "Jordan Kim"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"sarah-chen", "sarah-chen", false},
		{"2", "alex-rivera", false},
		{" 3 ", "jordan-kim", false},
		{"jordan", "jordan-kim", false},
		{"ALEX", "alex-rivera", false},
		{"0", "", true},
		{"4", "", true},
		{"", "", true},
		{"nobody", "", true},
		{"r", "", true}, // matches several names
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Resolve(convs, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
