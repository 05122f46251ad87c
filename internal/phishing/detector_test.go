package phishing

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestDetect_Threshold(t *testing.T) {
	d := NewDetector(nil, 2, zap.NewNop())

	tests := []struct {
		name         string
		text         string
		wantKeywords []string
		wantPhishing bool
	}{
		{
			name:         "no indicators",
			text:         "lunch at noon tomorrow?",
			wantKeywords: []string{},
			wantPhishing: false,
		},
		{
			name:         "single indicator below threshold",
			text:         "please verify the attached invoice",
			wantKeywords: []string{"verify"},
			wantPhishing: false,
		},
		{
			name:         "two indicators cross threshold",
			text:         "verify your password immediately",
			wantKeywords: []string{"verify", "password"},
			wantPhishing: true,
		},
		{
			name:         "case insensitive matching",
			text:         "SECURITY ALERT: your account is SUSPENDED",
			wantKeywords: []string{"security alert", "suspended"},
			wantPhishing: true,
		},
		{
			name:         "repeated phrase counts once",
			text:         "urgent urgent urgent",
			wantKeywords: []string{"urgent"},
			wantPhishing: false,
		},
		{
			name:         "empty text",
			text:         "",
			wantKeywords: []string{},
			wantPhishing: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if !reflect.DeepEqual(got.Keywords, tt.wantKeywords) {
				t.Errorf("Keywords: got %v, want %v", got.Keywords, tt.wantKeywords)
			}
			if got.IsPhishing != tt.wantPhishing {
				t.Errorf("IsPhishing: got %t, want %t", got.IsPhishing, tt.wantPhishing)
			}
		})
	}
}

func TestDetect_CustomVocabulary(t *testing.T) {
	d := NewDetector([]string{"Wire Transfer", "  gift card  "}, 1, zap.NewNop())

	got := d.Detect("send the wire transfer today")
	if !got.IsPhishing {
		t.Error("expected custom phrase to trigger with min_indicators=1")
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "wire transfer" {
		t.Errorf("Keywords: got %v, want [wire transfer]", got.Keywords)
	}
}

func TestDetect_KeywordsNeverNil(t *testing.T) {
	d := NewDetector(nil, 0, zap.NewNop())
	got := d.Detect("nothing suspicious")
	if got.Keywords == nil {
		t.Fatal("Keywords must be an empty slice, not nil")
	}
}
