package study

import "testing"

func TestStudy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Study
		wantErr bool
	}{
		{"valid", Study{ExternalID: "12", Title: "AI Ethics", Year: 2020}, false},
		{"missing id", Study{Title: "AI Ethics"}, true},
		{"blank id", Study{ExternalID: "  "}, true},
		{"negative year", Study{ExternalID: "12", Year: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
