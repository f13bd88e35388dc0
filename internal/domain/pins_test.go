package domain

import (
	"errors"
	"testing"
)

func TestPinConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PinConfig
		wantErr bool
	}{
		{"defaults", PinConfig{RaisePin: 25, LowerPin: 21}, false},
		{"with status", PinConfig{RaisePin: 25, LowerPin: 21, StatusPin: 5}, false},
		{"missing raise", PinConfig{LowerPin: 21}, true},
		{"out of range", PinConfig{RaisePin: 40, LowerPin: 21}, true},
		{"same pins", PinConfig{RaisePin: 21, LowerPin: 21}, true},
		{"status shares motor pin", PinConfig{RaisePin: 25, LowerPin: 21, StatusPin: 25}, true},
		{"status out of range", PinConfig{RaisePin: 25, LowerPin: 21, StatusPin: 99}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
