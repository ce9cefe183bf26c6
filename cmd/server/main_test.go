package main

import (
	"testing"

	"digistock/backend/internal/config"
)

func TestValidateSecurityConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"auth off, no secret", config.Config{AuthRequired: false}, false},
		{"auth on, no secret", config.Config{AuthRequired: true}, true},
		{"auth on, short secret", config.Config{AuthRequired: true, AuthSecret: "short"}, true},
		{"auth on, strong secret", config.Config{AuthRequired: true, AuthSecret: "0123456789abcdef0123456789abcdef"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSecurityConfig(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}
