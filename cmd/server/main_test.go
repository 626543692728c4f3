package main

import (
	"context"
	"strings"
	"testing"
)

func TestRun_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing postgres",
			env:  map[string]string{"POSTGRES_CONN_STR": "", "MONGO_URI": "mongodb://localhost:27017"},
			want: "POSTGRES_CONN_STR",
		},
		{
			name: "missing mongo",
			env:  map[string]string{"POSTGRES_CONN_STR": "postgres://localhost/blog", "MONGO_URI": ""},
			want: "MONGO_URI",
		},
		{
			name: "bad duration",
			env:  map[string]string{"JWT_EXPIRES_IN": "soon"},
			want: "configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "development")
			t.Setenv("LOG_LEVEL", "disabled")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := run(context.Background())
			if err == nil {
				t.Fatal("Expected run to fail before touching any database")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
