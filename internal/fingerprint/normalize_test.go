package fingerprint

import "testing"

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "numeric id",
			input: "User 12345678 not found",
			want:  "User <ID> not found",
		},
		{
			name:  "uuid",
			input: "session 550e8400-e29b-41d4-a716-446655440000 expired",
			want:  "session <UUID> expired",
		},
		{
			name:  "timestamp",
			input: "failed at 2026-08-31T12:00:00 retrying",
			want:  "failed at <TIMESTAMP> retrying",
		},
		{
			name:  "ip address",
			input: "connection refused from 10.0.0.17",
			want:  "connection refused from <IP>",
		},
		{
			name:  "email",
			input: "notification to alice@example.com bounced",
			want:  "notification to <EMAIL> bounced",
		},
		{
			name:  "double quoted string",
			input: `unknown key "shipping_rate"`,
			want:  `unknown key "<STRING>"`,
		},
		{
			name:  "single quoted string",
			input: "unknown column 'created_at'",
			want:  "unknown column '<STRING>'",
		},
		{
			name:  "short number",
			input: "retry 3 of 5 failed",
			want:  "retry <NUM> of <NUM> failed",
		},
		{
			name:  "mixed",
			input: `order 9988776655 for "widget" failed 2 times`,
			want:  `order <ID> for "<STRING>" failed <NUM> times`,
		},
		{
			name:  "no variables",
			input: "connection pool exhausted",
			want:  "connection pool exhausted",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMessage(tt.input); got != tt.want {
				t.Errorf("NormalizeMessage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMessageStable(t *testing.T) {
	// Same template, different variable values: one normalized form.
	a := NormalizeMessage("User 12345678 not found")
	b := NormalizeMessage("User 87654321 not found")
	if a != b {
		t.Errorf("normalized forms diverge: %q vs %q", a, b)
	}
}
