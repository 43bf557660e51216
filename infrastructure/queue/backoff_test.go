package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	base := 30 * time.Second
	max := 15 * time.Minute

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{
			name:     "Primeira tentativa deve usar o delay base",
			attempt:  0,
			expected: 30 * time.Second,
		},
		{
			name:     "Segunda tentativa deve dobrar o delay",
			attempt:  1,
			expected: 60 * time.Second,
		},
		{
			name:     "Terceira tentativa deve dobrar novamente",
			attempt:  2,
			expected: 120 * time.Second,
		},
		{
			name:     "Quinta tentativa deve atingir o teto",
			attempt:  5,
			expected: 15 * time.Minute,
		},
		{
			name:     "Tentativa muito alta não deve estourar o teto",
			attempt:  60,
			expected: 15 * time.Minute,
		},
		{
			name:     "Tentativa negativa deve ser tratada como a primeira",
			attempt:  -3,
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Backoff(base, max, tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      30 * time.Second,
		MaxDelay:       15 * time.Minute,
		JitterFraction: 0.2,
	}

	// O jitter é aleatório, então validamos apenas os limites
	for attempt := 0; attempt < 10; attempt++ {
		pure := Backoff(policy.BaseDelay, policy.MaxDelay, attempt)
		lower := time.Duration(float64(pure) * (1 - policy.JitterFraction))
		upper := time.Duration(float64(pure) * (1 + policy.JitterFraction))

		for i := 0; i < 20; i++ {
			delay := policy.NextDelay(attempt)
			assert.GreaterOrEqual(t, delay, lower)
			assert.LessOrEqual(t, delay, upper)
			assert.GreaterOrEqual(t, delay, time.Duration(0))
		}
	}
}

func TestRetryPolicy_NextDelaySemJitter(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
	}

	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, 2*time.Second, policy.NextDelay(1))
	assert.Equal(t, 4*time.Second, policy.NextDelay(2))
	assert.Equal(t, time.Minute, policy.NextDelay(10))
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3}

	tests := []struct {
		name     string
		attempt  int
		expected bool
	}{
		{
			name:     "Abaixo do limite deve permitir nova tentativa",
			attempt:  2,
			expected: false,
		},
		{
			name:     "No limite deve esgotar",
			attempt:  3,
			expected: true,
		},
		{
			name:     "Acima do limite deve esgotar",
			attempt:  7,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Exhausted(tt.attempt))
		})
	}
}
