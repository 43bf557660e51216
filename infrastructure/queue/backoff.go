package queue

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy controla as novas tentativas de jobs que falharam
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
}

// DefaultRetryPolicy são os valores usados quando a configuração não define
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      30 * time.Second,
		MaxDelay:       15 * time.Minute,
		JitterFraction: 0.2,
	}
}

// Backoff calcula o atraso determinístico de uma tentativa: base * 2^attempt,
// limitado a max. Função pura, sem jitter, para ser testável diretamente.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(base) * math.Pow(2, float64(attempt))
	if delay > float64(max) || delay < 0 {
		return max
	}

	return time.Duration(delay)
}

// NextDelay calcula o atraso da próxima tentativa com jitter aplicado, para
// espalhar retries simultâneos de jobs que falharam juntos
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := Backoff(p.BaseDelay, p.MaxDelay, attempt)

	if p.JitterFraction > 0 {
		jitter := float64(delay) * p.JitterFraction * (rand.Float64()*2 - 1)
		delay += time.Duration(jitter)
	}

	if delay < 0 {
		return 0
	}

	return delay
}

// Exhausted indica se o job deve parar de ser reexecutado automaticamente
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
