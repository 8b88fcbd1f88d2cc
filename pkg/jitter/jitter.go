// Package jitter добавляет случайность к интервалам повторных попыток,
// чтобы клиенты, упавшие одновременно, не переподключались синхронно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%).
const DefaultJitter = 0.5

// Duration возвращает d с джиттером в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	return withRand(d, factor, rand.Float64)
}

// DurationWithSeed то же, что Duration, но на заданном генераторе.
func DurationWithSeed(d time.Duration, factor float64, rng *rand.Rand) time.Duration {
	return withRand(d, factor, rng.Float64)
}

func withRand(d time.Duration, factor float64, float func() float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(float()*factor*float64(d))
}

// ExponentialBackoff удваивает base на каждой попытке (attempt с нуля), не превышая max,
// и добавляет джиттер. Итог может превысить max не более чем в (1+factor) раз.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	return Duration(backoff(base, max, attempt), factor)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}
