package medspan

import (
	"log/slog"
	"strings"
	"time"
)

// SanitizeJSONResponse removes garbage characters often produced by LLMs.
// Very defensive, yet fast; tweak as you like.
func SanitizeJSONResponse(b []byte) []byte {
	s := strings.TrimSpace(string(b))

	// Remove leading/trailing code fences, markdown, etc.
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return []byte(strings.TrimSpace(s))
}

// retryable executes a function with exponential backoff retry logic.
func retryable(call func() error, max int, backoff time.Duration, log *slog.Logger) error {
	if max == 0 {
		return call() // no retry
	}

	delay := backoff
	for i := 0; i <= max; i++ {
		if err := call(); err != nil {
			if i == max {
				log.Debug("final attempt failed", "attempt", i+1, "error", err)
				return err
			}
			log.Debug("attempt failed, retrying", "attempt", i+1, "error", err, "delay", delay)
			time.Sleep(delay)
			delay *= 2
			continue
		}
		if i > 0 {
			log.Debug("attempt succeeded", "attempt", i+1)
		}
		return nil
	}
	return nil
}
