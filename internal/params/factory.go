package params

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Spec is the parsed form of one entry in a TestSpec's parameterSources
// map. Field meaning matches the config document (§6.2): Type selects the
// top-level family, Distribution/Selection pick a sub-variant, and the rest
// are variant-specific.
type Spec struct {
	Type         string // "random" | "file" | "jwt" | "redis" | "sql"
	Distribution string // "uniform" | "normal"
	Selection    string // "random" | "round-robin"
	Min, Max     float64
	Mean, Stddev float64
	Path         string
	Column       string
	MaxLines     int

	// jwt
	Secret string
	TTL    time.Duration
	Claims map[string]any

	// redis
	RedisAddr string
	RedisKey  string

	// sql
	SQLDriver string
	SQLDSN    string
	SQLQuery  string
}

// Build constructs the Source named by spec, deriving its PRNG (when
// needed) from rng. logger is used for file/CSV load warnings and defaults
// to a no-op logger when nil.
func Build(spec Spec, rng *rand.Rand, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(spec.Type) {
	case "random":
		switch strings.ToLower(spec.Distribution) {
		case "", "uniform":
			return NewUniformInt(int64(spec.Min), int64(spec.Max), rng)
		case "normal":
			return NewTruncatedNormal(spec.Mean, spec.Stddev, spec.Min, spec.Max, rng)
		default:
			return nil, fmt.Errorf("%w: unknown distribution %q", ErrInvalidSource, spec.Distribution)
		}

	case "file":
		switch strings.ToLower(spec.Selection) {
		case "", "round-robin":
			return NewFileRoundRobin(spec.Path, spec.Column, spec.MaxLines, logger)
		case "random":
			return NewFileRandom(spec.Path, spec.Column, spec.MaxLines, logger, rng)
		default:
			return nil, fmt.Errorf("%w: unknown selection %q", ErrInvalidSource, spec.Selection)
		}

	case "jwt":
		return NewJWTSource(spec.Secret, spec.TTL, spec.Claims)

	case "redis":
		switch strings.ToLower(spec.Selection) {
		case "", "round-robin":
			return NewRedisRoundRobin(spec.RedisAddr, spec.RedisKey, spec.MaxLines)
		case "random":
			return NewRedisRandom(spec.RedisAddr, spec.RedisKey, spec.MaxLines, rng)
		default:
			return nil, fmt.Errorf("%w: unknown selection %q", ErrInvalidSource, spec.Selection)
		}

	case "sql":
		switch strings.ToLower(spec.Selection) {
		case "", "round-robin":
			return NewSQLRoundRobin(spec.SQLDriver, spec.SQLDSN, spec.SQLQuery, spec.MaxLines)
		case "random":
			return NewSQLRandom(spec.SQLDriver, spec.SQLDSN, spec.SQLQuery, spec.MaxLines, rng)
		default:
			return nil, fmt.Errorf("%w: unknown selection %q", ErrInvalidSource, spec.Selection)
		}

	default:
		return nil, fmt.Errorf("%w: unknown parameter source type %q", ErrInvalidSource, spec.Type)
	}
}
