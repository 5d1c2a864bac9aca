// Package config loads environment-variable overrides onto the CLI's flag
// struct, the way the teacher's own binary layers env vars under
// mainer-parsed flags (§AMBIENT STACK "Configuration").
package config

import "github.com/caarlos0/env/v6"

// Env holds the ESBC_*-prefixed settings that apply regardless of which
// subcommand runs: a debug-trace toggle for verbose disassembly output
// and a safety cap on a single function's local-slot count, guarding
// against runaway recursion in malformed input ASTs.
type Env struct {
	Debug        bool `env:"ESBC_DEBUG" envDefault:"false"`
	MaxLocalSlot int  `env:"ESBC_MAX_LOCALS" envDefault:"65535"`
}

// Load reads ESBC_* environment variables into a new Env, falling back to
// the declared defaults for anything unset.
func Load() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
