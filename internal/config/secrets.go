package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service holding stored credentials
const KeyringService = "vision-researcher"

// Secret names, as used by `keys set|delete` and the keyring
const (
	SecretScreenshotOne = "screenshotone"
	SecretOpenAI        = "openai"
)

// Environment variables carrying the secrets
const (
	EnvScreenshotOneKey = "SCREENSHOTONE_API_KEY"
	EnvOpenAIKey        = "OPENAI_API_KEY"
)

// SecretNames lists the secrets the keys command accepts
var SecretNames = []string{SecretScreenshotOne, SecretOpenAI}

func secretEnv(name string) (string, bool) {
	switch name {
	case SecretScreenshotOne:
		return EnvScreenshotOneKey, true
	case SecretOpenAI:
		return EnvOpenAIKey, true
	}
	return "", false
}

// LoadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Debug().Str("file", path).Msg("No env file loaded; relying on process environment")
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Loaded env file")
	return nil
}

// SetSecret stores a credential in the OS keyring
func SetSecret(name, value string) error {
	if _, ok := secretEnv(name); !ok {
		return fmt.Errorf("unknown key %q (want one of %s)", name, strings.Join(SecretNames, ", "))
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("refusing to store an empty %s key", name)
	}
	if err := keyring.Set(KeyringService, name, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// DeleteSecret removes a credential from the OS keyring
func DeleteSecret(name string) error {
	if _, ok := secretEnv(name); !ok {
		return fmt.Errorf("unknown key %q (want one of %s)", name, strings.Join(SecretNames, ", "))
	}
	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// lookupSecret resolves a secret from the environment, then the keyring
func lookupSecret(name string) string {
	env, _ := secretEnv(name)
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	v, err := keyring.Get(KeyringService, name)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Debug().Err(err).Str("key", name).Msg("Keyring unavailable")
		}
		return ""
	}
	return v
}

// RequireSecrets fails with CONFIG_MISSING unless every named secret is set
func (c *Config) RequireSecrets(names ...string) error {
	var missing []string
	for _, name := range names {
		var value string
		switch name {
		case SecretScreenshotOne:
			value = c.ScreenshotOneKey
		case SecretOpenAI:
			value = c.OpenAIKey
		}
		if value == "" {
			env, _ := secretEnv(name)
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return engine.NewError(engine.ErrCodeConfigMissing,
			fmt.Sprintf("missing %s (set it in the environment, a .env file or with `keys set`)", strings.Join(missing, ", ")), nil)
	}
	return nil
}

// AuditSecrets returns the secrets an audit session needs with the configured backend
func (c *Config) AuditSecrets() []string {
	if c.Backend == BackendChrome {
		return []string{SecretOpenAI}
	}
	return []string{SecretScreenshotOne, SecretOpenAI}
}
