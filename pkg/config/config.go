package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	accountPattern    = regexp.MustCompile(`^\d{4}$`)
	subprojectPattern = regexp.MustCompile(`^[\w-]+$`)
	typeCodePattern   = regexp.MustCompile(`^\w+$`)
)

// ErrLoginRequired is returned by RequireLogin when url or username is missing.
var ErrLoginRequired = errors.New("url and username are required to submit a claim")

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.ExpenseTypes == nil {
		cfg.ExpenseTypes = ExpenseTypes{}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in webhook defaults.
func Validate(cfg *Config) error {
	if cfg.DefaultSubproject == "" {
		return errors.New("default_subproject: a default subproject is required")
	}
	if !subprojectPattern.MatchString(cfg.DefaultSubproject) {
		return fmt.Errorf("default_subproject: %q may only contain letters, digits, '_' and '-'", cfg.DefaultSubproject)
	}

	// An empty account is allowed: it overrides the form's default with nothing.
	if cfg.DefaultAccount != nil && *cfg.DefaultAccount != "" && !accountPattern.MatchString(*cfg.DefaultAccount) {
		return fmt.Errorf("default_account: %q must be a 4-digit code", *cfg.DefaultAccount)
	}

	for _, code := range cfg.ExpenseTypes.Codes() {
		if !typeCodePattern.MatchString(code) {
			return fmt.Errorf("expense_types: code %q may only contain letters, digits and '_'", code)
		}
		if strings.TrimSpace(cfg.ExpenseTypes[code]) == "" {
			return fmt.Errorf("expense_types: code %q has no label", code)
		}
	}

	if cfg.URL != "" {
		if err := validateHTTPURL(cfg.URL); err != nil {
			return fmt.Errorf("url: %w", err)
		}
	}

	if cfg.Proxy != nil && *cfg.Proxy != "" {
		u, err := url.Parse(*cfg.Proxy)
		if err != nil {
			return fmt.Errorf("proxy: invalid url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("proxy: %q must look like scheme://host:port", *cfg.Proxy)
		}
	}

	if cfg.Password != nil && cfg.PasswordCommand != "" {
		return errors.New("password and password_command are mutually exclusive")
	}

	if cfg.Driver.Name == "" && cfg.Driver.Path == "" {
		return errors.New("driver: name or path is required")
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// RequireLogin checks the settings needed to log in to the expenses form.
func (c *Config) RequireLogin() error {
	if c.URL == "" || c.Username == "" {
		return ErrLoginRequired
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	if err := validateHTTPURL(wh.URL); err != nil {
		return err
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnSubmit
	case WebhookTriggerOnSubmit, WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_submit, on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR.
func expandEnvVar(s string) string {
	switch {
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}"):
		return os.Getenv(s[2 : len(s)-1])
	case strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${"):
		return os.Getenv(s[1:])
	default:
		return s
	}
}
