// Package config provides configuration loading and validation for madgresso.
package config

import (
	"sort"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// URL is the address of the expenses web application.
	URL string `yaml:"url"`

	Username string `yaml:"username"`

	// Password is nil when it is not stored; see PasswordCommand.
	Password *string `yaml:"password"`

	// PasswordCommand is a shell command whose output is the password,
	// e.g. a password manager lookup. Ignored when Password is set.
	PasswordCommand string `yaml:"password_command,omitempty"`

	// Proxy is passed to the driver, e.g. "socks5://localhost:8080".
	Proxy *string `yaml:"proxy"`

	// DefaultAccount is used for items without an explicit account. nil
	// means the form's own default is accepted.
	DefaultAccount *string `yaml:"default_account"`

	// DefaultSubproject is used for items without an explicit subproject.
	DefaultSubproject string `yaml:"default_subproject"`

	// ExpenseTypes maps the short codes used in claim files to the labels
	// offered by the form.
	ExpenseTypes ExpenseTypes `yaml:"expense_types"`

	Driver   DriverConfig    `yaml:"driver"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ExpenseTypes is the expense-type vocabulary.
type ExpenseTypes map[string]string

// Lookup returns the form label for a type code.
func (t ExpenseTypes) Lookup(code string) (string, bool) {
	label, ok := t[code]
	return label, ok
}

// Codes returns the type codes in sorted order.
func (t ExpenseTypes) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DriverConfig selects the program that fills in the expenses form.
type DriverConfig struct {
	// Name selects the plugin madgresso-driver-<name>.
	Name string `yaml:"name"`

	// Path runs this executable instead of looking the plugin up.
	Path string `yaml:"path,omitempty"`

	// Args are extra arguments passed to the driver.
	Args []string `yaml:"args,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnSubmit posts each submitted claim (default).
	WebhookTriggerOnSubmit WebhookTrigger = "on_submit"
	// WebhookTriggerOnIssues posts a check report when it has issues.
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways posts on submit and after every check.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// FiresOnSubmit reports whether the trigger covers submitted claims.
func (t WebhookTrigger) FiresOnSubmit() bool {
	return t == WebhookTriggerOnSubmit || t == WebhookTriggerAlways
}

// FiresOnCheck reports whether the trigger covers a check report.
func (t WebhookTrigger) FiresOnCheck(hasIssues bool) bool {
	switch t {
	case WebhookTriggerAlways:
		return true
	case WebhookTriggerOnIssues:
		return hasIssues
	default:
		return false
	}
}

// WebhookConfig defines an HTTP endpoint that receives claims or reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_submit" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
