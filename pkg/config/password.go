package config

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ResolvePassword returns the login password and whether one is known. With
// neither password nor password_command set the user types it into the form.
func (c *Config) ResolvePassword(ctx context.Context) (string, bool, error) {
	if c.Password != nil {
		return *c.Password, true, nil
	}
	if c.PasswordCommand == "" {
		return "", false, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", c.PasswordCommand) // #nosec G204 -- command comes from the user's own config
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("running password_command: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(stdout.String(), "\r\n"), true, nil
}
