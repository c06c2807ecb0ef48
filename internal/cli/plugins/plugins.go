// Package plugins provides exec-based plugin support for madgresso.
// Plugins are separate binaries named madgresso-<command> that are discovered
// and executed when an unknown command is invoked. Form drivers are found the
// same way under the name madgresso-driver-<name>.
//
// This follows the same pattern used by kubectl and git for plugins.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/madgresso/madgresso/pkg/config"
)

// Prefix is the file-name prefix of every plugin binary.
const Prefix = "madgresso-"

// DriverPrefix is the file-name prefix of form drivers.
const DriverPrefix = Prefix + "driver-"

// KnownDrivers lists drivers that have official implementations available.
// These get special error messages directing users where to obtain them.
var KnownDrivers = map[string]string{
	"agresso": "Fills in the Agresso/Unit4 web expenses form through a browser.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// FindPlugin searches for a plugin binary named madgresso-<command>.
// It searches in the following locations in order:
//  1. Same directory as the madgresso binary
//  2. ~/.madgresso/plugins/
//  3. Anywhere in PATH
//
// Returns the full path to the plugin binary if found.
func FindPlugin(command string) (string, error) {
	return find(Prefix+command, searchDirs())
}

// FindDriver searches for the form driver madgresso-driver-<name> in the
// same locations as FindPlugin.
func FindDriver(name string) (string, error) {
	return find(DriverPrefix+name, searchDirs())
}

// ResolveDriver returns the executable for a driver configuration: Path when
// set, otherwise the plugin found for Name.
func ResolveDriver(cfg config.DriverConfig) (string, error) {
	if cfg.Path != "" {
		if !isExecutable(cfg.Path) {
			return "", fmt.Errorf("driver %s: %w", cfg.Path, ErrPluginNotFound)
		}
		return cfg.Path, nil
	}
	path, err := FindDriver(cfg.Name)
	if err != nil {
		return "", fmt.Errorf("driver %q: %w", cfg.Name, err)
	}
	return path, nil
}

func searchDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".madgresso", "plugins"))
	}
	return dirs
}

func find(binary string, dirs []string) (string, error) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, binary)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(binary); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments.
// It connects stdin, stdout, and stderr to the plugin process
// and returns the plugin's exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("unknown command %q for \"madgresso\"\n", command))
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	writeLocations(&sb, Prefix+command)
	sb.WriteString("\nRun 'madgresso --help' for usage.")

	return sb.String()
}

// FormatDriverNotFoundError explains where a missing form driver should be
// installed. Known drivers also say what they do.
func FormatDriverNotFoundError(name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("form driver %q not found\n", name))
	if info, ok := KnownDrivers[name]; ok {
		sb.WriteString("\n")
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	sb.WriteString("\nInstall the driver binary as one of:\n")
	writeLocations(&sb, DriverPrefix+name)
	sb.WriteString("\nor set driver.path in the configuration file.")

	return sb.String()
}

func writeLocations(sb *strings.Builder, binary string) {
	sb.WriteString(fmt.Sprintf("  - %s in the same directory as madgresso\n", binary))
	sb.WriteString(fmt.Sprintf("  - ~/.madgresso/plugins/%s\n", binary))
	sb.WriteString(fmt.Sprintf("  - %s anywhere in your PATH\n", binary))
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	// On Windows the executable bit does not apply; any regular file counts.
	if info.Mode().IsRegular() {
		return info.Mode()&0111 != 0
	}

	return false
}
