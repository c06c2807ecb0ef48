package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/logger"
	"github.com/madgresso/madgresso/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// StdinArg names standard input among the claim-file arguments.
const StdinArg = "-"

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

func commandContext(cmd *cobra.Command) (context.Context, zerolog.Logger) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, logger.FromContext(ctx)
}

func loadConfig(ctx context.Context, g *GlobalOptions) (*config.Config, error) {
	path := g.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// claimSources turns claim-file arguments into line sources, in argument
// order. Globs are expanded; "-" reads stdin. A file named twice is read
// twice. The returned names are the files that will be read.
func claimSources(args []string, stdin io.Reader) ([]parser.LineSource, []string, error) {
	var sources []parser.LineSource
	var names []string
	var pending []string

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		var files []string
		for _, arg := range pending {
			matches, err := parser.ExpandGlobs([]string{arg})
			if err != nil {
				return fmt.Errorf("expanding claim files: %w", err)
			}
			files = append(files, matches...)
		}
		pending = nil
		sources = append(sources, parser.NewFileSource(files...))
		names = append(names, files...)
		return nil
	}

	for _, arg := range args {
		if arg != StdinArg {
			pending = append(pending, arg)
			continue
		}
		if err := flush(); err != nil {
			return nil, nil, err
		}
		sources = append(sources, parser.NewReaderSource(parser.InteractiveSourceName, io.NopCloser(stdin)))
		names = append(names, parser.InteractiveSourceName)
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}

	return sources, names, nil
}
