package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli"
	filesystem "github.com/xirelogy/magpie-s3-filesystem"
	"github.com/xirelogy/magpie-s3-filesystem/cmd"
	"github.com/xirelogy/magpie-s3-filesystem/cmd/builtin"
	"github.com/xirelogy/magpie-s3-filesystem/config"
	"github.com/xirelogy/magpie-s3-filesystem/s3fs"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Commands that never touch the store and run without a configuration.
var standalone = map[string]bool{
	"help": true,
}

// loadConfig reads the YAML file when given, else the S3FS_* environment.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.FromFile(path)
	}

	return config.FromEnv()
}

// session carries the streams of one invocation and the exit code of its command.
type session struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	code int
}

func (s *session) run(ctx context.Context, configPath string, args []string) (int, error) {
	manager := cmd.NewCommandManager(nil, s.stdin, s.stdout, nil)
	if err := builtin.InitBuiltin(manager); err != nil {
		return cmd.ExitFailure, err
	}

	if standalone[args[0]] {
		return manager.Execute(ctx, args...)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return cmd.ExitFailure, err
	}
	// Object bytes go to stdout, so diagnostics must not
	cfg.LogOutput = s.stderr

	if err := s3fs.Register(filesystem.DefaultRegistry); err != nil {
		return cmd.ExitFailure, err
	}

	fs, err := filesystem.Open(ctx, cfg)
	if err != nil {
		return cmd.ExitFailure, err
	}
	defer fs.Close(context.Background())

	logger, err := cfg.Logger("cli")
	if err != nil {
		return cmd.ExitFailure, err
	}

	manager.Bind(fs, logger)
	return manager.Execute(ctx, args...)
}

func newApp(ctx context.Context, s *session) *cli.App {
	app := cli.NewApp()
	app.Name = "s3fs"
	app.Usage = "Operate on an S3 bucket as a file system"
	app.UsageText = "s3fs [--config file] <command> [args]"
	app.Description = "Without --config the S3FS_* environment is used. Run 'help' to list commands."
	app.HideVersion = true
	// help is a registered command with its own listing
	app.HideHelp = true
	app.Writer = s.stdout
	app.ErrWriter = s.stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			EnvVar: config.EnvPrefix + "CONFIG",
			Usage:  "path to a YAML configuration file",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() == 0 {
			s.code = cmd.ExitFailure
			if err := cli.ShowAppHelp(c); err != nil {
				return err
			}
			return fmt.Errorf("%w: no command specified", cmd.ErrUsage)
		}

		code, err := s.run(ctx, c.String("config"), c.Args())
		s.code = code
		return err
	}

	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	s := &session{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	err := newApp(ctx, s).Run(os.Args)
	stop()

	if err != nil {
		if s.code == cmd.ExitOK {
			s.code = cmd.ExitFailure
		}

		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		if errors.Is(err, cmd.ErrUsage) {
			fmt.Fprintln(os.Stderr, hintStyle.Render("run 'help' to list commands"))
		}
	}

	os.Exit(s.code)
}
