package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seblin/curpy/internal/config"
)

type rootOptions struct {
	envFile     string
	cacheFile   string
	driver      string
	logLevel    string
	listCodes   bool
	precision   int
	addCurrency bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "curpy [flags] [\"AMOUNT SRC in DST\" ...]",
		Short: "Convert currencies with the ECB reference rates",
		Long: `curpy converts amounts between currencies using the euro foreign exchange
reference rates published daily by the European Central Bank.

Each argument is one conversion such as "42.23 EUR in USD". Without
arguments the conversions are read from standard input, one per line.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := opts.app(ctx, stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if opts.listCodes {
				codes, err := a.svc.Codes(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, strings.Join(codes, ","))
				return nil
			}

			convert := func(line string) error {
				out, err := a.svc.ConvertString(ctx, line, opts.precision, opts.addCurrency)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, out)
				return nil
			}

			if len(args) > 0 {
				return convertArgs(ctx, args, convert)
			}
			return convertLines(ctx, stdin, convert)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", "", "read settings from this .env file (default .env)")
	pf.StringVar(&opts.cacheFile, "cache-file", "", "rate cache file (default ~/.curpy/rates.json)")
	pf.StringVar(&opts.driver, "storage", "", "cache backend: file, memory, sqlite or postgres")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	f := cmd.Flags()
	f.BoolVarP(&opts.listCodes, "list-codes", "l", false, "print the supported currency codes and exit")
	f.IntVarP(&opts.precision, "precision", "p", 2, "number of decimal places in the result")
	f.BoolVarP(&opts.addCurrency, "add-currency", "a", false, "append the target currency code to each result")

	cmd.AddCommand(newServeCmd(opts, stderr), newRefreshCmd(opts, stdout, stderr))
	return cmd
}

// config loads the environment and applies command line overrides.
func (o *rootOptions) config() (config.Config, error) {
	var files []string
	if o.envFile != "" {
		files = append(files, o.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if o.cacheFile != "" {
		cfg.CacheFile = o.cacheFile
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) app(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, stderr)
}

// convertArgs runs fn for every argument, stopping quietly on interrupt.
func convertArgs(ctx context.Context, args []string, fn func(string) error) error {
	for _, arg := range args {
		if ctx.Err() != nil {
			return nil
		}
		if err := fn(arg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
	return nil
}

// convertLines runs fn for every non-blank line of r. An interrupt ends
// the loop quietly, even while a read is blocked; the reader goroutine is
// abandoned in that case.
func convertLines(ctx context.Context, r io.Reader, fn func(string) error) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return <-readErr
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := fn(line); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}
