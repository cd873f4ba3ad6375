package rate

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/bobvalue/cmd/env"
	"github.com/sig-0/bobvalue/lookup"
	"github.com/sig-0/bobvalue/server/config"
)

type lookupFactory func(context.Context, *config.Lookup, *slog.Logger) (*lookup.Lookup, error)

// rateCfg wraps the rate configuration
type rateCfg struct {
	out      io.Writer
	newRates lookupFactory
	lookup   *config.Lookup

	asJSON bool
}

// NewRateCmd creates the rate command
func NewRateCmd() *ffcli.Command {
	cfg := &rateCfg{
		out:      os.Stdout,
		newRates: env.NewLookup,
		lookup:   config.DefaultLookupConfig(),
	}

	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "rate",
		ShortUsage: "rate [flags]",
		LongHelp:   "Looks up the current official BOB/USDT rate (best-effort, advisory only)",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *rateCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.lookup.Model,
		"lookup-model",
		config.DefaultLookupModel,
		"the Gemini model queried for the official rate",
	)

	fs.StringVar(
		&c.lookup.Timeout,
		"lookup-timeout",
		config.DefaultLookupTimeout,
		"the official rate lookup timeout (0s for none)",
	)

	fs.BoolVar(
		&c.asJSON,
		"json",
		false,
		"print the result as JSON",
	)
}

func (c *rateCfg) exec(ctx context.Context, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	lk, err := c.newRates(ctx, c.lookup, logger)
	if err != nil {
		return fmt.Errorf("unable to create rate lookup, %w", err)
	}

	res, err := lk.FetchOfficialRate(ctx)
	if err != nil {
		return err
	}

	if c.asJSON {
		return json.NewEncoder(c.out).Encode(res)
	}

	_, err = fmt.Fprintf(c.out, "%v BOB/USDT (%s, advisory)\n", res.ExchangeRate, res.Source)

	return err
}
