package compute

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/bobvalue/cmd/env"
	"github.com/sig-0/bobvalue/lookup"
	"github.com/sig-0/bobvalue/server/config"
	"github.com/sig-0/bobvalue/valuation"
)

type lookupFactory func(context.Context, *config.Lookup, *slog.Logger) (*lookup.Lookup, error)

// computeCfg wraps the compute configuration
type computeCfg struct {
	out      io.Writer
	newRates lookupFactory
	lookup   *config.Lookup

	// usdtBalance is set only when -balance is given
	usdtBalance *float64

	initialBOBAmount float64
	p2pRate          float64
	officialRate     float64
	fetchOfficial    bool
}

// NewComputeCmd creates the compute command
func NewComputeCmd() *ffcli.Command {
	cfg := &computeCfg{
		out:      os.Stdout,
		newRates: env.NewLookup,
		lookup:   config.DefaultLookupConfig(),
	}

	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "compute",
		ShortUsage: "compute -amount <BOB> (-p2p <rate> | -balance <USDT>) [-official <rate> | -fetch-official]",
		LongHelp:   "Computes the value of the USDT bought over P2P, at the official rate",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *computeCfg) registerFlags(fs *flag.FlagSet) {
	fs.Float64Var(
		&c.initialBOBAmount,
		"amount",
		0,
		"the initial amount spent, in BOB",
	)

	fs.Float64Var(
		&c.p2pRate,
		"p2p",
		0,
		"the BOB/USDT rate of the P2P purchase",
	)

	fs.Func(
		"balance",
		"the current USDT balance, valued instead of the USDT bought at -p2p",
		func(raw string) error {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid balance %q", raw)
			}

			c.usdtBalance = &v

			return nil
		},
	)

	fs.Float64Var(
		&c.officialRate,
		"official",
		0,
		"the official BOB/USDT rate",
	)

	fs.BoolVar(
		&c.fetchOfficial,
		"fetch-official",
		false,
		"look up the official rate when -official is not set",
	)

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
}

// exec executes the compute command
func (c *computeCfg) exec(ctx context.Context, _ []string) error {
	officialRate := c.officialRate

	// A manually entered rate always wins over a lookup
	if officialRate == 0 && c.fetchOfficial {
		res, err := c.fetchOfficialRate(ctx)
		if err != nil {
			return err
		}

		officialRate = res.ExchangeRate
	}

	var (
		res *valuation.Result
		err error
	)

	if c.usdtBalance != nil {
		res, err = valuation.ComputeFromBalance(c.initialBOBAmount, *c.usdtBalance, officialRate)
	} else {
		res, err = valuation.Compute(c.initialBOBAmount, c.p2pRate, officialRate)
	}

	if err != nil {
		return fmt.Errorf("unable to compute valuation, %w", err)
	}

	return c.print(res, officialRate)
}

// fetchOfficialRate runs a single lookup, and waits for it to complete
func (c *computeCfg) fetchOfficialRate(ctx context.Context) (*lookup.Result, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	lk, err := c.newRates(ctx, c.lookup, logger)
	if err != nil {
		return nil, fmt.Errorf("unable to create rate lookup, %w", err)
	}

	task := lk.Start(ctx)

	_, _ = fmt.Fprintf(c.out, "Fetching the official rate (lookup %s)...\n", task.ID())

	res, err := task.Wait(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(c.out, "Unable to fetch the official rate, set it manually with -official")

		return nil, err
	}

	_, _ = fmt.Fprintf(
		c.out,
		"Official rate (advisory, %s): %s\n",
		res.Source,
		valuation.FormatAmount(res.ExchangeRate, 4),
	)

	return res, nil
}

func (c *computeCfg) print(res *valuation.Result, officialRate float64) error {
	var (
		display   = res.Rounded(valuation.DefaultPlaces)
		label     = "Value gain"
		usdtLabel = "USDT purchased"
	)

	if c.usdtBalance != nil {
		usdtLabel = "USDT balance"
	}

	if res.Outcome() == valuation.OutcomeLoss {
		label = "Value reduction"
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "Initial amount\t%s Bs\n", valuation.FormatAmount(c.initialBOBAmount, valuation.DefaultPlaces))
	_, _ = fmt.Fprintf(w, "Official rate\t%s\n", valuation.FormatAmount(officialRate, 4))
	_, _ = fmt.Fprintf(w, "%s\t%s $\n", usdtLabel, display.USDTPurchased)
	_, _ = fmt.Fprintf(w, "Available value\t%s Bs\n", display.AvailableBOBValue)
	_, _ = fmt.Fprintf(w, "%s\t%s%%\n", label, display.PercentageChange)

	return w.Flush()
}
