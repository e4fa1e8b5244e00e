package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"signal_bot/internal/detector"
	"signal_bot/internal/models"
	telegram "signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/pkg/logger"
)

const envPrefix = "SIGNAL"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "backtest",
		Short:        "Offline replay of the signal detector",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("symbol", "XRPUSDT", "symbol label for the output")
	pf.String("interval", "15m", "timeframe label for the output")
	pf.String("log-level", "warn", "log level")
	pf.Bool("all", false, "print every profitable candidate, not only the top")
	addDetectorFlags(pf, detector.DefaultConfig())
	_ = v.BindPFlags(pf)

	root.AddCommand(runCmd(v), demoCmd(v))
	return root
}

func addDetectorFlags(pf *pflag.FlagSet, def detector.Config) {
	pf.Float64("min-profit", def.MinProfitPct, "target, % from entry")
	pf.Float64("stop-loss", def.StopLossPct, "stop, % from entry")
	pf.Int("validity", def.ValidityCandles, "forward evaluation window, candles")
	pf.Int("top-n", def.TopN, "max signals in the output")
	pf.Int("trend-ema", def.TrendEMAPeriod, "trend EMA period, 0 disables the filter")
	pf.Int("min-candles", def.MinCandles, "minimum series length")
}

func runCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the detector over a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("file")
			if path == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrap(err, "open csv")
			}
			defer f.Close()

			series, err := loadCSV(f)
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			return analyze(cmd.OutOrStdout(), v, series)
		},
	}
	cmd.Flags().String("file", "", "CSV with timestamp,open,high,low,close,volume")
	_ = v.BindPFlag("file", cmd.Flags().Lookup("file"))
	return cmd
}

func demoCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the detector over a synthetic rise-and-fall series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd.OutOrStdout(), v, demoSeries())
		},
	}
}

func detectorConfig(v *viper.Viper) detector.Config {
	c := detector.DefaultConfig()
	c.MinProfitPct = v.GetFloat64("min-profit")
	c.StopLossPct = v.GetFloat64("stop-loss")
	c.ValidityCandles = v.GetInt("validity")
	c.TopN = v.GetInt("top-n")
	c.TrendEMAPeriod = v.GetInt("trend-ema")
	c.MinCandles = v.GetInt("min-candles")
	return c
}

func analyze(w io.Writer, v *viper.Viper, series *models.CandleSeries) error {
	log, err := logger.Init(v.GetString("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	engine, err := detector.New(detectorConfig(v), detector.WithLogger(log))
	if err != nil {
		return err
	}

	rep := engine.Analyze(series)
	signals := rep.Signals
	if v.GetBool("all") {
		signals = rep.Candidates
	}

	first, last := series.At(0).Time, series.Last().Time
	fmt.Fprintf(w, "%s %s: %d candles %s .. %s\n",
		v.GetString("symbol"), v.GetString("interval"), series.Len(),
		first.Format("2006-01-02 15:04"), last.Format("2006-01-02 15:04"))

	if len(signals) == 0 {
		fmt.Fprintln(w, "no profitable signals")
	}
	for i, s := range signals {
		fmt.Fprintln(w, telegram.DigestLine(i+1, s))
	}
	fmt.Fprintln(w, rep.Diagnostics.String())

	log.Debug("backtest finished", zap.Int("signals", len(signals)))
	return nil
}
