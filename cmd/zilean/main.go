package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/internal/journal"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/session"
	"main/pkg/reqrep"

	"github.com/bytedance/sonic"
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("zilean: %v", err)
		os.Exit(1)
	}
}

func run() error {
	bootstrapPath := flag.String("bootstrap", session.DefaultBootstrapPath, "Bootstrap endpoint path")
	endpointDir := flag.String("endpoint-dir", session.DefaultEndpointDir, "Per-session endpoint directory")
	exchangeName := flag.String("exchange", "BinanceSpot", "Replay venue")
	symbol := flag.String("symbol", "BTC_USDT", "Instrument symbol")
	startTime := flag.Int64("start-time", 0, "Replay window start (epoch ms)")
	endTime := flag.Int64("end-time", time.Now().UnixMilli(), "Replay window end (epoch ms)")
	balanceTotal := flag.Float64("balance", 100_000_000, "Starting balance (total and available)")
	makerFee := flag.Float64("maker-fee", 0, "Maker fee rate")
	takerFee := flag.Float64("taker-fee", 0, "Taker fee rate")
	sourceFile := flag.String("source-file", "", "Replay from a file instead of the server database")
	configPath := flag.String("config", "", "JSON file with launch parameters (overrides the flags above)")
	orderEvery := flag.Int("order-every", 1000, "Quote both sides every N ticks (0=disable)")
	checkEvery := flag.Int("check-every", 1000, "Verify the account every N ticks (0=disable)")
	orderAmount := flag.Float64("order-amount", 1.0, "Order quantity")
	priceOffset := flag.Float64("price-offset", 0.1, "Offset inside the spread for resting quotes")
	tickWithID := flag.Bool("tick-with-id", false, "Append the session id to tick requests")
	requestTimeout := flag.Duration("request-timeout", 0, "Per-request timeout (0=block forever)")
	journalDSN := flag.String("journal-dsn", "", "PostgreSQL DSN for the order journal (empty=disabled)")
	profile := flag.Bool("profile", false, "Enable pyroscope profiling")
	profileServer := flag.String("profile-server", "http://localhost:4040", "Pyroscope server address")
	flag.Parse()

	exchange, ok := enum.ParseExchange(*exchangeName)
	if !ok {
		return fmt.Errorf("unknown exchange: %s", *exchangeName)
	}
	if *orderEvery < 0 || *checkEvery < 0 {
		return fmt.Errorf("order-every and check-every must be >= 0")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "zilean/driver",
			ServerAddress:   *profileServer,
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
			},
		})
		if err != nil {
			return fmt.Errorf("pyroscope start failed: %w", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	jrnl, err := journal.Open(*journalDSN)
	if err != nil {
		return fmt.Errorf("journal open failed: %w", err)
	}
	defer jrnl.Close()

	cfg := model.LaunchConfig{
		Exchanges: []enum.Exchange{exchange},
		Symbol:    *symbol,
		StartTime: *startTime,
		EndTime:   *endTime,
		Balance: model.Balance{
			Total:     *balanceTotal,
			Available: *balanceTotal,
		},
		Source:  model.DataSource{FilePath: *sourceFile},
		FeeRate: model.FeeRate{MakerFee: *makerFee, TakerFee: *takerFee},
	}
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		cfg = loaded
	}

	id, err := launch(ctx, *bootstrapPath, cfg, *requestTimeout)
	if err != nil {
		return err
	}

	channel, err := reqrep.NewChannel(session.EndpointPath(*endpointDir, id))
	if err != nil {
		return err
	}
	if err := channel.Dial(); err != nil {
		return fmt.Errorf("dial session endpoint: %w", err)
	}

	metrics := obs.NewMetrics()
	sess, err := session.New(id, obs.Meter(channel, metrics), cfg, session.Options{
		TickWithSessionID: *tickWithID,
		RequestTimeout:    *requestTimeout,
		Recorder:          jrnl,
	})
	if err != nil {
		return err
	}
	jrnl.StartSession(id, cfg)

	handler := quoteLoop(sess, metrics, *orderEvery, *checkEvery, *orderAmount, *priceOffset)

	started := time.Now()
	report, err := sess.Run(ctx, handler)
	jrnl.EndSession(report.Ticks, causeString(report, err))
	for _, result := range report.Sweep {
		if result.Err != nil {
			metrics.IncSweepFailure()
		}
	}

	logs.Infof("processed %d ticks in %s, final state: %s, swept: %d",
		report.Ticks, time.Since(started), report.State, len(report.Sweep))

	stats := metrics.Snapshot()
	var faults uint64
	for _, n := range stats.FaultCounts {
		faults += n
	}
	logs.Infof("round trips: %d (faults: %d, rejections: %d, sweep failures: %d), tick latency min/avg/max: %s/%s/%s",
		stats.RoundTrip.Count, faults, stats.Rejections, stats.SweepFailures,
		stats.Tick.Min, stats.Tick.Avg, stats.Tick.Max)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadConfig reads launch parameters from a JSON file in the wire layout.
func loadConfig(path string) (model.LaunchConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.LaunchConfig{}, err
	}

	var cfg model.LaunchConfig
	if err := sonic.ConfigFastest.Unmarshal(raw, &cfg); err != nil {
		return model.LaunchConfig{}, err
	}
	return cfg, cfg.Validate()
}

// launch opens the bootstrap channel for exactly one round trip.
func launch(ctx context.Context, path string, cfg model.LaunchConfig, timeout time.Duration) (string, error) {
	bootstrap, err := reqrep.NewChannel(path)
	if err != nil {
		return "", err
	}
	if err := bootstrap.Dial(); err != nil {
		return "", fmt.Errorf("dial bootstrap endpoint: %w", err)
	}
	defer bootstrap.Close()

	launcher, err := session.NewLauncher(bootstrap)
	if err != nil {
		return "", err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return launcher.Launch(ctx, cfg)
}

// quoteLoop is the reference strategy: every N ticks rest a buy just under
// the best ask and a sell just over the best bid, then verify the account.
func quoteLoop(sess *session.Session, metrics *obs.Metrics, orderEvery, checkEvery int, amount, offset float64) session.TickHandler {
	var ticks int
	return func(ctx context.Context, tick model.TickSnapshot) error {
		ticks++

		if orderEvery > 0 && ticks%orderEvery == 0 {
			bid, okBid := tick.Depth.BestBid()
			ask, okAsk := tick.Depth.BestAsk()
			if okBid && okAsk {
				if cid, err := sess.Orders().Submit(ctx, enum.OrderSideBuy, ask.Price()-offset, amount); err != nil {
					metrics.IncRejection()
					logs.Warnf("buy rejected, err: %+v", err)
				} else {
					logs.Infof("buy posted, cid: %s price: %f", cid, ask.Price()-offset)
				}

				if cid, err := sess.Orders().Submit(ctx, enum.OrderSideSell, bid.Price()+offset, amount); err != nil {
					metrics.IncRejection()
					logs.Warnf("sell rejected, err: %+v", err)
				} else {
					logs.Infof("sell posted, cid: %s price: %f", cid, bid.Price()+offset)
				}
			}
		}

		if checkEvery > 0 && ticks%checkEvery == 0 {
			account, err := sess.CheckAccount(ctx)
			if err != nil {
				// Fatal: trading against a server that cannot report its own
				// state has to stop here.
				return err
			}
			logs.Infof("account total: %f available: %f freezed: %f",
				account.Balance.Total, account.Balance.Available, account.Balance.Freezed)
		}
		return nil
	}
}

func causeString(report session.Report, err error) string {
	switch {
	case report.Cause != nil:
		return report.Cause.Error()
	case err != nil:
		return err.Error()
	default:
		return "completed"
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(string, ...any)  {}
func (emptyLogger) Debugf(string, ...any) {}
func (emptyLogger) Errorf(string, ...any) {}
