package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"main/internal/model"
	"main/internal/session"
	"main/internal/sim"
)

func main() {
	if err := run(); err != nil {
		log.Printf("simsrv: %v", err)
		os.Exit(1)
	}
}

func run() error {
	bootstrapPath := flag.String("bootstrap", session.DefaultBootstrapPath, "Bootstrap endpoint path")
	endpointDir := flag.String("endpoint-dir", session.DefaultEndpointDir, "Per-session endpoint directory")
	symbol := flag.String("symbol", "BTC_USDT", "Instrument symbol of the generated series")
	tickCount := flag.Int("ticks", 100_000, "Number of ticks each session replays")
	basePrice := flag.Float64("base-price", 65_000, "Starting mid price of the random walk")
	levels := flag.Int("levels", 5, "Book levels per side")
	seed := flag.Int64("seed", 1, "Random walk seed")
	flag.Parse()

	if err := os.MkdirAll(*endpointDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*bootstrapPath), 0o755); err != nil {
		return err
	}

	server, err := sim.NewServer(sim.Config{
		BootstrapPath: *bootstrapPath,
		EndpointDir:   *endpointDir,
		Ticks:         generateTicks(*symbol, *tickCount, *basePrice, *levels, *seed),
	})
	if err != nil {
		return err
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// generateTicks builds a random-walk depth series with a fixed spread.
func generateTicks(symbol string, count int, base float64, levels int, seed int64) []model.Depth {
	rng := rand.New(rand.NewSource(seed))
	out := make([]model.Depth, 0, count)

	mid := base
	const step = 0.5
	const spread = 10.0

	for i := range count {
		mid += (rng.Float64() - 0.5) * 2 * step
		depth := model.Depth{
			Symbol:    symbol,
			Bids:      make([]model.Level, 0, levels),
			Asks:      make([]model.Level, 0, levels),
			Timestamp: int64(i),
		}
		for l := range levels {
			gap := spread/2 + float64(l)*spread
			depth.Bids = append(depth.Bids, model.Level{mid - gap, 1 + rng.Float64()})
			depth.Asks = append(depth.Asks, model.Level{mid + gap, 1 + rng.Float64()})
		}
		out = append(out, depth)
	}
	return out
}
