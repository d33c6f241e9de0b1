// Command glacier drives the order book from the command line: with no
// arguments it reads commands from standard input and writes reports to
// standard output; "test" runs the deterministic self-test against a
// reference model; "profile" runs an unbounded random feed for profiling.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	tomb "gopkg.in/tomb.v2"

	"glacier/internal/engine"
	"glacier/internal/harness"
	"glacier/internal/metrics"
	"glacier/internal/session"
	"glacier/internal/textproto"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("glacier exited with error")
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "glacier",
		Short: "A continuous double-auction limit order book with iceberg orders",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().
				Timestamp().
				Str("run_id", session.NewCorrelationID()).
				Logger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdin()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newTestCmd(), newProfileCmd())
	return root
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the deterministic self-test against a reference model",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Program started in testing mode")
			book := engine.New(nil)
			if err := harness.RunSelfTest(book, log.Logger); err != nil {
				fmt.Println("TESTING FAILED.")
				return err
			}
			fmt.Println("Testing OK!")
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Run an unbounded random feed for profiling, until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Program started in profiling mode")
			return runProfile()
		},
	}
}

func runProfile() error {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	book := engine.New(collector)

	var t tomb.Tomb
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t.Go(func() error {
		return harness.RunProfileFeed(&t, book, log.Logger)
	})

	<-ctx.Done()
	t.Kill(nil)
	return t.Wait()
}

func runStdin() error {
	book := engine.New(nil)
	writer := textproto.NewWriter(os.Stdout)
	defer writer.Flush()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd, err := textproto.Parse(scanner.Text())
		if err != nil {
			if errors.Is(err, textproto.ErrEmptyLine) {
				continue
			}
			log.Error().Err(err).Str("line", scanner.Text()).Msg("failed to parse command")
			continue
		}

		switch cmd.Kind {
		case textproto.KindOrder:
			book.AcceptOrder(cmd.Order, writer)
		case textproto.KindCancel:
			if !book.CancelOrder(cmd.CancelID, writer) {
				log.Error().Uint32("id", cmd.CancelID).Msg("failed to delete order")
			}
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
