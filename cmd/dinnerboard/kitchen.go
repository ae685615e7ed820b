package main

import (
	"context"
	"fmt"
	"io"

	"github.com/korjavin/dinnerboard/pkg/kitchen"
	"github.com/korjavin/dinnerboard/pkg/messages"
	"github.com/korjavin/dinnerboard/pkg/watch"
	"github.com/spf13/cobra"
)

// kitchenView is one kitchen screen: it shows the queue and announces new
// work
type kitchenView interface {
	kitchen.Display
	kitchen.Alerter
}

// terminalDisplay prints the kitchen queue to a terminal and rings the
// bell when new dishes arrive. The alert line stays under the queue until
// the next refresh.
type terminalDisplay struct {
	out   io.Writer
	clear bool
	alert string
}

func (d *terminalDisplay) Show(res kitchen.Result) {
	if d.clear {
		fmt.Fprint(d.out, "\033[H\033[2J")
	}
	fmt.Fprintln(d.out, messages.Kitchen(res))
	if d.alert != "" {
		fmt.Fprintln(d.out, "\n"+d.alert)
		d.alert = ""
	}
}

func (d *terminalDisplay) Alert(dishes []string) {
	fmt.Fprint(d.out, "\a")
	d.alert = messages.Alert(dishes)
}

// startKitchen runs one monitor per view on the store's change feed. It
// returns once the feed is registered, so every later write refreshes the
// views; the aggregators are returned to be reset with the board.
func startKitchen(ctx context.Context, a *app, views ...kitchenView) ([]*kitchen.Aggregator, error) {
	hub := watch.NewHub()
	feedErr := make(chan error, 1)
	go func() {
		feedErr <- hub.Feed(ctx, a.store, kitchen.WatchedPrefixes...)
	}()

	select {
	case <-hub.Ready():
	case err := <-feedErr:
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("change feed stopped before it was ready: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	go func() {
		if err := <-feedErr; err != nil {
			a.log.Error("Change feed stopped: %v", err)
		}
	}()

	aggs := make([]*kitchen.Aggregator, 0, len(views))
	for _, view := range views {
		agg := kitchen.NewAggregator(a.readings, view)
		monitor := kitchen.NewMonitor(agg, a.roster, a.boards, hub, view)
		go func() {
			if err := monitor.Run(ctx); err != nil {
				a.log.Error("Kitchen monitor stopped: %v", err)
			}
		}()
		aggs = append(aggs, agg)
	}
	return aggs, nil
}

// newKitchenCmd prints the queue once. Badger locks DATA_DIR and only sees
// writes of its own process, so a live screen runs inside the bot
// (bot --kitchen-terminal).
func newKitchenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kitchen",
		Short: "Print the cook-now queue once",
		Long: "Print the cook-now queue once and exit. It needs DATA_DIR to itself, so run it while the bot is stopped; " +
			"for a live screen start the bot with --kitchen-terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			display := &terminalDisplay{out: cmd.OutOrStdout()}
			agg := kitchen.NewAggregator(a.readings, nil)
			display.Show(agg.Aggregate(a.roster.Roster(), a.roster.ExtraDishes(), a.boards.Load()))
			return nil
		},
	}
}
