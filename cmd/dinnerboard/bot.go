package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/korjavin/dinnerboard/pkg/kitchen"
	"github.com/korjavin/dinnerboard/pkg/logger"
	"github.com/korjavin/dinnerboard/pkg/scheduler"
	"github.com/korjavin/dinnerboard/pkg/state"
	"github.com/korjavin/dinnerboard/pkg/telegram"
	"github.com/spf13/cobra"
)

// maxRosterBytes bounds a settings document sent to the bot
const maxRosterBytes = 1 << 20

const helpText = `🏮 夕食ボード

/board - 本日の進行状況と部屋一覧
/kitchen - 調理待ちの料理
/staff - 配膳スタッフ
/import - 設定ファイル(JSON)の読み込み
/reset - 盤面のリセット
/help - このメッセージ

料理のボタンを押すと状態が進みます。`

func newBotCmd() *cobra.Command {
	var (
		gcInterval      time.Duration
		kitchenTerminal bool
	)

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram board, the kitchen monitor and the daily scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.RequireBot(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a.store.StartGCRoutine(ctx, gcInterval)

			bot, err := telegram.New(a.cfg.BotToken)
			if err != nil {
				return err
			}

			h := &botHandlers{
				app:      a,
				bot:      bot,
				states:   state.New(),
				onDemand: kitchen.NewAggregator(a.readings, nil),
			}

			// Kitchen screens follow the board through the store's change feed
			var views []kitchenView
			if a.cfg.KitchenChatID != 0 {
				views = append(views, telegram.NewKitchenDisplay(bot, a.cfg.KitchenChatID))
			}
			if kitchenTerminal {
				views = append(views, &terminalDisplay{out: cmd.OutOrStdout(), clear: true})
			}
			if len(views) > 0 {
				h.monitorAggs, err = startKitchen(ctx, a, views...)
				if err != nil {
					return err
				}
			}

			notifier := &operatorNotifier{bot: bot, chatIDs: a.cfg.OperatorChatIDs, log: h.log}
			if len(notifier.chatIDs) == 0 && a.cfg.KitchenChatID != 0 {
				notifier.chatIDs = []int64{a.cfg.KitchenChatID}
			}
			sched, err := scheduler.New(a.boards, notifier, a.cfg.ReminderTime)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			h.log.Info("Bot is running. Press Ctrl+C to exit.")
			return bot.Start(ctx, a.cfg.OperatorAllowed, h.commands(), h.callbacks(), h.handleUpdate)
		},
	}

	cmd.Flags().DurationVar(&gcInterval, "gc-interval", 10*time.Minute, "interval between storage garbage collections")
	cmd.Flags().BoolVar(&kitchenTerminal, "kitchen-terminal", false, "also show the live kitchen queue on this terminal")
	return cmd
}

// operatorNotifier sends scheduler messages to the operator chats, or to
// the kitchen chat when no operator is configured
type operatorNotifier struct {
	bot     *telegram.Bot
	chatIDs []int64
	log     *logger.Logger
}

func (n *operatorNotifier) Notify(text string) {
	for _, chatID := range n.chatIDs {
		if _, err := n.bot.SendMessage(chatID, text); err != nil {
			n.log.Error("Failed to notify chat %d: %v", chatID, err)
		}
	}
}

// botHandlers holds the Telegram front end of the board
type botHandlers struct {
	*app
	bot         *telegram.Bot
	states      *state.Manager
	onDemand    *kitchen.Aggregator
	monitorAggs []*kitchen.Aggregator
}
