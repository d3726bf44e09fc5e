package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/inbox"
)

var (
	watchInbox    string
	watchOutbox   string
	watchState    string
	watchPoll     bool
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "Directory to watch for request files (required)")
	watchCmd.Flags().StringVar(&watchOutbox, "outbox", "", "Directory for result files (required)")
	watchCmd.Flags().StringVar(&watchState, "state", "", "Directory for processing/done/failed (default <outbox>/.state)")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "Poll instead of using filesystem notifications")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Polling interval with --poll")
	_ = watchCmd.MarkFlagRequired("inbox")
	_ = watchCmd.MarkFlagRequired("outbox")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Assess request files dropped into an inbox directory",
	Long: "Processes any request files already in the inbox, then watches for new ones.\n" +
		"Each request produces <name>.result.json in the outbox with the sealed record\n" +
		"and rendered response. Producers should write atomically (tmp file, then rename).",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := inbox.New(inbox.Config{
		Dirs:         inbox.Dirs{Inbox: watchInbox, Outbox: watchOutbox, State: watchState},
		PollMode:     watchPoll,
		PollInterval: watchInterval,
		Logger:       slog.Default(),
	}, rt.engine)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down watcher...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "pbhp watching %s -> %s\n", watchInbox, watchOutbox)
	return svc.Run(ctx)
}
