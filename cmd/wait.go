package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/client"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the page has no pending operations",
	Long: `Polls a running pageutil server until its pending count reaches zero.
Exits 0 once idle and 1 if the timeout passes first.`,
	RunE: runWait,
}

func init() {
	waitCmd.Flags().String("url", "", "server URL (default http://localhost:<server.port>)")
	waitCmd.Flags().Duration("timeout", 30*time.Second, "give up after this long")
	waitCmd.Flags().Duration("interval", client.DefaultPollInterval, "poll interval")
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")

	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url = serverURL(cfg)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	c := client.New(url)
	start := time.Now()
	if err := c.WaitIdle(ctx, interval); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			st, statusErr := c.Status(context.Background())
			if statusErr == nil {
				return errors.Errorf("timed out after %s with %d pending: %v", timeout, st.Count, st.Pending)
			}
			return errors.Errorf("timed out after %s", timeout)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "idle after %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
