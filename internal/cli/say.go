package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lowember/ember/internal/client"
	"github.com/lowember/ember/internal/engine"
	"github.com/lowember/ember/internal/session"
)

var (
	sayDepth     int
	sayBias      float64
	sayPress     bool
	saySilence   bool
	sayServer    string
	sayShowTrace bool
)

var sayCmd = &cobra.Command{
	Use:   "say [text]",
	Short: "Get one reply",
	Long: "Run one message through the engine and print the reply. Without --server the " +
		"engine runs in-process with a fresh session; with --server the message goes to a running ember.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSay,
}

func init() {
	sayCmd.Flags().IntVarP(&sayDepth, "depth", "d", engine.DefaultDepth, "Engagement depth (0-3)")
	sayCmd.Flags().Float64VarP(&sayBias, "bias", "b", engine.DefaultTruthBias, "Truth bias, -1 comfort to 1 truth")
	sayCmd.Flags().BoolVarP(&sayPress, "press", "p", false, "Ask for a cut")
	sayCmd.Flags().BoolVar(&saySilence, "silence", false, "Be held without analysis")
	sayCmd.Flags().StringVar(&sayServer, "server", "", "URL of a running ember server")
	sayCmd.Flags().BoolVar(&sayShowTrace, "trace", false, "Print the diagnostic trace")
}

func runSay(cmd *cobra.Command, args []string) error {
	req := engine.Request{
		Text:      strings.Join(args, " "),
		Depth:     engine.ClampDepth(sayDepth),
		TruthBias: engine.ClampBias(sayBias),
		Press:     sayPress,
		Silence:   saySilence,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var resp engine.Response
	fuseMax := cfg.Fuse.Max
	if sayServer != "" {
		c := client.New(sayServer)
		r, err := c.Reply(ctx, req)
		if err != nil {
			return fmt.Errorf("reply: %w", err)
		}
		resp = *r
		fuseMax = remoteFuseMax(ctx, c)
	} else {
		sessions := session.NewStore(session.Options{
			FuseMax:        cfg.Fuse.Max,
			RechargeWindow: cfg.Fuse.RechargeWindow,
		})
		resp = engine.New(sessions, session.NewMemoryJournal(), logger).Reply(ctx, "cli", req)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, replyStyle.Render(resp.Reply))
	if resp.Tone != "" {
		fmt.Fprintln(out, toneStyle.Render(resp.Tone))
	}
	fmt.Fprintln(out, fuseGauge(resp.Fuse, fuseMax))
	if sayShowTrace && resp.Trace != "" {
		fmt.Fprintln(out, labelStyle.Render("trace"))
		fmt.Fprintln(out, traceStyle.Render(resp.Trace))
	}
	return nil
}

// remoteFuseMax asks the server for its fuse ceiling. It returns 0 when the
// server cannot say, which makes fuseGauge print the bare count.
func remoteFuseMax(ctx context.Context, c *client.Client) int {
	info, err := c.Session(ctx)
	if err != nil {
		logger.Debug("session lookup failed", zap.Error(err))
		return 0
	}
	return info.FuseMax
}
