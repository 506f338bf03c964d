package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lowember/ember/internal/client"
	"github.com/lowember/ember/internal/engine"
	"github.com/lowember/ember/internal/session"
	"github.com/lowember/ember/internal/transcript"
)

var replayServer string

var replayCmd = &cobra.Command{
	Use:   "replay [script.jsonl]",
	Short: "Replay a JSONL script through one session",
	Long: "Each line of the script is a /reply payload (or a bare JSON string for plain text). " +
		"All lines share one session, so the fuse drains and recharges as it would for a single visitor. " +
		"With --server the lines go to a running ember over one cookie session.",
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayServer, "server", "", "URL of a running ember server")
}

// replyFunc sends one request within the replay session.
type replyFunc func(ctx context.Context, req engine.Request) (engine.Response, error)

func runReplay(cmd *cobra.Command, args []string) error {
	lines, err := transcript.ParseFile(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var (
		reply   replyFunc
		fuseMax = cfg.Fuse.Max
		eng     *engine.Engine
	)
	if replayServer != "" {
		c := client.New(replayServer)
		if !c.Healthy(ctx) {
			return fmt.Errorf("server %s is not reachable", replayServer)
		}
		fuseMax = remoteFuseMax(ctx, c)
		reply = func(ctx context.Context, req engine.Request) (engine.Response, error) {
			r, err := c.Reply(ctx, req)
			if err != nil {
				return engine.Response{}, err
			}
			return *r, nil
		}
	} else {
		sessions := session.NewStore(session.Options{
			FuseMax:        cfg.Fuse.Max,
			RechargeWindow: cfg.Fuse.RechargeWindow,
		})
		eng = engine.New(sessions, session.NewMemoryJournal(), logger)
		reply = func(ctx context.Context, req engine.Request) (engine.Response, error) {
			return eng.Reply(ctx, "replay", req), nil
		}
	}

	out := cmd.OutOrStdout()
	recorded := 0
	for _, l := range lines {
		resp, err := reply(ctx, l.Request)
		if err != nil {
			return fmt.Errorf("line %d: %w", l.Number, err)
		}
		if strings.TrimSpace(l.Request.Text) != "" {
			recorded++
		}
		fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("line %d", l.Number)), fuseGauge(resp.Fuse, fuseMax))
		fmt.Fprintln(out, replyStyle.Render(resp.Reply))
	}

	if eng != nil {
		history, err := eng.History(ctx, "replay", 0)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		recorded = len(history)
	}
	fmt.Fprintf(out, "%d lines, %d recorded\n", len(lines), recorded)
	return nil
}
