package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lowember/ember/internal/engine"
)

var signalsCmd = &cobra.Command{
	Use:   "signals [text]",
	Short: "Show the depth signals for a message",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")
		s := engine.Extract(text)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("self_ref     "), s.SelfRef)
		fmt.Fprintf(out, "%s %t\n", labelStyle.Render("long_sentence"), s.LongSentence)
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("affect_hits  "), s.AffectHits)
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("repeats      "), s.Repeats)
		fmt.Fprintf(out, "%s %d/4\n", labelStyle.Render("depth_score  "), engine.Score(s))
		if tone := engine.Tone(text); tone != "" {
			fmt.Fprintln(out, toneStyle.Render(tone))
		}
	},
}
