package modfuse

import (
	"fmt"
	"io"
	"strings"

	"modfuse/pkg/style"
	"modfuse/pkg/types"
)

// printConflicts renders a conflict listing with severity badges.
func printConflicts(w io.Writer, conflicts []*types.ModConflict) {
	fmt.Fprintln(w, style.TitleStyle.Render(MsgConflictsHeading))
	for _, c := range conflicts {
		names := make([]string, 0, len(c.Sources))
		for _, s := range c.Sources {
			names = append(names, s.Name)
		}
		fmt.Fprintf(w, "%s %s  %s (%d files)\n",
			style.SeverityBadge(c.Severity),
			style.SubtitleStyle.Render(c.ID),
			style.MutedStyle.Render(c.Type.String()+", "+strings.Join(names, " vs ")),
			c.AffectedFiles.Len())
		for _, rel := range c.AffectedFiles.Sorted() {
			fmt.Fprintln(w, style.ListItemStyle.Render(style.PathStyle.Render(rel)))
		}
	}
}

// printResolutions renders per-conflict outcomes, including merge
// fallbacks.
func printResolutions(w io.Writer, results []*types.ResolutionResult) {
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(w, "%s %s: %s\n",
				style.ErrorStyle.Render("unresolved"), r.ConflictID, r.Message)
			continue
		}
		fmt.Fprintf(w, "%s %s: %s wins via %s\n",
			style.SuccessStyle.Render("resolved"), r.ConflictID,
			r.Winner.Name, r.StrategyUsed.String())
		if r.UsedFallback {
			fmt.Fprintf(w, MsgFallbackNotice, r.Message)
		}
	}
}

// printMalformed lists sources excluded from detection.
func printMalformed(w io.Writer, errs []error) {
	fmt.Fprintf(w, MsgMalformedNotice, len(errs))
	for _, err := range errs {
		fmt.Fprintln(w, style.ListItemStyle.Render(style.WarningStyle.Render(err.Error())))
	}
}
