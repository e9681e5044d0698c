package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/message"

	"tgcheck/internal/check"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

func outcomeColor(kind check.OutcomeKind) *color.Color {
	switch kind {
	case check.Authorized:
		return okColor
	case check.Unauthorized, check.RateLimited:
		return warnColor
	default:
		return errColor
	}
}

// printReport writes one line per session followed by per-outcome totals.
func printReport(w io.Writer, p *message.Printer, report *check.RunReport) {
	fmt.Fprintln(w, p.Sprintf(msgRunHeader, report.ID, len(report.Results), report.Duration().Truncate(time.Millisecond)))

	for _, res := range report.Results {
		printResult(w, p, res)
	}

	counts := report.Counts()
	kinds := make([]check.OutcomeKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	fmt.Fprintln(w)
	for _, k := range kinds {
		outcomeColor(k).Fprintf(w, "  %-24s %d\n", outcomeLabel(p, k), counts[k])
	}

	if report.Success() {
		okColor.Fprintln(w, p.Sprintf(msgAllAuthorized))
	} else {
		warnColor.Fprintln(w, p.Sprintf(msgSomeFailed))
	}
}

func printResult(w io.Writer, p *message.Printer, res check.Result) {
	detail := res.Proxy
	switch {
	case res.Outcome.Kind == check.RateLimited:
		detail = p.Sprintf(msgRetryAfter, int64(res.Outcome.RetryAfter.Seconds()))
	case res.Outcome.Reason != "":
		detail = res.Outcome.Reason
	}
	if res.Quarantined {
		detail += " (" + p.Sprintf(msgQuarantined) + ")"
	}

	c := outcomeColor(res.Outcome.Kind)
	fmt.Fprintf(w, "  %-16s %s  %s\n", res.Phone, c.Sprintf("%-24s", outcomeLabel(p, res.Outcome.Kind)), detail)
}

// printHistory writes one line per run, newest first.
func printHistory(w io.Writer, p *message.Printer, runs []*check.RunReport) {
	if len(runs) == 0 {
		fmt.Fprintln(w, p.Sprintf(msgNoRuns))
		return
	}

	for _, r := range runs {
		counts := r.Counts()
		status := okColor.Sprint("ok  ")
		if !r.Success() {
			status = warnColor.Sprint("fail")
		}
		fmt.Fprintf(w, "%s  %s  %s  %3d  %s %d  %s %d\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			len(r.Results),
			outcomeLabel(p, check.Authorized), counts[check.Authorized],
			outcomeLabel(p, check.Unauthorized), counts[check.Unauthorized]+counts[check.Unregistered],
		)
	}
}
