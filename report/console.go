package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
)

var (
	passColor   = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
	detailColor = color.New(color.FgHiBlack)
)

// ConsoleReporter writes one line per spec, with failure reasons and a curl command to
// reproduce each failed request.
type ConsoleReporter struct {
	Out io.Writer

	// Quiet suppresses the lines for passing specs.
	Quiet bool
}

// NewConsoleReporter returns a ConsoleReporter writing to out, which is usually color.Output.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{Out: out}
}

func (c *ConsoleReporter) RunStarted(info RunInfo) {
	fmt.Fprintf(c.Out, "%s\n", detailColor.Sprintf("suite %s (run %s)", info.Suite, info.ID))
}

func (c *ConsoleReporter) SpecFinished(e SpecEvent) {
	elapsed := detailColor.Sprintf("(%s)", e.Duration.Round(time.Millisecond))
	if e.Outcome == Passed {
		if !c.Quiet {
			fmt.Fprintf(c.Out, "  %s %s %s\n", passColor.Sprint("PASS"), e.Name, elapsed)
		}
		return
	}
	fmt.Fprintf(c.Out, "  %s %s %s\n", failColor.Sprint("FAIL"), e.Name, elapsed)
	for _, reason := range e.Reasons {
		for _, line := range strings.Split(reason, "\n") {
			fmt.Fprintf(c.Out, "      %s\n", line)
		}
	}
	if e.Request != nil {
		fmt.Fprintf(c.Out, "      %s %s\n", detailColor.Sprint("reproduce:"), CurlCommand(*e.Request))
	}
}

func (c *ConsoleReporter) RunEnded(s Summary) error {
	line := fmt.Sprintf("suite %s: %s", s.Suite, s)
	if s.OK() {
		_, err := passColor.Fprintln(c.Out, line)
		return err
	}
	_, err := failColor.Fprintln(c.Out, line)
	return err
}

// CurlCommand renders a request as a shell-quoted curl command line.
func CurlCommand(r RequestSummary) string {
	args := []string{"curl", "-i", "-X", r.Method}
	for _, h := range r.Headers {
		args = append(args, "-H", h.Name+": "+h.Value)
	}
	if r.Body != "" {
		args = append(args, "--data-raw", r.Body)
	}
	args = append(args, r.URL)
	return shellescape.QuoteCommand(args)
}
