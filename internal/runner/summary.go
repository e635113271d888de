package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WriteSummary renders the per-case result table to w.
func WriteSummary(w io.Writer, s *Summary) {
	if len(s.Results) == 0 {
		return
	}

	re := lipgloss.NewRenderer(w)
	header := re.NewStyle().Bold(true).Padding(0, 1)
	cell := re.NewStyle().Padding(0, 1)
	pass := cell.Foreground(lipgloss.Color("42"))
	fail := cell.Foreground(lipgloss.Color("196"))
	warn := cell.Foreground(lipgloss.Color("214"))

	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		rows = append(rows, summaryRow(r))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("CASE", "STATUS", "FRAMES", "RETRIES", "RESYNCS", "MBPS", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col != 1 {
				return cell
			}
			switch s.Results[row].Status() {
			case StatusFail:
				return fail
			case StatusPeerLost, StatusNoFrames:
				return warn
			default:
				return pass
			}
		})

	fmt.Fprintf(w, "\n%s\n", t.Render())
	fmt.Fprintf(w, "%d case run(s), %d failed\n", len(s.Results), s.Failures())
}

func summaryRow(r Result) []string {
	frames, retries, resyncs, mbps := "-", "-", "-", "-"
	detail := ""
	if rep := r.Report; rep != nil {
		frames = fmt.Sprintf("%d/%d", rep.Final.Frames, rep.FramesToSend)
		retries = fmt.Sprint(rep.Retries)
		resyncs = fmt.Sprint(rep.Resyncs)
		mbps = fmt.Sprintf("%.2f", rep.BitrateBPS()/1_000_000)
		detail = strings.Join(rep.Notes, "; ")
	}
	if r.Err != nil {
		detail = r.Err.Error()
	}
	return []string{r.label(), r.Status(), frames, retries, resyncs, mbps, detail}
}
