// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/inovacc/reposync/internal/application"
	"github.com/inovacc/reposync/internal/config"
	"github.com/inovacc/reposync/internal/core"
	"github.com/inovacc/reposync/internal/osprofile"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Render formats the run summary. It never fails: anything it cannot read
// (like the clone root listing) is simply omitted so a reporting problem
// cannot mask the run's exit status.
func Render(rc *core.RunContext, cfg config.Config, profile osprofile.Profile) string {
	var b strings.Builder

	success, failed, skipped := rc.Counts()

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %s — run summary", application.AppName, application.Version)))
	b.WriteString("\n\n")

	writeField(&b, "Started", rc.Started.Format(time.RFC3339))
	writeField(&b, "Platform", platformLabel(profile))
	writeField(&b, "Clone root", cfg.CloneDir)
	writeField(&b, "Repositories", fmt.Sprintf("%d", len(rc.Outcomes)))

	if rc.Interrupted {
		writeField(&b, "Interrupted", "yes")
	}

	b.WriteString("\n")
	b.WriteString(successStyle.Render(fmt.Sprintf("  Success: %d", success)))
	b.WriteString("\n")
	b.WriteString(failureStyle.Render(fmt.Sprintf("  Failure: %d", failed)))
	b.WriteString("\n")
	b.WriteString(skippedStyle.Render(fmt.Sprintf("  Skipped: %d", skipped)))
	b.WriteString("\n")

	writeOutcomeDetails(&b, rc, core.Failure, "Failed repositories:")
	writeOutcomeDetails(&b, rc, core.Skipped, "Skipped repositories:")

	if cfg.Verbosity >= 4 {
		writeCloneRootListing(&b, cfg.CloneDir)
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", label+":")))
	b.WriteString(" " + value + "\n")
}

func platformLabel(profile osprofile.Profile) string {
	label := profile.String()
	if profile == osprofile.Linux && osprofile.IsWSL(osprofile.KernelVersion()) {
		label += " (wsl)"
	}

	return label
}

func writeOutcomeDetails(b *strings.Builder, rc *core.RunContext, kind core.Kind, title string) {
	var lines []string

	for _, o := range rc.Outcomes {
		if o.Kind != kind {
			continue
		}

		detail := o.Detail
		if len(detail) > 100 {
			detail = detail[:100] + "..."
		}

		if detail != "" {
			lines = append(lines, fmt.Sprintf("  * %s: %s", o.Entry.URL, detail))
		} else {
			lines = append(lines, fmt.Sprintf("  * %s", o.Entry.URL))
		}
	}

	if len(lines) == 0 {
		return
	}

	b.WriteString("\n" + title + "\n")

	for _, line := range lines {
		b.WriteString(line + "\n")
	}
}

// writeCloneRootListing appends the clone root's directory names, the
// high-verbosity equivalent of an ls after the run.
func writeCloneRootListing(b *strings.Builder, cloneRoot string) {
	entries, err := os.ReadDir(cloneRoot)
	if err != nil {
		return
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		return
	}

	sort.Strings(names)

	b.WriteString("\n" + detailStyle.Render(fmt.Sprintf("Clone root contents (%d):", len(names))) + "\n")

	for _, name := range names {
		b.WriteString(detailStyle.Render("  "+name) + "\n")
	}
}
