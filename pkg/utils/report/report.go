package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/m-mizutani/actsync/pkg/domain/model"
)

// Markers delimiting machine-readable output on stdout
const (
	ResultsStartMarker = "__RESULTS_JSON_START__"
	ResultsEndMarker   = "__RESULTS_JSON_END__"
	CountStartMarker   = "__COUNT_START__"
	CountEndMarker     = "__COUNT_END__"
)

// WriteResultsJSON writes results as indented JSON between the result markers
func WriteResultsJSON(w io.Writer, results []*model.UploadResult) error {
	if results == nil {
		results = []*model.UploadResult{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal upload results")
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n", ResultsStartMarker, data, ResultsEndMarker); err != nil {
		return goerr.Wrap(err, "failed to write upload results")
	}
	return nil
}

// WriteCount writes n between the count markers
func WriteCount(w io.Writer, n int) error {
	if _, err := fmt.Fprintf(w, "%s\n%d\n%s\n", CountStartMarker, n, CountEndMarker); err != nil {
		return goerr.Wrap(err, "failed to write count")
	}
	return nil
}

// WriteSummary renders a per-action table followed by the run statistics
func WriteSummary(w io.Writer, rep *model.SyncReport, useColors bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Action", "Outcome", "Detail"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var red, green, yellow, faint func(...any) string
	if useColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
		faint = color.New(color.Faint).SprintFunc()
	} else {
		red = fmt.Sprint
		green = fmt.Sprint
		yellow = fmt.Sprint
		faint = fmt.Sprint
	}

	var data [][]string
	for i, r := range rep.Results {
		outcome := r.Outcome()
		var label string
		switch outcome {
		case model.OutcomeFailed:
			label = red(string(outcome))
		case model.OutcomeCreated, model.OutcomeUpdated:
			label = green(string(outcome))
		case model.OutcomeSkipped:
			label = yellow(string(outcome))
		default:
			label = faint(string(outcome))
		}

		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Action.String(),
			label,
			detail(r),
		})
	}

	if err := table.Bulk(data); err != nil {
		return goerr.Wrap(err, "failed to fill summary table")
	}
	if err := table.Render(); err != nil {
		return goerr.Wrap(err, "failed to render summary table")
	}

	s := rep.Stats
	if _, err := fmt.Fprintf(w, "Existing actions: %d, Uploaded: %d, Skipped (not updated): %d\n",
		s.Existing, s.Uploaded, s.SkippedNotUpdated); err != nil {
		return goerr.Wrap(err, "failed to write summary")
	}
	if _, err := fmt.Fprintf(w, "Created: %d, Updated: %d, Failed: %d, Not processed (upload cap): %d\n",
		s.Created, s.Updated, s.Failed, s.Dropped); err != nil {
		return goerr.Wrap(err, "failed to write summary")
	}
	return nil
}

func detail(r *model.UploadResult) string {
	if r.Error == "" {
		return ""
	}
	d := r.Error
	if r.StatusCode != 0 {
		d = fmt.Sprintf("[%d] %s", r.StatusCode, d)
	}
	if r.CorrelationID != "" {
		d += " (correlation: " + r.CorrelationID + ")"
	}
	return d
}
