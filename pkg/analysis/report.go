package analysis

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// Report is the full derived analysis of one benchmark run.
type Report struct {
	ModelStats  []Stats `json:"model_stats"`
	PromptStats []Stats `json:"prompt_style_stats"`
	Winners     Winners `json:"winners"`
	HasWinners  bool    `json:"has_winners"`

	SubjectBias    []BiasCell `json:"subject_bias"`
	BiasMeaningful bool       `json:"bias_meaningful"`

	Tendency           []BiasCell `json:"grading_tendency"`
	TendencyMeaningful bool       `json:"tendency_meaningful"`
}

// Analyze computes the full report from a flat result collection.
func Analyze(results []bench.AttemptResult) *Report {
	rep := &Report{
		ModelStats:  ByModel(results),
		PromptStats: ByPromptStyle(results),
	}
	rep.Winners, rep.HasWinners = PickWinners(rep.ModelStats)
	rep.SubjectBias, rep.BiasMeaningful = SubjectBias(results)
	rep.Tendency, rep.TendencyMeaningful = GradingTendency(results)
	return rep
}

// Render writes the report as aligned text tables.
func (rep *Report) Render(w io.Writer) error {
	if err := renderStats(w, "Model Statistics", rep.ModelStats); err != nil {
		return err
	}
	if err := renderStats(w, "Prompt Style Statistics", rep.PromptStats); err != nil {
		return err
	}

	if rep.HasWinners {
		if err := renderWinners(w, rep.Winners); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "\nNo successful grading results; winners skipped."); err != nil {
			return err
		}
	}

	if rep.BiasMeaningful {
		if err := renderBias(w, "Subject Bias (mean point deviation)", rep.SubjectBias, "mean_error"); err != nil {
			return err
		}
	}
	if rep.TendencyMeaningful {
		if err := renderBias(w, "Grading Tendency (AI% - Teacher%, + = easier)", rep.Tendency, "tendency_pct"); err != nil {
			return err
		}
	}
	return nil
}

func renderStats(w io.Writer, title string, stats []Stats) error {
	if _, err := fmt.Fprintf(w, "\n--- %s ---\n", title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "key\tattempts\tsuccessful\tsuccess_rate\tmean_error\tstd_dev\tavg_in_tok\tavg_out_tok\tmedian_latency")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%.2f\t%.2f\t%.1f\t%.1f\t%.2fs\n",
			s.Key, s.TotalAttempts, s.SuccessfulGrades, s.SuccessRatePct,
			s.MeanError, s.StdDevError, s.AvgInputTokens, s.AvgOutputTokens, s.MedianLatency)
	}
	return tw.Flush()
}

func renderWinners(w io.Writer, winners Winners) error {
	if _, err := fmt.Fprintln(w, "\n--- Winners ---"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Accuracy\t%s\n", winners.Accuracy)
	fmt.Fprintf(tw, "Consistency\t%s\n", winners.Consistency)
	fmt.Fprintf(tw, "Speed (Latency)\t%s\n", winners.Speed)
	fmt.Fprintf(tw, "Efficiency (Tokens)\t%s\n", winners.Efficiency)
	fmt.Fprintf(tw, "Overall Best\t%s\n", winners.OverallBest)
	return tw.Flush()
}

func renderBias(w io.Writer, title string, cells []BiasCell, valueHeader string) error {
	if _, err := fmt.Fprintf(w, "\n--- %s ---\n", title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "model\tsubject\t%s\tgrades\n", valueHeader)
	for _, c := range cells {
		fmt.Fprintf(tw, "%s\t%s\t%+.2f\t%d\n", c.Model, c.Subject, c.MeanError, c.Grades)
	}
	return tw.Flush()
}
