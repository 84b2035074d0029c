package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/copywriter"
	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/render"
	"github.com/cesde-ntp/tablero/session"
)

var (
	copyBrief  = copywriter.DefaultBrief()
	copyTone   string
	copyLength string
	copyJSON   bool
)

// copyCmd writes a product description and ad copies for a brief.
var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Generate a product description and ad copies",
	Long: `Generate marketing copy with the configured language model (gemini by
default, anthropic via copywriter.provider). Unset flags keep the sample
brief.

Tones (by number or first word):
` + toneHelp(),
	Args: cobra.NoArgs,
	RunE: runCopy,
}

func init() {
	f := copyCmd.Flags()
	f.StringVar(&copyBrief.Product, "product", copyBrief.Product, "generic product name")
	f.StringVar(&copyBrief.Brand, "brand", copyBrief.Brand, "brand and model")
	f.StringVar(&copyBrief.Features, "features", copyBrief.Features, "key features, comma separated")
	f.StringVar(&copyBrief.Audience, "audience", copyBrief.Audience, "target audience")
	f.IntVar(&copyBrief.Copies, "copies", copyBrief.Copies, "number of ad copies (1-5)")
	f.StringVar(&copyTone, "tone", "1", "tone number or name")
	f.StringVar(&copyLength, "length", "short", "copy length: short, medium or long")
	f.BoolVar(&copyJSON, "json", false, "print the result as JSON")
}

func toneHelp() string {
	var b strings.Builder
	for i, t := range copywriter.Tones {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, t)
	}
	return b.String()
}

// parseTone accepts a 1-based index or a case-insensitive tone prefix.
func parseTone(s string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(copywriter.Tones) {
			return "", fmt.Errorf("tone must be between 1 and %d, got %d", len(copywriter.Tones), n)
		}
		return copywriter.Tones[n-1], nil
	}
	for _, t := range copywriter.Tones {
		if strings.HasPrefix(strings.ToLower(t), strings.ToLower(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

func runCopy(cmd *cobra.Command, _ []string) error {
	brief := copyBrief
	tone, err := parseTone(copyTone)
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}
	brief.Tone = tone
	if brief.Length, err = copywriter.ParseLength(copyLength); err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}
	if err := brief.Validate(); err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}

	gen, err := newGenerator()
	if err != nil {
		return classify(err)
	}
	var res *copywriter.Result
	out := cmd.OutOrStdout()
	if copyJSON {
		if res, err = gen.Generate(cmd.Context(), brief); err != nil {
			return classify(err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		rec := &recorder{writer: gen}
		d := dashboard.New(app.logger, dashboard.NewMarketing(rec))
		r, err := d.Act(cmd.Context(), "marketing", session.NewState(), dashboard.Action{
			Type:   dashboard.ActionGenerate,
			Fields: briefFields(brief),
		})
		if err != nil {
			return exitError(ExitInvalidArgs, "tablero: %v", err)
		}
		if err := render.Page(out, r); err != nil {
			return err
		}
		if rec.err != nil {
			return classify(rec.err)
		}
		res = rec.res
	}

	if res == nil {
		return nil
	}
	if res.DescriptionErr != nil && res.CopiesErr != nil {
		return classify(res.DescriptionErr)
	}
	return nil
}

// recorder keeps the last generation outcome so the exit code can follow
// it after the page has rendered.
type recorder struct {
	writer dashboard.Copywriter
	res    *copywriter.Result
	err    error
}

func (r *recorder) Generate(ctx context.Context, b copywriter.Brief) (*copywriter.Result, error) {
	r.res, r.err = r.writer.Generate(ctx, b)
	return r.res, r.err
}

func briefFields(b copywriter.Brief) map[string]string {
	return map[string]string{
		dashboard.FieldProduct:  b.Product,
		dashboard.FieldBrand:    b.Brand,
		dashboard.FieldFeatures: b.Features,
		dashboard.FieldAudience: b.Audience,
		dashboard.FieldTone:     b.Tone,
		dashboard.FieldCopies:   strconv.Itoa(b.Copies),
		dashboard.FieldLength:   string(b.Length),
	}
}
