package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/pkg/mock/execmock"
	"github.com/giantswarm/actionmock/pkg/mock/githubmock"
	mstrings "github.com/giantswarm/actionmock/pkg/strings"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a mocks file and list its rules",
		Long: `Validate parses a mocks file, decodes the rules of every interceptor and
prints them in match order. Problems are reported with the interceptor they
belong to and make the command exit with status 2.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateMocks(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
}

func validateMocks(stdout, stderr io.Writer, path string) error {
	f, err := config.LoadMocksFile(path)
	if f == nil {
		return err
	}

	renderRules(stdout, f)

	if errs, ok := config.AsConfigurationError(err); ok {
		fmt.Fprintln(stderr, errs.Report())
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s %s is valid\n", text.FgGreen.Sprint("✓"), path)
	return nil
}

func renderRules(w io.Writer, f *config.MocksFile) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("INTERCEPTOR"),
		text.FgHiCyan.Sprint("#"),
		text.FgHiCyan.Sprint("MATCH"),
		text.FgHiCyan.Sprint("RESULT"),
		text.FgHiCyan.Sprint("COUNT"),
		text.FgHiCyan.Sprint("OUTPUT"),
	})

	rows := 0
	if rules, err := f.ExecRules(); err == nil {
		for i, rule := range rules {
			t.AppendRow(table.Row{execmock.ID, i + 1, matchText(rule.Command.String()), execResult(rule), countText(rule.Count), execOutput(rule)})
			rows++
		}
	}
	if rules, err := f.GitHubRules(); err == nil {
		for i, rule := range rules {
			t.AppendRow(table.Row{githubmock.ID, i + 1, rule.Method + " " + matchText(rule.URI.String()), githubResult(rule), countText(rule.Count), githubOutput(rule)})
			rows++
		}
	}

	if rows == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No rules found"))
		return
	}
	t.Render()
}

func matchText(pattern string) string {
	if pattern == "" {
		return "*"
	}
	return mstrings.Truncate(pattern, mstrings.DefaultCellMaxLen)
}

func execOutput(rule execmock.Rule) string {
	var parts []string
	if out := rule.Stdout.String(); out != "" {
		parts = append(parts, "out: "+out)
	}
	if errOut := rule.Stderr.String(); errOut != "" {
		parts = append(parts, "err: "+errOut)
	}
	return mstrings.Lines(strings.Join(parts, "\n"), mstrings.DefaultCellMaxLen)
}

func githubOutput(rule githubmock.Rule) string {
	if len(rule.Response) == 0 || string(rule.Response) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(rule.Response, &s); err == nil {
		return mstrings.Lines(s, mstrings.DefaultCellMaxLen)
	}
	return mstrings.Truncate(string(rule.Response), mstrings.DefaultCellMaxLen)
}

func execResult(rule execmock.Rule) string {
	if rule.CallOriginal {
		return "call original"
	}
	return "exit " + strconv.Itoa(rule.ExitCode)
}

func githubResult(rule githubmock.Rule) string {
	status := rule.ResponseCode
	if status == 0 {
		status = 200
	}
	result := strconv.Itoa(status)
	switch {
	case len(rule.Response) > 0 && string(rule.Response) != "null":
		result += " response"
	case rule.ResponseFixture != "":
		result += " fixture " + rule.ResponseFixture
	case rule.File != "":
		result += " file " + rule.File
	}
	return result
}

func countText(count int) string {
	if count <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(count)
}
