package main

import (
	"errors"
	"fmt"
	"io"

	"chat-harvester/internal/di"
	"chat-harvester/internal/usecase/probe"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	var url string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Open the chat page and check which configured selectors match",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url != "" {
				a.cfg.URL = url
			}
			if a.cfg.URL == "" {
				return errors.New("probe needs a page: set url in the profile or pass --url")
			}

			c, err := di.NewContainer(cmd.Context(), a.cfg, di.Options{RunName: "probe", WithBrowser: true})
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Browser.Navigate(cmd.Context(), a.cfg.URL); err != nil {
				return err
			}
			if a.cfg.Run.WaitForLogin {
				if err := c.Console.WaitForUserAction(cmd.Context(), "Log in to the chat page if needed"); err != nil {
					return err
				}
			}

			report, err := c.Probe.Probe(cmd.Context(), a.cfg.Selectors)
			if err != nil {
				return err
			}
			if asJSON {
				out, err := jsoniter.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "chat page to probe")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(w io.Writer, r *probe.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	bold.Fprintf(w, "Probe of %s\n", r.URL)
	for _, g := range r.Groups {
		bold.Fprintf(w, "\n%s\n", g.Name)
		for _, m := range g.Matches {
			mark, c := "  ", dim
			if m.Selector == g.Picked {
				mark, c = "▶ ", green
			}
			c.Fprintf(w, "%s%-50s %3d found, %3d visible", mark, m.Selector, m.Count, m.Visible)
			if m.Preview != "" {
				dim.Fprintf(w, "  %q", m.Preview)
			}
			fmt.Fprintln(w)
		}
	}
	if r.Answer != "" {
		dim.Fprintf(w, "\nLatest answer: %q\n", r.Answer)
	}
	if missing := r.Missing(); len(missing) > 0 {
		red.Fprintf(w, "\nNo match for: %v\n", missing)
	}
}
