package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-studio/internal/observability"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/sections"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Print the review sections and their progress for a profile",
	RunE:  runSections,
}

var (
	sectionsFile        string
	sectionsProfileFile string
	sectionsJSON        bool
)

func init() {
	sectionsCmd.Flags().StringVar(&sectionsFile, "sections", "", "YAML file overriding the built-in sections")
	sectionsCmd.Flags().StringVarP(&sectionsProfileFile, "profile", "p", "", "Profile JSON file to evaluate")
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, _ []string) error {
	reg, err := loadSections(sectionsFile)
	if err != nil {
		return err
	}
	p, err := readProfile(sectionsProfileFile)
	if err != nil {
		return err
	}
	d := profile.Default().With(p)
	if verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintProfile(d)
		printer.PrintSectionProgress(reg.Progress(d))
	}
	return printSections(cmd.OutOrStdout(), reg, d, sectionsJSON)
}

type sectionRow struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Selector string          `json:"selector"`
	Fields   []profile.Field `json:"fields"`
	HasData  bool            `json:"has_data"`
}

func printSections(w io.Writer, reg *sections.Registry, d profile.Data, asJSON bool) error {
	progress := reg.Progress(d)
	rows := make([]sectionRow, 0, reg.Len())
	for i, s := range reg.All() {
		rows = append(rows, sectionRow{
			ID:       s.ID,
			Label:    s.Label,
			Selector: s.Selector,
			Fields:   s.Fields,
			HasData:  progress[i].HasData,
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tLABEL\tSELECTOR\tDATA")
	for i, r := range rows {
		mark := "-"
		if r.HasData {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.ID, r.Label, r.Selector, mark)
	}
	return tw.Flush()
}

