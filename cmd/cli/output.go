package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nomis52/reactivities/activity"
	"github.com/nomis52/reactivities/buildinfo"
)

// printer writes command results in the selected format.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(opts *RootOptions, w io.Writer) *printer {
	return &printer{format: opts.Format, w: w}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// activities prints a table of activities, one per row.
func (p *printer) activities(activities []activity.Activity) error {
	if p.format == "json" {
		if activities == nil {
			activities = []activity.Activity{}
		}
		return p.json(activities)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORY\tCITY\tVENUE")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Title, a.Category, a.City, a.Venue)
	}
	return tw.Flush()
}

// activity prints every field of a single activity.
func (p *printer) activity(a activity.Activity) error {
	if p.format == "json" {
		return p.json(a)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", a.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", a.Title)
	fmt.Fprintf(tw, "Date:\t%s\n", a.Date)
	fmt.Fprintf(tw, "Category:\t%s\n", a.Category)
	fmt.Fprintf(tw, "Description:\t%s\n", a.Description)
	fmt.Fprintf(tw, "City:\t%s\n", a.City)
	fmt.Fprintf(tw, "Venue:\t%s\n", a.Venue)
	return tw.Flush()
}

func (p *printer) deleted(id string) error {
	if p.format == "json" {
		return p.json(map[string]string{"deleted": id})
	}
	_, err := fmt.Fprintf(p.w, "Deleted %s\n", id)
	return err
}

func (p *printer) version(props buildinfo.Properties) error {
	if p.format == "json" {
		return p.json(props)
	}
	fmt.Fprintf(p.w, "reactivities %s\n", props.Version)
	fmt.Fprintf(p.w, "Built: %s\n", props.BuildTime)
	_, err := fmt.Fprintf(p.w, "Commit: %s\n", props.GitCommit)
	return err
}
