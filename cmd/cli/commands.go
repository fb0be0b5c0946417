package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nomis52/reactivities/activity"
	"github.com/nomis52/reactivities/buildinfo"
)

const defaultDeleteTarget = "cli"

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List activities sorted by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(opts)
			if err != nil {
				return err
			}
			sess.store.LoadAll(cmd.Context())
			if err := sess.lastError(); err != nil {
				return err
			}
			return newPrinter(opts, cmd.OutOrStdout()).activities(sess.store.ByDate())
		},
	}
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(opts)
			if err != nil {
				return err
			}
			sess.store.LoadAll(cmd.Context())
			if err := sess.lastError(); err != nil {
				return err
			}

			sess.store.Select(args[0])
			a, ok := sess.store.Selected()
			if !ok {
				return notFound(args[0])
			}
			return newPrinter(opts, cmd.OutOrStdout()).activity(a)
		},
	}
}

func newCreateCommand(opts *RootOptions) *cobra.Command {
	fields := &activityFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activity",
		Long: `Create an activity from flags. --title, --category and --date are required.
A random id is generated unless --id is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fields.activity()
			if a.ID == "" {
				a.ID = activity.NewID()
			}
			if err := validate(a); err != nil {
				return err
			}

			sess, err := newSession(opts)
			if err != nil {
				return err
			}
			sess.store.OpenCreateForm()
			sess.store.Create(cmd.Context(), a)
			if err := sess.lastError(); err != nil {
				return err
			}

			created, _ := sess.store.Get(a.ID)
			return newPrinter(opts, cmd.OutOrStdout()).activity(created)
		},
	}
	fields.register(cmd, true)
	return cmd
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	fields := &activityFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing activity",
		Long:  "Update an activity. Only the fields given as flags change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(opts)
			if err != nil {
				return err
			}
			sess.store.LoadAll(cmd.Context())
			if err := sess.lastError(); err != nil {
				return err
			}

			sess.store.OpenEditForm(args[0])
			a, ok := sess.store.Selected()
			if !ok {
				sess.store.CancelFormOpen()
				return notFound(args[0])
			}
			fields.apply(cmd, &a)
			if err := validate(a); err != nil {
				sess.store.CancelFormOpen()
				return err
			}

			sess.store.Update(cmd.Context(), a)
			if err := sess.lastError(); err != nil {
				return err
			}

			updated, _ := sess.store.Selected()
			return newPrinter(opts, cmd.OutOrStdout()).activity(updated)
		},
	}
	fields.register(cmd, false)
	return cmd
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(opts)
			if err != nil {
				return err
			}
			sess.store.Delete(cmd.Context(), target, args[0])
			if err := sess.lastError(); err != nil {
				return err
			}
			return newPrinter(opts, cmd.OutOrStdout()).deleted(args[0])
		},
	}
	cmd.Flags().StringVar(&target, "target", defaultDeleteTarget, "name recorded as the element that requested the delete")
	return cmd
}

func newConfigCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Long:  "Validate the configuration and print it as YAML with secrets redacted. --format is ignored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newPrinter(opts, cmd.OutOrStdout()).version(buildinfo.Get())
		},
	}
}

// activityFlags binds the editable activity fields to command flags.
type activityFlags struct {
	id          string
	title       string
	description string
	category    string
	date        string
	city        string
	venue       string
}

func (f *activityFlags) register(cmd *cobra.Command, withID bool) {
	if withID {
		cmd.Flags().StringVar(&f.id, "id", "", "activity id (generated when empty)")
	}
	cmd.Flags().StringVar(&f.title, "title", "", "title")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().StringVar(&f.date, "date", "", "date, e.g. 2024-05-01T19:30:00")
	cmd.Flags().StringVar(&f.city, "city", "", "city")
	cmd.Flags().StringVar(&f.venue, "venue", "", "venue")
}

func (f *activityFlags) activity() activity.Activity {
	return activity.Activity{
		ID:          f.id,
		Title:       f.title,
		Description: f.description,
		Category:    f.category,
		Date:        f.date,
		City:        f.city,
		Venue:       f.venue,
	}
}

// apply overwrites the fields of a whose flags were set.
func (f *activityFlags) apply(cmd *cobra.Command, a *activity.Activity) {
	set := map[string]func(){
		"title":       func() { a.Title = f.title },
		"description": func() { a.Description = f.description },
		"category":    func() { a.Category = f.category },
		"date":        func() { a.Date = f.date },
		"city":        func() { a.City = f.city },
		"venue":       func() { a.Venue = f.venue },
	}
	for name, fn := range set {
		if cmd.Flags().Changed(name) {
			fn()
		}
	}
}

func validate(a activity.Activity) error {
	err := activity.Validate(a)
	var verr *activity.ValidationError
	if errors.As(err, &verr) {
		return &exitError{code: exitUsage, err: verr}
	}
	return err
}

func notFound(id string) error {
	return &exitError{code: exitFailure, err: fmt.Errorf("activity %q not found", id)}
}
