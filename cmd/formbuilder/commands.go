package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/watch"
	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/prompt"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/server"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

func (a *app) addCmd() *cobra.Command {
	var id, parent string
	var interactive bool
	cmd := &cobra.Command{
		Use:   "add [type] [label]",
		Short: "Add an input, or a group with type \"group\"",
		Long: `Adds an input of the given type to the end of the form, or to the group
named by --parent. Types: text, textarea, number, email, password, checkbox,
radio, date. Use "group" to add an empty group. Without a type the input
palette is shown.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			label := ""
			if len(args) == 2 {
				label = args[1]
			}

			var kind model.InputType
			switch {
			case len(args) == 0:
				chosen, err := a.prompts().ChooseInputType(ctx)
				if err != nil {
					return err
				}
				kind = chosen
			case strings.EqualFold(args[0], string(model.InputTypeGroup)):
				if label == "" {
					label = dragdrop.NewGroupLabel
				}
				g, err := a.session.AddGroup(ctx, label)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), g.ID())
				return nil
			default:
				parsed, ok := model.ParseInputType(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", model.ErrInvalidFieldType, args[0])
				}
				kind = parsed
			}

			f, err := a.session.AddField(ctx, model.FieldConfig{ID: id, Type: kind, Label: label}, parent)
			if err != nil {
				return err
			}
			if interactive {
				edited, err := a.prompts().EditField(ctx, f)
				if err != nil {
					return err
				}
				if err := a.session.UpdateElement(ctx, edited); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the new field (generated when empty)")
	cmd.Flags().StringVar(&parent, "parent", "", "group to add the field to")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "edit the new field interactively")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the form outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := a.session.Definition()
			out := cmd.OutOrStdout()
			if def.Len() == 0 {
				fmt.Fprintln(out, "(empty form)")
				return nil
			}
			for i, el := range def.Children() {
				printElement(out, i, el, "")
			}
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print the definition, or one element, as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def := a.session.Definition()
			var v any = def
			if len(args) == 1 {
				el, ok := def.FindChildByID(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", editor.ErrNotFound, args[0])
				}
				v = el
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var label, value, validators string
	var options []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a field's label, value, validators or options",
		Long: `Updates the named attributes of a field. Validators are a comma separated
list such as "required,minLength=3"; pass an empty string to clear them.
Options are repeated --option label=value flags; a leading ! disables one.
Values are parsed as JSON when possible, so --value 3 stores a number and
--value null clears it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch editor.FieldPatch
			flags := cmd.Flags()
			if flags.Changed("label") {
				patch.Label = &label
			}
			if flags.Changed("value") {
				v := parseValue(value)
				patch.Value = &v
			}
			if flags.Changed("validators") {
				defs, err := parseValidators(validators)
				if err != nil {
					return err
				}
				patch.Validators = &defs
			}
			if flags.Changed("option") {
				opts, err := prompt.ParseOptions(strings.Join(options, "\n"))
				if err != nil {
					return err
				}
				patch.Options = &opts
			}
			_, err := a.session.UpdateField(cmd.Context(), args[0], patch)
			return err
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().StringVar(&value, "value", "", "initial value")
	cmd.Flags().StringVar(&validators, "validators", "", "validator list, e.g. required,maxLength=20")
	cmd.Flags().StringArrayVar(&options, "option", nil, "option as label=value (repeatable)")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a field or group interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			el, ok := a.session.Definition().FindChildByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", editor.ErrNotFound, args[0])
			}
			if g, ok := el.AsGroup(); ok {
				label, err := a.prompts().EditGroup(ctx, g)
				if err != nil {
					return err
				}
				return a.session.RenameGroup(ctx, g.ID(), label)
			}
			f, _ := el.AsField()
			edited, err := a.prompts().EditField(ctx, f)
			if err != nil {
				return err
			}
			return a.session.UpdateElement(ctx, edited)
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <label>",
		Short: "Change the label of a field or group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			el, ok := a.session.Definition().FindChildByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", editor.ErrNotFound, args[0])
			}
			if el.Kind() == model.KindGroup {
				return a.session.RenameGroup(ctx, args[0], args[1])
			}
			_, err := a.session.UpdateField(ctx, args[0], editor.FieldPatch{Label: &args[1]})
			return err
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a field or group",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.Delete(cmd.Context(), args[0])
		},
	}
}

func (a *app) moveCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the element at index from to index to",
		Long: `Moves an element within the top level, or within the group named by
--parent. When moving forward the target index is read before removal, so
"move 0 2" on [a, b, c] yields [b, a, c].`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseIndices(args[0], args[1])
			if err != nil {
				return err
			}
			return a.session.Move(cmd.Context(), from, to, parent)
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "group whose children are reordered")
	return cmd
}

func (a *app) dropCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "drop <id> <target-index>",
		Short: "Drop an element onto another one, grouping them",
		Long: `Simulates dragging id onto the element at target-index of the top level
(or of --parent). Dropping onto a field at the top level wraps both fields in
a new group; dropping onto a group moves the element into it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			if err := a.session.StartDrag(args[0]); err != nil {
				return err
			}
			return a.session.DropOnElement(cmd.Context(), target, parent)
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "group containing the target")
	return cmd
}

func (a *app) reorderCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "reorder <id> <target-index>",
		Short: "Drop an element between others in its container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			if err := a.session.StartDrag(args[0]); err != nil {
				return err
			}
			return a.session.DropAsReorder(cmd.Context(), target, parent)
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "group the element belongs to")
	return cmd
}

func (a *app) ungroupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ungroup <group-id>",
		Short: "Dissolve a group, keeping its fields in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.Ungroup(cmd.Context(), args[0])
		},
	}
}

func (a *app) ungroupFieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ungroup-field <field-id>",
		Short: "Move a field out of its group to just after it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.FieldUngroup(cmd.Context(), args[0])
		},
	}
}

func (a *app) generateCmd() *cobra.Command {
	var format, subset, title, output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the form with one of the renderers",
		Long: `Renders the stored form. Formats: builder (reactive-form builder code),
html (template), json (definition), openapi (request body schema document)
and preview (HTML page). --subset limits the output, e.g.
"groups=address;fields=email".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := render.NewDefaultRegistry()
			if err != nil {
				return err
			}
			opts := render.RenderOptions{Subset: render.ParseSubset(subset), Title: title}
			out, _, err := reg.Render(cmd.Context(), format, a.session.Definition(), opts)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(reg.List(), ", "))
			}
			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatBuilder, "output format")
	cmd.Flags().StringVar(&subset, "subset", "", "render only matching groups, types or fields")
	cmd.Flags().StringVar(&title, "title", "", "title for the preview and openapi formats")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing API, the preview page and live updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			srv, err := server.New(a.session, server.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print regenerated output whenever the stored form changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileStore, ok := a.store.(*store.File)
			if !ok {
				return fmt.Errorf("watch needs the %q store driver, not %q", store.DriverFile, a.cfg.Store.Driver)
			}
			w, err := watch.New(fileStore, a.session.Key(), watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return w.Run(cmd.Context(), func(ev watch.Event) {
				switch {
				case ev.Err != nil:
					a.logger.Warn("reload failed", zap.Error(ev.Err))
					return
				case ev.Removed:
					fmt.Fprintln(out, "(form removed)")
					return
				}
				if format == render.FormatHTML {
					fmt.Fprintln(out, ev.Output.HTMLTemplate)
					return
				}
				fmt.Fprintln(out, ev.Output.BuilderCode)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatBuilder, "builder or html")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var operation string
	cmd := &cobra.Command{
		Use:   "import <openapi-file-or-url>",
		Short: "Replace the form with an OpenAPI request body schema",
		Long: `Builds the form from the JSON request body of an OpenAPI 3 document
(yaml or json), such as one written by "generate --format openapi". Nested
objects become groups. Without --operation the first operation with a JSON
body is used. The document may be a file path or an http(s) URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := schema.ParseSource(args[0])
			if err != nil {
				return err
			}
			doc, err := schema.NewLoader().Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			a.logger.Debug("loaded openapi document", zap.String("location", doc.Location()))
			def, err := doc.Definition(cmd.Context(), operation)
			if err != nil {
				return err
			}
			if err := a.session.Replace(cmd.Context(), def); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d fields\n", def.FieldCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "operation id to import")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := a.promptDriver().Confirm(ctx, prompt.ConfirmConfig{
					Message: fmt.Sprintf("Delete form %q?", a.session.Key()),
				})
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("reset cancelled")
				}
			}
			return a.session.Reset(ctx)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
