package backoffice

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	fernanden "github.com/fernanden/fernanden.go"
	"github.com/fernanden/fernanden.go/pkg/models"
)

// Main runs the back-office command line with args and writes command
// output to stdout. It can be called from tests without building the
// binary; cancelling ctx stops a running server.
func Main(ctx context.Context, args []string, stdout io.Writer) error {
	root := NewCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(os.Stderr)
	return root.ExecuteContext(ctx)
}

// NewCommand builds the root command and its sub-commands.
func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office for the fernanden content site",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	addFlags(root.PersistentFlags())

	root.AddCommand(
		serveCommand(),
		migrateCommand(),
		listCommand(),
		getCommand(),
		toggleCommand(),
		searchCommand(),
	)
	return root
}

// withApp loads the configuration, opens the app, runs fn and closes it.
func withApp(cmd *cobra.Command, fn func(*App) error) error {
	cfg, err := LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	app, err := New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the back-office HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				return app.Run(cmd.Context())
			})
		},
	}
	cmd.Flags().String("port", "8080", "listen port")
	cmd.Flags().Bool("read-only", false, "start in read-only mode")
	return cmd
}

func migrateCommand() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(MigrateUp), string(MigrateDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := MigrateUp
			if len(args) == 1 {
				direction = MigrateDirection(args[0])
			}
			return withApp(cmd, func(app *App) error {
				return app.Migrate(direction, steps)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply, 0 for all")
	return cmd
}

func (a *App) lookup(name string) (*fernanden.Entity, error) {
	e, ok := a.Entity(name)
	if !ok {
		return nil, fmt.Errorf("%w %q, known: %s", errEntityNotFound, name, strings.Join(a.catalog.Names(), ", "))
	}
	return e, nil
}

// filterBy applies the first filter in column order; GetBy takes a single
// column.
func filterBy(ctx context.Context, e *fernanden.Entity, filters map[string]string) ([]models.Row, error) {
	columns := make([]string, 0, len(filters))
	for c := range filters {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return e.GetBy(ctx, columns[0], filters[columns[0]])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listCommand() *cobra.Command {
	var (
		published, featured bool
		category            string
		filters             map[string]string
	)
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List rows of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				e, err := app.lookup(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				var rows []models.Row
				switch {
				case featured:
					rows, err = e.GetFeatured(ctx)
				case published:
					rows, err = e.GetPublished(ctx)
				case category != "":
					rows, err = e.GetByCategory(ctx, category)
				case len(filters) > 0:
					rows, err = filterBy(ctx, e, filters)
				default:
					rows, err = e.GetAll(ctx)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().BoolVar(&published, "published", false, "only published rows")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured rows")
	cmd.Flags().StringVar(&category, "category", "", "only rows in this category")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "column=value filter on a declared filter column")
	return cmd
}

func getCommand() *cobra.Command {
	var bySlug bool
	cmd := &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show one row by id or slug",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				e, err := app.lookup(args[0])
				if err != nil {
					return err
				}
				var row models.Row
				if bySlug {
					row, err = e.GetBySlug(cmd.Context(), args[1])
				} else {
					row, err = e.GetByID(cmd.Context(), args[1])
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), row)
			})
		},
	}
	cmd.Flags().BoolVar(&bySlug, "slug", false, "look the row up by slug")
	return cmd
}

func toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <entity> <id>",
		Short: "Flip the featured flag of a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				e, err := app.lookup(args[0])
				if err != nil {
					return err
				}
				row, err := e.ToggleFeatured(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), row)
			})
		},
	}
}

func searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <entity> <text>...",
		Short: "Search an entity's text columns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(app *App) error {
				e, err := app.lookup(args[0])
				if err != nil {
					return err
				}
				rows, err := e.Search(cmd.Context(), strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
}
