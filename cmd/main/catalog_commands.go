package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carcatalog/content/internal/domain"
	"carcatalog/content/internal/store"
)

var (
	errNotFound      = errors.New("not found")
	errRedisRequired = errors.New("redis.enabled must be true")
)

func newBrandsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List every brand with its model count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			brands := app.Store.GetAllBrands(cmd.Context())
			if brands == nil {
				return storeError(app.Store, "load catalog")
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, brands)
			}

			rows := make([][]string, 0, len(brands))
			for _, b := range brands {
				rows = append(rows, []string{b.ID, b.Slug, b.Name, b.Country, strconv.Itoa(len(b.Models))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Slug", "Name", "Country", "Models"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newModelsCommand(cc *commandContext) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "models <brand-slug>",
		Short: "List the models of a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			brandSlug := args[0]

			var models []*domain.Model
			if live {
				models, err = app.Aggregator.ListModelsByBrand(cmd.Context(), brandSlug)
				if err != nil {
					return err
				}
			} else {
				brand := app.Store.GetBrandBySlug(cmd.Context(), brandSlug)
				if brand == nil {
					return lookupError(app.Store, "brand %q", brandSlug)
				}
				models = brand.Models
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, models)
			}

			rows := make([][]string, 0, len(models))
			for _, m := range models {
				rows = append(rows, []string{m.ID, m.Slug, m.Name, orDash(m.Year), orDash(derefString(m.Price))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Slug", "Name", "Year", "Price"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Query the content API instead of the cached catalog")
	return cmd
}

func newModelCommand(cc *commandContext) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "model <brand-slug> <model-slug>",
		Short: "Show a model with its gallery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			brandSlug, modelSlug := args[0], args[1]

			var (
				model  *domain.Model
				images []domain.Image
			)
			if live {
				model, err = app.Aggregator.GetModelDetails(cmd.Context(), brandSlug, modelSlug)
				if err != nil {
					return err
				}
				images = model.Images
			} else {
				model = app.Store.GetModelBySlug(cmd.Context(), brandSlug, modelSlug)
				if model == nil {
					return lookupError(app.Store, "model %s/%s", brandSlug, modelSlug)
				}
				images = app.Store.GetModelImages(brandSlug, modelSlug)
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, struct {
					*domain.Model
					Gallery []domain.Image `json:"gallery"`
				}{model, images})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderFields(modelFields(model)))
			if len(images) > 0 {
				rows := make([][]string, 0, len(images))
				for i, img := range images {
					rows = append(rows, []string{strconv.Itoa(i + 1), img.URL, img.Alt})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "URL", "Alt"}, rows, []columnAlignment{alignRight}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "Query the content API instead of the cached catalog")
	return cmd
}

func newTagsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <brand-slug>",
		Short: "List the entries tagged with a brand slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			list, err := app.Aggregator.GetBrandDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if cc.jsonOutput() {
				return writeJSON(cmd, list)
			}

			rows := make([][]string, 0, len(list.Stories))
			for _, e := range list.Stories {
				rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.FullSlug, e.Name, strings.Join(e.TagList, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Full slug", "Name", "Tags"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func newCategoriesCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the display categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			categories := app.Store.GetAllCategories()
			if cc.jsonOutput() {
				return writeJSON(cmd, categories)
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{c.ID, c.Name, c.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Description"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func modelFields(m *domain.Model) [][2]string {
	fields := [][2]string{
		{"ID", m.ID},
		{"Name", m.Name},
		{"Path", m.Path},
		{"Year", orDash(m.Year)},
		{"Price", orDash(derefString(m.Price))},
		{"Image", orDash(m.ImageURL)},
		{"PDF", orDash(m.PDF)},
		{"Description", orDash(m.Description)},
	}
	if len(m.Features) > 0 {
		features := make([]string, 0, len(m.Features))
		for _, f := range m.Features {
			features = append(features, fmt.Sprint(f))
		}
		fields = append(fields, [2]string{"Features", strings.Join(features, ", ")})
	}
	if m.PublishedAt != "" {
		fields = append(fields, [2]string{"Published", m.PublishedAt})
	}
	return fields
}

// storeError turns the store's error slot into a command error
func storeError(s *store.Store, action string) error {
	if err := s.LastError(); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return fmt.Errorf("%s failed", action)
}

// lookupError reports a lookup miss, preferring a recorded load failure
func lookupError(s *store.Store, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if err := s.LastError(); err != nil {
		return fmt.Errorf("look up %s: %w", what, err)
	}
	return fmt.Errorf("%s: %w", what, errNotFound)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
