package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/resolver"
	"github.com/niio972/phis-ws/internal/search"
	"github.com/niio972/phis-ws/internal/service"
	"github.com/niio972/phis-ws/internal/store"
)

// PageOptions holds the paging flags shared by the search commands.
type PageOptions struct {
	Page     int
	PageSize int
}

func (p *PageOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "rows per page (default from paging.default_page_size)")
}

// request returns the page to fetch. An unset page size takes the
// configured default.
func (p *PageOptions) request(cmd *cobra.Command, a *app) page.Request {
	size := p.PageSize
	if !cmd.Flags().Changed("page-size") {
		size = a.cfg.Paging.DefaultPageSize
	}
	return page.Request{Page: p.Page, PageSize: size}
}

// resultView is the printable form of one page of results.
type resultView[T any] struct {
	PageSize    int    `json:"pageSize"`
	CurrentPage int    `json:"currentPage"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	Outcome     string `json:"outcome"`
	Data        []T    `json:"data"`

	header []string
	row    func(T) []string
}

func newResultView[T any](res page.Result[T], header []string, row func(T) []string) resultView[T] {
	return resultView[T]{
		PageSize:    res.PageSize,
		CurrentPage: res.CurrentPage,
		TotalCount:  res.TotalCount,
		TotalPages:  res.TotalPages,
		Outcome:     string(res.Outcome),
		Data:        res.Data,
		header:      header,
		row:         row,
	}
}

func (v resultView[T]) Header() []string { return v.header }

func (v resultView[T]) Rows() [][]string {
	rows := make([][]string, 0, len(v.Data))
	for _, d := range v.Data {
		rows = append(rows, v.row(d))
	}
	return rows
}

func (v resultView[T]) summary() string {
	if v.Outcome == string(page.NoResults) {
		return "No results"
	}
	return fmt.Sprintf("%d result(s), page %d of %d", v.TotalCount, v.CurrentPage+1, v.TotalPages)
}

func printResult[T any](cmd *cobra.Command, opts *RootOptions, v resultView[T]) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err := out.Success(v); err != nil {
		return err
	}
	if opts.Format == "text" {
		fmt.Fprintln(cmd.OutOrStdout(), v.summary())
	}
	return nil
}

// NewSearchCommand creates the search command and its family subcommands.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search infrastructures, experiments or data",
	}

	cmd.AddCommand(newSearchInfrastructuresCommand(rootOpts))
	cmd.AddCommand(newSearchExperimentsCommand(rootOpts))
	cmd.AddCommand(newSearchDataCommand(rootOpts))

	return cmd
}

// InfrastructureSearchOptions holds flags for search infrastructures.
type InfrastructureSearchOptions struct {
	*RootOptions
	PageOptions
	URI      string
	RDFType  string
	Label    string
	Language string
	Parent   string
}

func newSearchInfrastructuresCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfrastructureSearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "infrastructures",
		Short: "Search infrastructures in the triplestore",
		Example: `  phis-ws search infrastructures --label phenoarch --language fr
  phis-ws search infrastructures --type http://www.opensilex.org/vocabulary/oeso#Greenhouse`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			req := opts.request(cmd, a)
			c, err := search.NewCriteria(
				search.WithURI(opts.URI),
				search.WithType(opts.RDFType),
				search.WithLabel(opts.Label),
				search.WithLanguage(opts.Language),
				search.WithParent(opts.Parent),
				search.WithPage(req.Page, req.PageSize),
			)
			if err != nil {
				return wrapServiceError("invalid criteria", err)
			}

			res, err := a.infraSvc.Search(cmd.Context(), c)
			if err != nil {
				return wrapServiceError("search failed", err)
			}
			return printResult(cmd, opts.RootOptions, newResultView(res,
				[]string{"URI", "TYPE", "TYPE LABEL", "LABEL"},
				func(i search.Infrastructure) []string {
					return []string{i.URI, i.RDFType, i.RDFTypeLabel, i.Label}
				}))
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.URI, "uri", "", "infrastructure URI")
	cmd.Flags().StringVar(&opts.RDFType, "type", "", "rdf:type, subclasses included")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label substring, case-insensitive")
	cmd.Flags().StringVar(&opts.Language, "language", "", "language of the type label (BCP 47)")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "parent infrastructure URI")

	return cmd
}

// ExperimentSearchOptions holds flags for search experiments.
type ExperimentSearchOptions struct {
	*RootOptions
	PageOptions
	Criteria store.ExperimentCriteria
}

func newSearchExperimentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExperimentSearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Search experiments in the relational store",
		Example: `  phis-ws search experiments --campaign 2017
  phis-ws search experiments --place montpellier --start-date 2017-01-01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			c := opts.Criteria
			c.Page = opts.request(cmd, a)
			res, err := a.expSvc.Search(cmd.Context(), c)
			if err != nil {
				return wrapServiceError("search failed", err)
			}
			return printResult(cmd, opts.RootOptions, newResultView(res,
				[]string{"URI", "START", "END", "CAMPAIGN", "PLACE", "ALIAS"},
				func(e store.Experiment) []string {
					return []string{e.URI, e.StartDate, e.EndDate, e.Campaign, e.Place, e.Alias}
				}))
		},
	}

	opts.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.Criteria.URI, "uri", "", "experiment URI")
	f.StringVar(&opts.Criteria.ProjectURI, "project", "", "project URI")
	f.StringVar(&opts.Criteria.StartDate, "start-date", "", "experiments starting on or after (YYYY-MM-DD)")
	f.StringVar(&opts.Criteria.EndDate, "end-date", "", "experiments ending on or before (YYYY-MM-DD)")
	f.StringVar(&opts.Criteria.Field, "field", "", "field substring")
	f.StringVar(&opts.Criteria.Campaign, "campaign", "", "campaign year")
	f.StringVar(&opts.Criteria.Place, "place", "", "place substring")
	f.StringVar(&opts.Criteria.Alias, "alias", "", "alias substring")
	f.StringVar(&opts.Criteria.Keywords, "keywords", "", "keywords substring")

	return cmd
}

// DataSearchOptions holds flags for search data.
type DataSearchOptions struct {
	*RootOptions
	PageOptions
	Query resolver.DataQuery
}

func newSearchDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DataSearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "data <experiment-uri>",
		Short: "Search measurements of an experiment",
		Example: `  phis-ws search data http://www.phenome-fppn.fr/m3p/DIA2017-1 \
    --variable http://www.phenome-fppn.fr/m3p/id/variables/v001 --object-label plot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			q := opts.Query
			q.Experiment = args[0]
			q.Page = opts.request(cmd, a)
			res, err := a.dataSvc.Search(cmd.Context(), q)
			if err != nil {
				return wrapServiceError("search failed", err)
			}
			return printResult(cmd, opts.RootOptions, newResultView(res,
				[]string{"DATE", "OBJECT", "PROVENANCE", "VALUE"},
				func(d service.DataRecord) []string {
					object := ""
					if d.Object != nil {
						object = strings.Join(d.Object.Labels, ",")
						if object == "" {
							object = d.Object.URI
						}
					}
					return []string{d.Date.Format(time.RFC3339), object, d.Provenance.Label, fmt.Sprint(d.Value)}
				}))
		},
	}

	opts.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.Query.Variable, "variable", "", "variable URI (required)")
	f.StringVar(&opts.Query.StartDate, "start-date", "", "measured on or after (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&opts.Query.EndDate, "end-date", "", "measured on or before (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&opts.Query.ObjectURI, "object", "", "scientific object URI")
	f.StringVar(&opts.Query.ObjectLabel, "object-label", "", "scientific object label")
	f.StringVar(&opts.Query.ProvenanceURI, "provenance", "", "provenance URI")
	f.StringVar(&opts.Query.ProvenanceLabel, "provenance-label", "", "provenance label substring")
	f.BoolVar(&opts.Query.DateSortAsc, "asc", false, "oldest first")
	_ = cmd.MarkFlagRequired("variable")

	return cmd
}
