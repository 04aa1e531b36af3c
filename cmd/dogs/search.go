package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	dogsapp "github.com/Apurer/pawmatch/internal/domains/dogs/application"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

// criteriaFlags mirrors the search filters on the command line.
type criteriaFlags struct {
	breeds []string
	zips   []string
	ageMin int
	ageMax int
	sort   string
	size   int
}

var (
	searchFlags criteriaFlags
	searchPages int
	matchFlags  criteriaFlags
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search dogs and print the results",
	Example: `  dogs search --name Jane --email jane@example.com --breed Beagle --zip 10001
  dogs search --age-min 2 --age-max 6 --sort age:asc --pages 2`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var matchCmd = &cobra.Command{
	Use:   "match [dog-id...]",
	Short: "Ask for a match from the given dogs or the whole first page",
	RunE:  runMatch,
}

func bindCriteriaFlags(cmd *cobra.Command, f *criteriaFlags) {
	cmd.Flags().StringSliceVar(&f.breeds, "breed", nil, "Breed filter, repeatable")
	cmd.Flags().StringSliceVar(&f.zips, "zip", nil, "Five digit zip code filter, repeatable")
	cmd.Flags().IntVar(&f.ageMin, "age-min", -1, "Minimum age in years")
	cmd.Flags().IntVar(&f.ageMax, "age-max", -1, "Maximum age in years")
	cmd.Flags().StringVar(&f.sort, "sort", dogsdomain.DefaultSort, "Sort key, e.g. breed:asc or age:desc")
	cmd.Flags().IntVar(&f.size, "size", dogsdomain.DefaultPageSize, "Results per page")
}

func (f criteriaFlags) criteria() (dogsdomain.Criteria, error) {
	c := dogsdomain.DefaultCriteria()
	for _, breed := range f.breeds {
		if !c.HasBreed(breed) {
			c = c.ToggleBreed(breed)
		}
	}
	var err error
	for _, zip := range f.zips {
		if c, err = c.AddZipCode(zip); err != nil {
			return c, fmt.Errorf("zip %q: %w", zip, err)
		}
	}
	var ageMin, ageMax *int
	if f.ageMin >= 0 {
		ageMin = &f.ageMin
	}
	if f.ageMax >= 0 {
		ageMax = &f.ageMax
	}
	if c, err = c.WithAgeRange(ageMin, ageMax); err != nil {
		return c, err
	}
	if c, err = c.WithSort(f.sort); err != nil {
		return c, fmt.Errorf("sort %q: %w", f.sort, err)
	}
	if c, err = c.WithSize(f.size); err != nil {
		return c, fmt.Errorf("size %d: %w", f.size, err)
	}
	return c, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	criteria, err := searchFlags.criteria()
	if err != nil {
		return err
	}
	s, err := openSession(ctx, workspace.WithCriteria(criteria), workspace.WithManualLoad())
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.login(ctx); err != nil {
		return fmt.Errorf("%s", dogsdomain.UserMessage(err))
	}
	out := cmd.OutOrStdout()
	for page := 1; ; page++ {
		state := s.ws.Browser.State()
		printPage(out, page, state)
		if page >= searchPages || !state.Page.HasNext() {
			return nil
		}
		if err := s.ws.Browser.Query.NextPage(ctx); err != nil {
			return fmt.Errorf("%s", dogsdomain.UserMessage(err))
		}
	}
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	criteria, err := matchFlags.criteria()
	if err != nil {
		return err
	}
	s, err := openSession(ctx, workspace.WithCriteria(criteria), workspace.WithManualLoad())
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.login(ctx); err != nil {
		return fmt.Errorf("%s", dogsdomain.UserMessage(err))
	}
	results := s.ws.Browser.Results
	ids := args
	if len(ids) == 0 {
		for _, dog := range s.ws.Browser.State().Dogs {
			ids = append(ids, dog.ID)
		}
	}
	for _, id := range ids {
		results.ToggleSelection(id)
	}

	outcome, err := s.ws.Browser.Matcher.Match(ctx)
	if err != nil {
		return fmt.Errorf("%s", dogsdomain.UserMessage(err))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, outcome.Message())
	if outcome.Available() {
		fmt.Fprintln(out, dogTable([]dogsdomain.Dog{*outcome.Dog}))
	}
	return nil
}

func printPage(out io.Writer, page int, state dogsapp.BrowserState) {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Page %d", page))
	fmt.Fprintf(out, "%s  (%d dogs)\n", title, state.Page.Total)
	if len(state.Dogs) == 0 {
		fmt.Fprintln(out, "No dogs found. Try adjusting your filters.")
		return
	}
	fmt.Fprintln(out, dogTable(state.Dogs))
}

func dogTable(dogs []dogsdomain.Dog) string {
	rows := make([][]string, 0, len(dogs))
	for _, dog := range dogs {
		rows = append(rows, []string{dog.ID, dog.Name, dog.Breed, strconv.Itoa(dog.AgeYears), dog.ZipCode})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "BREED", "AGE", "ZIP").
		Rows(rows...).
		Render()
}
