package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nextbest/internal/catalog"
	"github.com/hyperengineering/nextbest/internal/config"
	"github.com/hyperengineering/nextbest/internal/prefs"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
	"github.com/hyperengineering/nextbest/internal/validation"
)

var (
	flagCategories  []string
	flagMaxDistance float64
	flagPrices      []string
	flagLimit       int
	flagCatalogPath string
	flagSeed        uint64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "List the best matches for the given preferences",
	Args:  cobra.NoArgs,
	RunE:  runRank,
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick one match at random, weighted by score",
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

func init() {
	for _, cmd := range []*cobra.Command{rankCmd, pickCmd} {
		cmd.Flags().StringSliceVar(&flagCategories, "category", nil,
			"Categories to include (default all)")
		cmd.Flags().Float64Var(&flagMaxDistance, "max-distance", prefs.DefaultMaxDistanceKm,
			"Maximum distance in km")
		cmd.Flags().StringSliceVar(&flagPrices, "price", nil,
			"Preferred price tiers (cheap, moderate, expensive or $, $$, $$$)")
		cmd.Flags().IntVar(&flagLimit, "limit", rank.DefaultLimit,
			"Maximum number of candidates")
		cmd.Flags().StringVar(&flagCatalogPath, "catalog", "",
			"Catalog YAML file (overrides config; default built-in)")
	}
	pickCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Seed for a reproducible pick (0 = random)")
}

// prefsFromFlags builds validated preferences from the shared rank/pick flags.
func prefsFromFlags() (types.Preferences, error) {
	p := prefs.Defaults()
	p.MaxDistanceKm = flagMaxDistance

	if len(flagCategories) > 0 {
		p.Categories = make([]types.Category, 0, len(flagCategories))
		for _, c := range flagCategories {
			p.Categories = append(p.Categories, types.Category(c))
		}
	}
	for _, raw := range flagPrices {
		tier, err := types.ParsePriceTier(raw)
		if err != nil {
			return types.Preferences{}, err
		}
		p.PricePrefs = append(p.PricePrefs, tier)
	}

	if errs := validation.ValidatePreferences(p); len(errs) > 0 {
		return types.Preferences{}, fmt.Errorf("invalid preferences: %s", errs[0].Error())
	}
	return p, nil
}

func loadCatalogForCLI() (*catalog.Catalog, error) {
	path := flagCatalogPath
	if path == "" {
		cfg, err := config.LoadLocal()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		path = cfg.Catalog.Path
	}
	return openCatalog(path)
}

func runRank(cmd *cobra.Command, args []string) error {
	p, err := prefsFromFlags()
	if err != nil {
		return err
	}
	cat, err := loadCatalogForCLI()
	if err != nil {
		return err
	}

	ranked := rank.Rank(cat.Items(), p, flagLimit)
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, types.RankResponse{Preferences: p, Items: ranked})
	}
	if len(ranked) == 0 {
		fmt.Fprintln(out, "No matches.")
		return nil
	}
	return printRanked(out, ranked)
}

func runPick(cmd *cobra.Command, args []string) error {
	p, err := prefsFromFlags()
	if err != nil {
		return err
	}
	cat, err := loadCatalogForCLI()
	if err != nil {
		return err
	}

	candidates := rank.Rank(cat.Items(), p, flagLimit)
	item, err := rank.WeightedPick(randomSource(flagSeed), candidates)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, types.PickResponse{Item: item, Candidates: len(candidates)})
	}
	fmt.Fprintf(out, "%s (%s, %s, %s) score %.2f\n",
		item.Name, item.Category.DisplayName(), item.Price.Symbol(),
		types.FormatDistance(item.DistanceKm), item.Score)
	return nil
}

func printRanked(w io.Writer, ranked []types.ScoredItem) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "#\tNAME\tCATEGORY\tPRICE\tDISTANCE\tRATING\tSCORE")
	for i, it := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.1f\t%.2f\n",
			i+1, it.Name, it.Category.DisplayName(), it.Price.Symbol(),
			types.FormatDistance(it.DistanceKm), it.Rating, it.Score)
	}
	return tw.Flush()
}
