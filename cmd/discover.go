package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/source"
)

var discoverFile string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Fetch configured feeds and score the results into leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var fetchers []source.Fetcher
		if len(cfg.Sources.NewsFeeds) > 0 {
			fetchers = append(fetchers, source.NewRSS("news", cfg.Sources.NewsFeeds, cfg.Sources))
		}
		if len(cfg.Sources.TenderFeeds) > 0 {
			fetchers = append(fetchers, source.NewRSS("tenders", cfg.Sources.TenderFeeds, cfg.Sources))
		}
		if len(cfg.Sources.GemFeeds) > 0 {
			fetchers = append(fetchers, source.NewRSS("gem", cfg.Sources.GemFeeds, cfg.Sources))
		}
		if discoverFile != "" {
			items, err := loadItemsFile(discoverFile)
			if err != nil {
				return err
			}
			fetchers = append(fetchers, &source.Static{SourceName: "file", Items: items})
		}
		if len(fetchers) == 0 {
			return eris.New("no sources configured; set sources.* in config or pass --file")
		}

		result, err := env.Pipeline.Discover(ctx, fetchers)
		if err != nil {
			return err
		}

		formatLeadsList(os.Stdout, derefLeads(result.Leads))
		for _, f := range result.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s: %s\n", f.Item.Company, f.Err)
		}
		return nil
	},
}

var (
	processCompany string
	processText    string
	processSource  string
	processURL     string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Score a single raw item into a lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Pipeline.ProcessItem(ctx, model.RawItem{
			Company:   processCompany,
			RawText:   processText,
			Source:    processSource,
			SourceURL: processURL,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lead)
	},
}

// loadItemsFile reads raw items from a JSON file: an array of
// {company, raw_text, source, source_url} objects.
func loadItemsFile(path string) ([]model.RawItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read items file %s", path)
	}
	var items []model.RawItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrapf(err, "parse items file %s", path)
	}
	return items, nil
}

func derefLeads(in []*model.Lead) []model.Lead {
	out := make([]model.Lead, 0, len(in))
	for _, l := range in {
		out = append(out, *l)
	}
	return out
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFile, "file", "", "JSON file of raw items to process alongside feeds")
	processCmd.Flags().StringVar(&processCompany, "company", "", "company name (resolved from text when omitted)")
	processCmd.Flags().StringVar(&processText, "text", "", "raw signal text")
	processCmd.Flags().StringVar(&processSource, "source", "manual", "source label")
	processCmd.Flags().StringVar(&processURL, "url", "", "source URL")
	_ = processCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(processCmd)
}
