package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avifenesh/agnix-harness/internal/manifest"
)

var (
	reposManifest string
	reposFilter   string
	reposCategory string
	reposStatus   string
	reposLimit    int
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List manifest entries matching the filters",
	Long: `Print the manifest entries that a validate run with the same filters
would process, without cloning or validating anything.`,
	RunE: runRepos,
}

func init() {
	f := reposCmd.Flags()
	f.StringVar(&reposManifest, "repos-file", "repos.yaml", "Path to the repository manifest")
	f.StringVar(&reposFilter, "filter", "", "Filter repositories by URL substring")
	f.StringVar(&reposCategory, "category", "", "Filter repositories by category")
	f.StringVar(&reposStatus, "status", manifest.StatusPending, "Filter repositories by status")
	f.IntVar(&reposLimit, "limit", 0, "Limit the number of repositories listed")
}

func runRepos(cmd *cobra.Command, args []string) error {
	entries, err := manifest.Load(reposManifest, manifest.Filter{
		Status:       reposStatus,
		Category:     reposCategory,
		URLSubstring: reposFilter,
		Limit:        reposLimit,
	})
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No repos matched filters.")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  [%s]", e.URL, e.EffectiveStatus())
		if len(e.Categories) > 0 {
			line += "  " + strings.Join(e.Categories, ",")
		}
		if e.Branch != "" {
			line += "  @" + e.Branch
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d repos\n", len(entries))
	return nil
}
