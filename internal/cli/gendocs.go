package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MiMa6/rag-search-system/internal/gendocs"
)

var gendocsOut string

var gendocsCmd = &cobra.Command{
	Use:   "gendocs",
	Short: "Generate the versioned demo corpus",
	Long: `Write a small corpus of documents that exist in multiple dated versions
(project overviews, technical specifications and meeting notes, as txt,
Markdown and Word files). The corpus feeds the 'run' demo, which asks
version comparison questions over it.`,
	RunE: runGendocsCmd,
}

func init() {
	rootCmd.AddCommand(gendocsCmd)
	gendocsCmd.Flags().StringVarP(&gendocsOut, "output-dir", "o", "data/test_docs", "output directory")
}

func runGendocsCmd(cmd *cobra.Command, args []string) error {
	files, err := gendocs.Write(gendocsOut)
	if err != nil {
		return fmt.Errorf("failed to generate documents: %w", err)
	}

	fmt.Printf("Generated %d files in %s:\n", len(files), gendocsOut)
	for _, f := range files {
		fmt.Printf("  - %s\n", f)
	}
	fmt.Println("\nIndex them with: rag-search run")
	return nil
}
