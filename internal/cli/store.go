package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	storeDBPath      string
	storeSampleLimit int
	storeDeleteAll   bool
	storeDeleteForce bool
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and manage stored collections",
	Long: `Inspect the persistent vector store: list collections, sample their
records and delete collections that are no longer needed.

Examples:
  rag-search store list
  rag-search store inspect rag_collection_default
  rag-search store inspect rag_collection_default --limit 10
  rag-search store delete rag_collection_fast
  rag-search store delete --all --force`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored collections",
	RunE:  runStoreList,
}

var storeInspectCmd = &cobra.Command{
	Use:   "inspect <collection>",
	Short: "Show sample records from a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreInspect,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [collection]",
	Short: "Delete a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreDelete,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeInspectCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	storeCmd.PersistentFlags().StringVar(&storeDBPath, "path", "", "store database file (default from config)")
	storeInspectCmd.Flags().IntVar(&storeSampleLimit, "limit", 5, "number of records to show")
	storeDeleteCmd.Flags().BoolVar(&storeDeleteAll, "all", false, "delete every collection")
	storeDeleteCmd.Flags().BoolVar(&storeDeleteForce, "force", false, "skip the confirmation prompt")
}

func runStoreList(cmd *cobra.Command, args []string) error {
	st, err := openStore(GetConfig(), storeDBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	infos, err := st.ListCollections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No collections stored.")
		return nil
	}

	fmt.Printf("Available collections (%d):\n", len(infos))
	for i, info := range infos {
		fmt.Printf("%d. %s (%d documents)\n", i+1, info.Name, info.Count)
		fmt.Printf("   embedding model: %s, dimension: %d, created: %s\n",
			info.EmbeddingModel, info.Dimension, info.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runStoreInspect(cmd *cobra.Command, args []string) error {
	collection := args[0]

	st, err := openStore(GetConfig(), storeDBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	count, err := st.Count(collection)
	if err != nil {
		return err
	}
	fmt.Printf("Collection: %s (%d documents)\n\n", collection, count)

	records, err := st.Sample(collection, storeSampleLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Collection is empty.")
		return nil
	}

	for i, rec := range records {
		fmt.Printf("--- Record %d (id: %s) ---\n", i+1, rec.ID)
		meta, err := json.MarshalIndent(rec.Metadata, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("Metadata: %s\n", meta)
		text := rec.Text
		if len(text) > 250 {
			text = text[:250] + "..."
		}
		fmt.Printf("Content: %s\n", text)
		fmt.Printf("Embedding: dimension %d, first values %v\n\n", rec.Dimension, rec.VectorHead)
	}
	return nil
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	if !storeDeleteAll && len(args) == 0 {
		return fmt.Errorf("name a collection to delete, or pass --all")
	}

	st, err := openStore(GetConfig(), storeDBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if storeDeleteAll {
		infos, err := st.ListCollections()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No collections stored.")
			return nil
		}
		if !storeDeleteForce && !confirm(fmt.Sprintf("Delete ALL %d collections?", len(infos))) {
			fmt.Println("Aborted.")
			return nil
		}
		for _, info := range infos {
			if err := st.DeleteCollection(info.Name); err != nil {
				return err
			}
			fmt.Printf("Deleted %s.\n", info.Name)
		}
		return nil
	}

	collection := args[0]
	count, err := st.Count(collection)
	if err != nil {
		return err
	}
	if !storeDeleteForce && !confirm(fmt.Sprintf("Delete collection %s with %d documents?", collection, count)) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := st.DeleteCollection(collection); err != nil {
		return err
	}
	fmt.Printf("Deleted %s.\n", collection)
	return nil
}

// confirm asks a yes/no question on stdin. Only an explicit y counts
// as a yes.
func confirm(prompt string) bool {
	fmt.Printf("%s Are you sure? (y/N): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
