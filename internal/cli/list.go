package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/courtforms/formschema/internal/storage/sqlite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported forms",
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("shared", false, "Show shared field key usage across forms instead")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	dbPath, _ := rootCmd.PersistentFlags().GetString("db")
	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	shared, _ := cmd.Flags().GetBool("shared")
	if shared {
		return listSharedUsage(cmd, store)
	}
	return listForms(cmd, store)
}

func listForms(cmd *cobra.Command, store *sqlite.Store) error {
	forms, err := store.ListForms(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tCATEGORY\tFIELDS\tPAGES\tTITLE")
	for _, form := range forms {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			form.Code, form.Category, form.FieldCount, form.Pages, form.Title)
	}
	return w.Flush()
}

func listSharedUsage(cmd *cobra.Command, store *sqlite.Store) error {
	usage, err := store.SharedFieldUsage(cmd.Context())
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(usage))
	for key := range usage {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SHARED KEY\tFORMS")
	for _, key := range keys {
		fmt.Fprintf(w, "%s\t%d\n", key, usage[key])
	}
	return w.Flush()
}
