package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/progress"
)

var importCmd = &cobra.Command{
	Use:   "import [lang-dir]",
	Short: "Import a language pack into the database",
	Long: `Reads <lang-dir>/<lang>/*.yaml (default: lang_dir from the config) and
upserts every string into the database, where serve prefers it over the
files on disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("lang", "", "language to import (overrides lang)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.Lang = lang
	}
	dir := cfg.LangDir
	if len(args) == 1 {
		dir = args[0]
	}

	pack, err := catalog.LoadDir(dir, cfg.Lang)
	if err != nil {
		return err
	}
	if len(pack) == 0 {
		return errors.Errorf("no language pack for %q in %s", cfg.Lang, dir)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := catalog.NewStore(database)
	n, err := importPack(cmd.Context(), store, cfg.Lang, pack, progress.NewReporter("Importing strings"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d strings in %d components for %s into %s\n", n, len(pack), cfg.Lang, database.Path())
	return nil
}

// importPack upserts every component of pack and returns the number of
// strings written.
func importPack(ctx context.Context, store *catalog.Store, lang string, pack catalog.Pack, rep progress.Reporter) (int, error) {
	components := pack.Components()
	rep.Start(len(components))
	defer rep.Finish()

	total := 0
	for i, component := range components {
		if err := store.Upsert(ctx, lang, component, pack[component]); err != nil {
			return total, errors.Wrapf(err, "importing %s", component)
		}
		total += len(pack[component])
		rep.Update(i+1, component)
	}
	return total, nil
}
