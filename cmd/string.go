package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/client"
)

var stringCmd = &cobra.Command{
	Use:   "string <component> <identifier>",
	Short: "Resolve a localized string",
	Long: `Looks up a string and fills its placeholders. --a fills {$a}; --a-json
takes any JSON value, and an object fills {$a->key}. With --url the
string is resolved by a running server instead of the local catalog.`,
	Args: cobra.ExactArgs(2),
	RunE: runString,
}

func init() {
	stringCmd.Flags().String("a", "", "scalar substitution for {$a}")
	stringCmd.Flags().String("a-json", "", "JSON substitution (takes precedence over --a)")
	stringCmd.Flags().Bool("html", false, "render the result as Markdown to HTML")
	stringCmd.Flags().String("url", "", "resolve through a running pageutil server")
	rootCmd.AddCommand(stringCmd)
}

func runString(cmd *cobra.Command, args []string) error {
	component, identifier := args[0], args[1]
	aFlag, _ := cmd.Flags().GetString("a")
	aJSON, _ := cmd.Flags().GetString("a-json")
	asHTML, _ := cmd.Flags().GetBool("html")
	url, _ := cmd.Flags().GetString("url")

	raw, err := substitutionJSON(cmd.Flags().Changed("a"), aFlag, aJSON)
	if err != nil {
		return err
	}

	if url != "" {
		if asHTML {
			return errors.New("--html is not supported with --url")
		}
		value, err := client.New(url).GetString(cmd.Context(), identifier, component, raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	table, err := loadTable(cmd.Context(), cfg, database)
	if err != nil {
		return err
	}

	sub, err := catalog.DecodeSubstitution(raw)
	if err != nil {
		return errors.Wrap(err, "decoding substitution")
	}

	value := table.GetString(identifier, component, sub)
	if asHTML {
		if value, err = table.RenderHTML(identifier, component, sub); err != nil {
			return err
		}
		value = strings.TrimRight(value, "\n")
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

// substitutionJSON merges the --a and --a-json flags into one JSON value.
func substitutionJSON(aSet bool, a, aJSON string) (json.RawMessage, error) {
	if aJSON != "" {
		if !json.Valid([]byte(aJSON)) {
			return nil, errors.Errorf("--a-json is not valid JSON: %s", aJSON)
		}
		return json.RawMessage(aJSON), nil
	}
	if aSet {
		b, err := json.Marshal(a)
		return b, err
	}
	return json.RawMessage("null"), nil
}
