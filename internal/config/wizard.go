package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/catalog"
)

// langDirCandidates are checked, in order, for existing language packs.
var langDirCandidates = []string{"lang", "langs", "i18n", "locales"}

// detectLangDir returns the first candidate directory holding at least
// one file the catalog loader would read, and the language it found there.
func detectLangDir(root string) (dir string, lang string) {
	fsys := os.DirFS(root)
	anyLang := strings.Replace(catalog.PackPattern, "%s", "*", 1)
	for _, candidate := range langDirCandidates {
		matches, _ := doublestar.Glob(fsys, candidate+"/"+anyLang)
		if len(matches) > 0 {
			return candidate, path.Base(path.Dir(matches[0]))
		}
	}
	return "", ""
}

// RunWizard runs an interactive configuration wizard, saves the result
// to path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to pageutil! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()
	if dir, lang := detectLangDir("."); dir != "" {
		fmt.Printf("Detected language packs in %s/%s\n\n", dir, lang)
		cfg.LangDir, cfg.Lang = dir, lang
	}

	// 1. Language.
	langPrompt := promptui.Prompt{
		Label:   "Language",
		Default: cfg.Lang,
	}
	lang, err := langPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "language")
	}
	cfg.Lang = strings.TrimSpace(lang)

	// 2. Language pack directory.
	dirPrompt := promptui.Prompt{
		Label:   "Language pack directory",
		Default: cfg.LangDir,
	}
	langDir, err := dirPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "language pack directory")
	}
	cfg.LangDir = strings.TrimSpace(langDir)

	// 3. Site root.
	rootPrompt := promptui.Prompt{
		Label:   "Site URL (wwwroot)",
		Default: cfg.Site.WWWRoot,
	}
	wwwroot, err := rootPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "wwwroot")
	}
	cfg.Site.WWWRoot = strings.TrimRight(strings.TrimSpace(wwwroot), "/")

	// 4. Theme.
	themePrompt := promptui.Prompt{
		Label:   "Theme",
		Default: cfg.Site.Theme,
	}
	theme, err := themePrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "theme")
	}
	cfg.Site.Theme = strings.TrimSpace(theme)

	// 5. Icons.
	iconPrompt := promptui.Select{
		Label: "Theme icon format",
		Items: []string{
			"svg: scalable icons",
			"png: raster icons only",
		},
	}
	iconIdx, _, err := iconPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "icon selection")
	}
	cfg.Site.SVGIcons = iconIdx == 0

	// 6. Port.
	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, errors.Wrap(err, "port")
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, errors.Wrap(err, "saving config")
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("port must be a number")
	}
	if n < 1 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
