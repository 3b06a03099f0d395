package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/config"
	"github.com/ziadkadry99/pageutil/internal/db"
	"github.com/ziadkadry99/pageutil/internal/logging"
	"github.com/ziadkadry99/pageutil/internal/webutil"
)

var log = logging.For("cmd")

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading config\nRun `pageutil init` to create a config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", cfgFile)
	}
	if cfg.Debug {
		logging.Setup(os.Stderr, true)
	}
	return cfg, nil
}

// openDatabase opens the sqlite database under the configured data dir.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return database, nil
}

// loadTable fills a frozen table for cfg.Lang. Strings imported into
// the database win; otherwise the language pack directory is read
// directly. A missing pack leaves the table empty, so every lookup
// yields the miss marker.
func loadTable(ctx context.Context, cfg *config.Config, database *db.DB) (*catalog.Table, error) {
	table := catalog.NewTable()
	table.Debug = cfg.Debug
	defer table.Freeze()

	store := catalog.NewStore(database)
	n, err := store.Count(ctx, cfg.Lang)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		if _, err := store.LoadTable(ctx, cfg.Lang, table); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"lang": cfg.Lang, "strings": n}).Info("catalog loaded from database")
		return table, nil
	}

	pack, err := catalog.LoadDir(cfg.LangDir, cfg.Lang)
	if err != nil {
		return nil, err
	}
	if len(pack) == 0 {
		log.WithFields(logrus.Fields{"lang": cfg.Lang, "dir": cfg.LangDir}).Warn("no language pack found; catalog is empty")
		return table, nil
	}
	if err := pack.Fill(table); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"lang": cfg.Lang, "components": len(pack)}).Info("catalog loaded from language pack")
	return table, nil
}

// siteFromConfig maps the site settings onto the helpers' view of them.
func siteFromConfig(cfg *config.Config) webutil.Site {
	return webutil.Site{
		WWWRoot:        cfg.Site.WWWRoot,
		Theme:          cfg.Site.Theme,
		ThemeRev:       cfg.Site.ThemeRev,
		SlashArguments: cfg.Site.SlashArguments,
		SVGIcons:       cfg.Site.SVGIcons,
	}
}

// serverURL is the default address of a local `pageutil serve`.
func serverURL(cfg *config.Config) string {
	return fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
}
