package main

import (
	"context"
	"fmt"
	"os"

	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shelfmark/shelfmark/pkg/booksearch"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/filename"
	"github.com/shelfmark/shelfmark/pkg/filer"
	"github.com/shelfmark/shelfmark/pkg/localmeta"
	"github.com/shelfmark/shelfmark/pkg/lookupcache"
	"github.com/shelfmark/shelfmark/pkg/resolve"
	"github.com/shelfmark/shelfmark/pkg/version"
	"github.com/shelfmark/shelfmark/pkg/worker"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:  "shelfmark",
		Usage: "organize loose book files into a clean library tree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "directory of files to organize (overrides config)",
			},
			&cli.StringFlag{
				Name:  "library",
				Usage: "destination library root (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "organize",
				Usage:  "resolve and file every supported book in the source directory",
				Action: runOrganize,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					fmt.Println(version.Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("shelfmark error")
	}
}

func runOrganize(c *cli.Context) error {
	log := logger.New()
	log.Info("starting shelfmark", logger.Data{"version": version.Version})

	cfgPath := c.String("config")
	cfg, err := config.Load(orDefault(cfgPath, "shelfmark.yaml"), cfgPath != "")
	if err != nil {
		return err
	}
	if v := c.String("source"); v != "" {
		cfg.SourceDir = v
	}
	if v := c.String("library"); v != "" {
		cfg.LibraryDir = v
	}

	var cache *lookupcache.Cache
	if cfg.CachePath != "" {
		cache, err = lookupcache.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	searchCfg := booksearch.DefaultConfig()
	searchCfg.ISBNdbKey = cfg.ISBNdbKey
	searchCfg.Simulate = cfg.Simulate
	searcher := resolve.WithCache(booksearch.New(searchCfg, nil), cache)

	parserCfg := filename.DefaultConfig()
	parserCfg.KnownAuthors = append(parserCfg.KnownAuthors, cfg.KnownAuthors...)
	resolver := resolve.New(localmeta.New(), searcher, filename.New(parserCfg))

	audit, err := filer.OpenAuditLog(cfg.AuditLogPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	filerCfg := filer.Config{
		LibraryDir:      cfg.LibraryDir,
		Mode:            filer.OrganizeMode(cfg.OrganizeBy),
		Pattern:         cfg.FilenamePattern,
		MaxFilenameLen:  cfg.MaxFilenameLen,
		DownloadCovers:  cfg.DownloadCovers,
		StripAccents:    cfg.StripAccents,
		CleanCharacters: cfg.CleanCharacters,
		QuarantineDir:   cfg.UnknownDir,
		DuplicatesDir:   cfg.DuplicatesDir,
		CoversDir:       cfg.CoversDir,
	}
	f := filer.New(filerCfg, audit, nil)

	progress := func(done, total int, rec filer.ActionRecord) {
		fmt.Printf("[%d/%d] %-16s %s\n", done, total, rec.Status, rec.Source)
	}
	wrkr := worker.New(resolver, f, cfg.WorkerProcesses, progress)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	graceful := signals.Setup()
	go func() {
		<-graceful
		log.Info("starting graceful shutdown")
		cancel()
	}()

	summary, runErr := wrkr.Run(ctx, cfg.SourceDir)
	fmt.Printf("organized %d, quarantined %d, skipped %d, errors %d (of %d)\n",
		summary.Organized, summary.Quarantine, summary.Skipped, summary.Errors, summary.Total)

	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
