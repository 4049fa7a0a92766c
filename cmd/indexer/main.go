package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	appsvc "ragchat/internal/app"
	"ragchat/internal/bootstrap"
	"ragchat/internal/repository"
	"ragchat/internal/watch"
)

var (
	seedFile = flag.String("seed", "", "TOML file of [[entry]] question/answer pairs to import before indexing")
	seedOnly = flag.Bool("seed-only", false, "Import the seed file and exit without indexing")
	watchIt  = flag.Bool("watch", false, "Keep running and re-import + reindex whenever the seed file changes")
)

func main() {
	flag.Parse()
	if *watchIt && *seedFile == "" {
		log.Fatalf("-watch requires -seed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix, err := bootstrap.NewIndexer(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := ix.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	repo := repository.NewFAQRepository(ix.Source)
	service := appsvc.NewIndexService(repo, ix.Provider, ix.Index)

	if err := run(ctx, service, repo, ix.Index.Name()); err != nil {
		log.Fatalf("%v", err)
	}
	if !*watchIt {
		return
	}

	watcher, err := watch.NewFileWatcher(*seedFile, 0)
	if err != nil {
		log.Fatalf("watch seed failed: %v", err)
	}
	defer watcher.Close()

	log.Printf("watching %s for changes", *seedFile)
	for range watcher.Changes(ctx) {
		if err := run(ctx, service, repo, ix.Index.Name()); err != nil {
			log.Printf("refresh failed: %v", err)
		}
	}
}

func run(ctx context.Context, service *appsvc.IndexService, repo *repository.FAQRepository, indexName string) error {
	if *seedFile != "" {
		n, err := service.ImportSeed(*seedFile)
		if err != nil {
			return err
		}
		log.Printf("imported %d entries from %s", n, *seedFile)
	}
	if *seedOnly {
		return nil
	}

	total, err := repo.Count()
	if err != nil {
		return err
	}
	if total == 0 {
		log.Printf("no entries to index")
		return nil
	}

	result, err := service.Reindex(ctx)
	if err != nil {
		return err
	}
	log.Printf("indexed %d entries into %s (%d skipped)", result.Indexed, indexName, result.Skipped)
	return nil
}
