package server

import (
	"fmt"
	"log"
	"time"

	"mealbook/internal/config"
	"mealbook/internal/exporter"
	"mealbook/internal/ledger"
	"mealbook/internal/locator"
	"mealbook/internal/objstore"
	"mealbook/internal/seating"
	"mealbook/internal/store"
)

// App 설정으로 조립한 서비스 묶음. 서버와 mealbookctl 이 함께 쓴다.
type App struct {
	Objects  *objstore.FSStore
	Journal  *store.Store
	Locator  *locator.Locator
	Ledger   *ledger.Service
	Seats    *seating.Allocator
	Exporter *exporter.Exporter
	Config   *config.AppConfig
}

// NewApp 저장소 루트와 저널 DB 를 열고 서비스를 연결한다
func NewApp(cfg *config.AppConfig) (*App, error) {
	root := config.ResolvePath(cfg.Storage.Root)
	objects, err := objstore.NewFSStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage root: %w", err)
	}

	if _, err := config.EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	retention := time.Duration(cfg.Data.JournalRetentionDays) * 24 * time.Hour
	journal, err := store.New(config.JournalDBPath(cfg), store.WithRetention(retention))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	loc := locator.New(objects)
	sheet := seating.NewWorkbookSheet(objects, cfg.Seating.Path, cfg.Seating.SheetName)
	seats := seating.NewAllocator(sheet, seating.Layout{
		TotalCell:    cfg.Seating.TotalCell,
		PerGroupCell: cfg.Seating.PerGroupCell,
		Anchor:       cfg.Seating.Anchor,
	}, seating.WithMaxAttempts(cfg.Seating.MaxAttempts), seating.WithJournal(journal, cfg.Seating.Path))

	log.Printf("[app] storage root %s, seating %s", root, cfg.Seating.Path)
	return &App{
		Objects:  objects,
		Journal:  journal,
		Locator:  loc,
		Ledger:   ledger.NewService(objects, loc, journal, cfg.Ledger.SheetName),
		Seats:    seats,
		Exporter: exporter.NewExporter(cfg.Export.TemplatePath),
		Config:   cfg,
	}, nil
}

// Close 저널 DB 닫기
func (a *App) Close() error {
	if a.Journal != nil {
		return a.Journal.Close()
	}
	return nil
}
