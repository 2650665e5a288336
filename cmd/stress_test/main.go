package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	initialAvailability = 20
	totalRequests       = 50
)

// Many users add the same book to their carts at once; exactly
// initialAvailability of them may succeed.
func main() {
	dsn := flag.String("mysql", "", "MySQL DSN; in-memory storage when empty")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	ctx := context.Background()

	var db port.DatabaseRepository
	if *dsn != "" {
		sqlDB, err := sql.Open("mysql", *dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect mysql")
		}
		store := storage.NewMySQLStore(sqlDB, 0, 0)
		if err := store.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate schema")
		}
		db = store
	} else {
		db = storage.NewMemoryStore()
	}
	defer db.Close()

	catalog := service.NewCatalogService(db, messaging.NopPublisher{})
	carts := service.NewCartService(db)

	title, author, availability := "Stress Test", "Load Generator", initialAvailability
	price := decimal.NewFromInt(10)
	book, err := catalog.CreateBook(ctx, domain.BookFields{
		Title:        &title,
		Author:       &author,
		Price:        &price,
		Availability: &availability,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create book")
	}

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var errorCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			who := domain.Identity{UserID: fmt.Sprintf("stress-user-%d-%d", start.UnixNano(), userID)}
			err := carts.AddItem(ctx, who, book.ID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrQuantityExceedsAvailability):
				soldOutCount.Add(1)
			default:
				errorCount.Add(1)
				log.Error().Err(err).Msg("add to cart failed")
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Availability: %d\n", initialAvailability)
	fmt.Printf("Total Requests:       %d\n", totalRequests)
	fmt.Printf("Reserved:             %d\n", success)
	fmt.Printf("Sold out:             %d\n", soldOut)
	fmt.Printf("Errors:               %d\n", errorCount.Load())
	fmt.Printf("Duration:             %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialAvailability) && soldOut == int32(totalRequests-initialAvailability) {
		fmt.Printf("PASS: Exactly %d reservations succeeded\n", initialAvailability)
	} else {
		fmt.Printf("FAIL: Expected %d reserved/%d sold out, got %d/%d\n",
			initialAvailability, totalRequests-initialAvailability, success, soldOut)
	}

	final, err := catalog.GetBook(ctx, book.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read book")
	}
	fmt.Printf("Final Availability: %d\n", final.Availability)

	if final.Availability == 0 {
		fmt.Println("PASS: Availability depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected availability 0, got %d\n", final.Availability)
	}
}
