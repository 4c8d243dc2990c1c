package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"coursehub/config"
	"coursehub/database"
	"coursehub/models"
	"coursehub/validators"
	courseValidator "coursehub/validators/course"

	"gorm.io/gorm"
)

// Imports courses from a CSV file with the header
// title,description,price,discountPrice,averageRating,reviewCount,language,totalDuration,thumbnailUrl
func main() {
	path := flag.String("file", "courses.csv", "CSV file to import")
	dryRun := flag.Bool("dry-run", false, "validate and insert into an in-memory database only")
	flag.Parse()

	var (
		db  *gorm.DB
		err error
	)
	if *dryRun {
		db, err = database.OpenInMemory()
	} else {
		var cfg *config.Config
		cfg, err = config.LoadConfig()
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		db, err = database.ConnectDb(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Open CSV file
	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	store := database.NewCourseStore(db)
	ctx := context.Background()
	inserted, skipped := 0, 0

	for i, row := range records[1:] {
		line := i + 2

		reqData := &courseValidator.CreateCourseRequest{
			Title:         getField(row, headerIndex, "title"),
			Description:   getField(row, headerIndex, "description"),
			Price:         parseFloat(getField(row, headerIndex, "price")),
			DiscountPrice: parseFloat(getField(row, headerIndex, "discountPrice")),
			AverageRating: parseFloat(getField(row, headerIndex, "averageRating")),
			ReviewCount:   parseInt(getField(row, headerIndex, "reviewCount")),
			Language:      getField(row, headerIndex, "language"),
			TotalDuration: parseInt(getField(row, headerIndex, "totalDuration")),
		}
		if thumb := getField(row, headerIndex, "thumbnailUrl"); thumb != "" {
			reqData.ThumbnailURL = &thumb
		}

		if errs := validators.Struct(reqData); errs != nil {
			log.Printf("Skipping line %d: %v", line, errs)
			skipped++
			continue
		}

		course := models.Course{
			Title:         reqData.Title,
			Description:   reqData.Description,
			Price:         *reqData.Price,
			DiscountPrice: reqData.DiscountPrice,
			AverageRating: *reqData.AverageRating,
			Language:      reqData.Language,
			TotalDuration: *reqData.TotalDuration,
			ThumbnailURL:  reqData.ThumbnailURL,
		}
		if reqData.ReviewCount != nil {
			course.ReviewCount = *reqData.ReviewCount
		}

		if err := store.Create(ctx, &course); err != nil {
			log.Printf("Error inserting line %d (%s): %v", line, course.Title, err)
			skipped++
			continue
		}
		inserted++
	}

	log.Printf("Import completed: %d inserted, %d skipped", inserted, skipped)
}

func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseFloat returns nil for empty or malformed values so validation reports them.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
