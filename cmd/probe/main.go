// Command probe checks the first hours of the balloon feed and reports what it returns.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/i474232898/balloon-tracker/internal/balloon"
	"github.com/i474232898/balloon-tracker/internal/common"
)

func main() {
	_ = godotenv.Load()

	hours := flag.Int("hours", 6, "number of hours to probe, starting at 00")
	baseURL := flag.String("base-url", balloon.DefaultBaseURL, "upstream feed base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	baseLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	if *hours < 1 || *hours > balloon.DefaultHours {
		logger.Fatalw("hours out of range", "hours", *hours, "max", balloon.DefaultHours)
	}

	client := balloon.NewClient(&http.Client{Timeout: *timeout}, *baseURL)
	logger.Infow("probing balloon feed", "baseURL", *baseURL, "hours", *hours)

	for h := 0; h < *hours; h++ {
		label := common.HourLabel(h)
		body, err := client.FetchHour(context.Background(), h)
		if err != nil {
			var ue *balloon.UpstreamError
			if errors.As(err, &ue) {
				logger.Warnw("upstream status", "hour", label, "status", ue.StatusCode, "text", ue.StatusText)
				continue
			}
			logger.Errorw("fetch failed", "hour", label, "error", err)
			continue
		}

		entries, err := balloon.DecodeEntries(body)
		if err != nil {
			logger.Warnw("not an array", "hour", label, "bytes", len(body), "error", err)
			continue
		}

		snap := balloon.SnapshotFromEntries(h, time.Now(), entries)
		fields := []interface{}{"hour", label, "items", len(entries), "valid", snap.Len()}
		if len(entries) > 0 {
			fields = append(fields, "first", string(entries[0]))
		}
		logger.Infow(fmt.Sprintf("%s.json ok", label), fields...)
	}
}
