package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/partaj-app/partaj-backend/internal/app"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var referrals idList
	flag.Var(&referrals, "referral", "referral id to reindex (repeatable; default reindexes all sent referrals)")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if application.Services.Indexer == nil {
		fmt.Println("index bus unavailable (REDIS_ADDR missing)")
		os.Exit(1)
	}

	ctx := context.Background()

	if len(referrals) > 0 {
		indexed := 0
		for _, raw := range referrals {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil || id == uuid.Nil {
				fmt.Printf("skipping invalid referral id %q\n", raw)
				continue
			}
			if err := application.Services.Indexer.IndexReferral(ctx, id); err != nil {
				fmt.Printf("index referral %s: %v\n", id.String(), err)
				continue
			}
			indexed++
		}
		fmt.Printf("done; indexed=%d\n", indexed)
		return
	}

	count, err := application.Services.Indexer.IndexAll(ctx)
	if err != nil {
		fmt.Printf("index all referrals: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done; indexed=%d\n", count)
}
