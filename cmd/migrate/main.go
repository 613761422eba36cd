package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"lessonserver/internal/db"
	"lessonserver/internal/infra"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [up|down|status]\n")
	}
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()

	migrator, err := db.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		exitWithError(err)
	}
	defer migrator.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		statuses, statusErr := migrator.Status(ctx)
		if statusErr != nil {
			err = statusErr
			break
		}
		for _, st := range statuses {
			applied := "pending"
			if !st.AppliedAt.IsZero() {
				applied = st.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%05d  %-8s  %s  %s\n", st.Source.Version, st.State, applied, st.Source.Path)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
