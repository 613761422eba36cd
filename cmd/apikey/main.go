// Command apikey manages the provider API keys kept in integration_tokens.
// A key set in the environment always wins over a stored one.
//
//	apikey set [-provider gemini] [-key K]   (key falls back to GEMINI_API_KEY / OPENAI_API_KEY)
//	apikey show
//	apikey clear -provider openai
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"lessonserver/internal/infra"
	"lessonserver/internal/infra/credentials"
)

var errUsage = errors.New("usage: apikey set|show|clear [flags]")

func main() {
	if len(os.Args) < 2 {
		exitWithError(errUsage)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "apikey").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		exitWithError(err)
	}
	defer pool.Close()

	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	if err := run(ctx, store, os.Args[1:], os.Getenv, os.Stdout); err != nil {
		pool.Close()
		exitWithError(err)
	}
}

func run(ctx context.Context, store *credentials.Store, args []string, getenv func(string) string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "set":
		return runSet(ctx, store, args[1:], getenv, out)
	case "show":
		return runShow(ctx, store, getenv, out)
	case "clear":
		return runClear(ctx, store, args[1:], out)
	default:
		return errUsage
	}
}

func runSet(ctx context.Context, store *credentials.Store, args []string, getenv func(string) string, out io.Writer) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	providerFlag := fs.String("provider", credentials.ProviderGemini, "gemini or openai")
	keyFlag := fs.String("key", "", "API key (defaults to the provider's environment variable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	provider, err := parseProvider(*providerFlag)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(*keyFlag)
	if key == "" {
		key = strings.TrimSpace(getenv(credentials.EnvVar(provider)))
	}
	if key == "" {
		return fmt.Errorf("%s key is required via -key or %s", provider, credentials.EnvVar(provider))
	}
	if err := store.SetToken(ctx, provider, key); err != nil {
		return fmt.Errorf("store %s key: %w", provider, err)
	}
	fmt.Fprintf(out, "%s key stored (%s)\n", provider, mask(key))
	return nil
}

func runShow(ctx context.Context, store *credentials.Store, getenv func(string) string, out io.Writer) error {
	for _, provider := range credentials.Providers {
		stored, err := store.Token(ctx, provider)
		if err != nil {
			return fmt.Errorf("load %s key: %w", provider, err)
		}
		source := "stored"
		switch {
		case strings.TrimSpace(getenv(credentials.EnvVar(provider))) != "":
			source = "env " + credentials.EnvVar(provider) + " (overrides stored)"
		case stored == "":
			source = "not configured"
		}
		fmt.Fprintf(out, "%-7s %-12s %s\n", provider, mask(stored), source)
	}
	return nil
}

func runClear(ctx context.Context, store *credentials.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	providerFlag := fs.String("provider", "", "gemini or openai")
	if err := fs.Parse(args); err != nil {
		return err
	}
	provider, err := parseProvider(*providerFlag)
	if err != nil {
		return err
	}
	removed, err := store.DeleteToken(ctx, provider)
	if err != nil {
		return fmt.Errorf("clear %s key: %w", provider, err)
	}
	if !removed {
		fmt.Fprintf(out, "no %s key stored\n", provider)
		return nil
	}
	fmt.Fprintf(out, "%s key removed\n", provider)
	return nil
}

func parseProvider(raw string) (string, error) {
	provider := strings.ToLower(strings.TrimSpace(raw))
	if !slices.Contains(credentials.Providers, provider) {
		return "", fmt.Errorf("unsupported provider %q", raw)
	}
	return provider, nil
}

// mask keeps the last four characters of key.
func mask(key string) string {
	if key == "" {
		return "-"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "apikey:", err)
	os.Exit(1)
}
