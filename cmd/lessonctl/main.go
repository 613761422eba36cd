// Command lessonctl drives the lesson stack from a terminal:
//
//	lessonctl generate -topic Animals -count 3 [-mode content] [-lang id]
//	lessonctl list [-search fruit] [-limit 20] [-offset 0]
//	lessonctl show -id <uuid>
//	lessonctl delete -id <uuid>
//	lessonctl token [-subject web] [-ttl 24h]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"lessonserver/internal/bootstrap"
	"lessonserver/internal/domain"
	"lessonserver/internal/infra"
	"lessonserver/internal/middleware"
)

var errUsage = errors.New("usage: lessonctl generate|list|show|delete|token [flags]")

func main() {
	if len(os.Args) < 2 {
		exitWithError(errUsage)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "lessonctl").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Args[1] == "token" {
		if err := runToken(os.Args[2:], cfg.FunctionsSecret, os.Stdout); err != nil {
			exitWithError(err)
		}
		return
	}

	stack, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer stack.Close()

	if err := run(ctx, stack, os.Args[1:], os.Stdout); err != nil {
		stack.Close()
		exitWithError(err)
	}
}

func run(ctx context.Context, stack *bootstrap.Stack, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "generate":
		return runGenerate(ctx, stack, args[1:], out)
	case "list":
		return runList(ctx, stack, args[1:], out)
	case "show":
		return runShow(ctx, stack, args[1:], out)
	case "delete":
		return runDelete(ctx, stack, args[1:], out)
	default:
		return errUsage
	}
}

func runGenerate(ctx context.Context, stack *bootstrap.Stack, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	topic := fs.String("topic", "", "lesson topic")
	count := fs.Int("count", domain.DefaultItemCount, "number of items")
	mode := fs.String("mode", "full", "full or content")
	lang := fs.String("lang", "", "narration language (BCP 47)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := domain.GenerationRequest{Topic: *topic, ItemCount: count, Language: *lang}
	var result domain.GenerationResult
	switch *mode {
	case "full":
		result = stack.Service.GenerateLesson(ctx, req)
	case "content":
		result = stack.Service.GenerateContentOnly(ctx, req)
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	missing := 0
	for _, img := range result.Images {
		if !img.OK() {
			missing++
		}
	}
	if missing > 0 {
		fmt.Fprintf(out, "warning: %d of %d images unavailable\n", missing, len(result.Images))
	}
	return printJSON(out, result.Lesson)
}

func runList(ctx context.Context, stack *bootstrap.Stack, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	search := fs.String("search", "", "title filter")
	limit := fs.Int("limit", domain.DefaultListLimit, "page size")
	offset := fs.Int("offset", 0, "page offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := stack.Lessons.List(ctx, domain.ListParams{Search: *search, Limit: *limit, Offset: *offset})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tITEMS\tCREATED")
	for _, l := range page.Lessons {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ID, l.Title, len(l.Items), l.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d lessons\n", len(page.Lessons), page.Total)
	return nil
}

func runShow(ctx context.Context, stack *bootstrap.Stack, args []string, out io.Writer) error {
	id, err := parseID("show", args)
	if err != nil {
		return err
	}
	lesson, err := stack.Lessons.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("lesson %s: %w", id, err)
	}
	return printJSON(out, lesson)
}

func runDelete(ctx context.Context, stack *bootstrap.Stack, args []string, out io.Writer) error {
	id, err := parseID("delete", args)
	if err != nil {
		return err
	}
	if err := stack.Lessons.Delete(ctx, id); err != nil {
		return fmt.Errorf("lesson %s: %w", id, err)
	}
	fmt.Fprintf(out, "lesson %s deleted\n", id)
	return nil
}

func runToken(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "lesson-app", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime, 0 for none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if secret == "" {
		return errors.New("FUNCTIONS_JWT_SECRET is required")
	}
	token, err := middleware.SignToken(secret, *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func parseID(name string, args []string) (uuid.UUID, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	raw := fs.String("id", "", "lesson id")
	if err := fs.Parse(args); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("-id must be a lesson uuid: %w", err)
	}
	return id, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
