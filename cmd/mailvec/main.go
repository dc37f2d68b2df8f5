// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/mailvec/ai"
	"github.com/poiesic/mailvec/ai/openai"
	"github.com/poiesic/mailvec/backfill"
	"github.com/poiesic/mailvec/ingest"
	"github.com/poiesic/mailvec/mailbox"
	"github.com/poiesic/mailvec/search"
	"github.com/poiesic/mailvec/storage/postgres"
)

func main() {
	// Optional .env in the working directory; real env vars win.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "mailvec",
		Usage: "Email archive classification and semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Classify and store messages from an mbox file or a directory of .eml files",
				ArgsUsage: "<path>",
				Action:    ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Archive owner's address; messages from it are marked as sent",
					},
				),
			},
			{
				Name:   "embed",
				Usage:  "Embed stored rows that do not have a vector yet",
				Action: embedCommand,
				Flags: append(append(storeFlags(), embeddingFlags()...),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows to process in each batch",
						Value: backfill.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed provider calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "emails-only",
						Usage: "Embed emails only",
					},
					&cli.BoolFlag{
						Name:  "attachments-only",
						Usage: "Embed attachments only",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the embedded archive",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(append(storeFlags(), embeddingFlags()...),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum results per kind",
						Value:   search.DefaultLimit,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Earliest date to include (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Latest date to include (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "sender",
						Usage: "Substring match on sender address or name",
					},
					&cli.BoolFlag{
						Name:  "emails-only",
						Usage: "Search emails only",
					},
					&cli.BoolFlag{
						Name:  "attachments-only",
						Usage: "Search attachments only",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show tier and embedding-progress counts",
				Action: statusCommand,
				Flags:  storeFlags(),
			},
			{
				Name:  "analytics",
				Usage: "Archive analytics",
				Subcommands: []*cli.Command{
					{
						Name:   "summary",
						Usage:  "Totals, unique contacts, and covered date range",
						Action: summaryCommand,
						Flags:  storeFlags(),
					},
					{
						Name:   "timeline",
						Usage:  "Email volume by year or month",
						Action: timelineCommand,
						Flags: append(storeFlags(),
							&cli.BoolFlag{
								Name:  "monthly",
								Usage: "Group by month instead of year",
							},
							&cli.IntFlag{
								Name:  "year",
								Usage: "Restrict output to one year",
							},
						),
					},
					{
						Name:   "contacts",
						Usage:  "Most frequent correspondents",
						Action: contactsCommand,
						Flags: append(storeFlags(),
							&cli.IntFlag{
								Name:    "limit",
								Aliases: []string{"n"},
								Usage:   "Number of contacts to show",
								Value:   20,
							},
						),
					},
				},
			},
			{
				Name:   "truncate",
				Usage:  "Delete all stored data",
				Action: truncateCommand,
				Flags: append(storeFlags(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "PostgreSQL connection URL",
			EnvVars:  []string{"MAILVEC_DATABASE_URL"},
			Required: true,
		},
		&cli.IntFlag{
			Name:    "dim",
			Usage:   "Embedding dimensionality of the archive schema",
			EnvVars: []string{"MAILVEC_DIMENSIONS"},
			Value:   ai.DefaultDimensions,
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"MAILVEC_EMBEDDING_HOST"},
			Value:   "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"MAILVEC_EMBEDDING_MODEL"},
			Value:   "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:    "embedding-token",
			Usage:   "Embedding service API credential",
			EnvVars: []string{"MAILVEC_EMBEDDING_TOKEN", "OPENAI_API_KEY"},
		},
	}
}

func openStore(c *cli.Context) (*postgres.Store, error) {
	store, err := postgres.NewStore(context.Background(), c.String("db"), c.Int("dim"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithToken(c.String("embedding-token")),
		ai.WithDimensions(c.Int("dim")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: mailvec ingest <path>")
	}
	path := c.Args().First()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	parser, err := mailbox.NewParser()
	if err != nil {
		return err
	}

	source, err := mailbox.Open(path, parser)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer source.Close()

	var options []ingest.Option
	if owner := c.String("owner"); owner != "" {
		options = append(options, ingest.WithOwnerAddress(owner))
	}

	coordinator, err := ingest.NewCoordinator(store, options...)
	if err != nil {
		return err
	}

	counts, err := coordinator.Run(context.Background(), source)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Messages seen:          %d\n", counts.Total)
	fmt.Printf("Excluded:               %d\n", counts.Excluded)
	fmt.Printf("Metadata only:          %d\n", counts.MetadataOnly)
	fmt.Printf("Queued for vectorizing: %d\n", counts.Vectorize)
	fmt.Printf("Attachments stored:     %d\n", counts.Attachments)
	fmt.Printf("Attachments with text:  %d\n", counts.AttachmentsWithText)
	if counts.Skipped > 0 {
		fmt.Printf("Skipped:                %d\n", counts.Skipped)
	}
	return nil
}

func embedCommand(c *cli.Context) error {
	if c.Bool("emails-only") && c.Bool("attachments-only") {
		return fmt.Errorf("--emails-only and --attachments-only are mutually exclusive")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	backfiller, err := backfill.NewBackfiller(store, embedder,
		backfill.WithBatchSize(c.Int("batch-size")),
		backfill.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		backfill.WithProgress(os.Stderr),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch {
	case c.Bool("emails-only"):
		embedded, err := backfiller.RunEmails(ctx)
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}
		fmt.Printf("Emails embedded: %d\n", embedded)
	case c.Bool("attachments-only"):
		embedded, err := backfiller.RunAttachments(ctx)
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}
		fmt.Printf("Attachments embedded: %d\n", embedded)
	default:
		result, err := backfiller.Run(ctx)
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}
		fmt.Printf("Emails embedded:      %d\n", result.Emails)
		fmt.Printf("Attachments embedded: %d\n", result.Attachments)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("usage: mailvec search <query>")
	}
	if c.Bool("emails-only") && c.Bool("attachments-only") {
		return fmt.Errorf("--emails-only and --attachments-only are mutually exclusive")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(store, embedder)
	if err != nil {
		return err
	}

	query := search.Query{
		Text:            strings.Join(c.Args().Slice(), " "),
		Limit:           c.Int("limit"),
		Sender:          c.String("sender"),
		EmailsOnly:      c.Bool("emails-only"),
		AttachmentsOnly: c.Bool("attachments-only"),
	}

	if raw := c.String("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --from date %q: %w", raw, err)
		}
		query.From = &from
	}
	if raw := c.String("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --to date %q: %w", raw, err)
		}
		// Inclusive: cover the whole named day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		query.To = &to
	}

	results, err := searcher.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results.Emails) > 0 {
		fmt.Println("Emails:")
		for _, match := range results.Emails {
			fmt.Printf("  [%.3f] %s  %s  %s\n",
				match.Similarity,
				match.Email.Date.Format("2006-01-02"),
				match.Email.Sender,
				match.Email.Subject)
			if match.Snippet != "" {
				fmt.Printf("          %s\n", match.Snippet)
			}
		}
	}
	if len(results.Attachments) > 0 {
		fmt.Println("Attachments:")
		for _, match := range results.Attachments {
			fmt.Printf("  [%.3f] %s  %s  %s (%s)\n",
				match.Similarity,
				match.EmailDate.Format("2006-01-02"),
				match.EmailSender,
				match.Attachment.Filename,
				match.EmailSubject)
			if match.Snippet != "" {
				fmt.Printf("          %s\n", match.Snippet)
			}
		}
	}
	if len(results.Emails) == 0 && len(results.Attachments) == 0 {
		fmt.Println("No matches.")
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.StatusCounts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	fmt.Printf("Emails:                %d\n", counts.TotalEmails)
	fmt.Printf("  Metadata only:       %d\n", counts.MetadataOnly)
	fmt.Printf("  Vectorize tier:      %d\n", counts.Vectorize)
	fmt.Printf("  Embedded:            %d\n", counts.EmailsEmbedded)
	fmt.Printf("Attachments:           %d\n", counts.Attachments)
	fmt.Printf("  With text:           %d\n", counts.AttachmentsWithText)
	fmt.Printf("  Embedded:            %d\n", counts.AttachmentsEmbedded)
	return nil
}

func summaryCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Summary(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}

	fmt.Printf("Total emails:    %d\n", summary.TotalEmails)
	fmt.Printf("Unique contacts: %d\n", summary.UniqueContacts)
	if summary.TotalEmails > 0 {
		fmt.Printf("Date range:      %s to %s\n",
			summary.EarliestEmail.Format("2006-01-02"),
			summary.LatestEmail.Format("2006-01-02"))
		fmt.Printf("Average per day: %.1f\n", summary.AvgPerDay)
	}

	activity, err := store.Activity(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read activity: %w", err)
	}

	fmt.Println("Activity by hour:")
	for hour, count := range activity.ByHour {
		if count > 0 {
			fmt.Printf("  %02d:00  %6d\n", hour, count)
		}
	}
	fmt.Println("Activity by weekday:")
	for day, count := range activity.ByWeekday {
		fmt.Printf("  %-9s %6d\n", time.Weekday(day).String(), count)
	}
	return nil
}

func timelineCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	periods, err := store.Timeline(context.Background(), c.Bool("monthly"))
	if err != nil {
		return fmt.Errorf("failed to read timeline: %w", err)
	}

	for _, period := range periods {
		if year := c.Int("year"); year != 0 && period.Year != year {
			continue
		}
		label := fmt.Sprintf("%d", period.Year)
		if c.Bool("monthly") {
			label = fmt.Sprintf("%d-%02d", period.Year, period.Month)
		}
		fmt.Printf("%s  %6d total  %6d sent  %6d received\n",
			label, period.EmailCount, period.SentCount, period.ReceivedCount)
	}
	return nil
}

func contactsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	contacts, err := store.TopContacts(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}

	for _, contact := range contacts {
		name := contact.Name
		if name == "" {
			name = contact.Email
		}
		fmt.Printf("%6d  %s <%s>  (%s to %s)\n",
			contact.TotalEmails, name, contact.Email,
			contact.FirstContact.Format("2006-01-02"),
			contact.LastContact.Format("2006-01-02"))
	}
	return nil
}

func truncateCommand(c *cli.Context) error {
	if !c.Bool("yes") {
		fmt.Print("This deletes every stored email and attachment. Type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Truncate(context.Background()); err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	fmt.Println("Archive truncated.")
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
