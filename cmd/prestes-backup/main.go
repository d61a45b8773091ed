// Command prestes-backup exports, imports, clears and summarizes the records
// of a prestes backend from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"prestes/internal/backup"
	"prestes/internal/cli"
	"prestes/internal/config"
	"prestes/internal/core"
	"prestes/internal/log"
	"prestes/internal/records"
)

const usage = `usage: prestes-backup <command> [flags]

commands:
  export  [-o file]      write a backup document (default: backup-<product>-<date>.json, "-" for stdout)
  import  <file>         replace the collections present in file
  clear   -yes           remove every record and reset the config
  summary [-year YYYY]   print the monthly matrix or a yearly report
`

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	// stdout may carry the backup document, so logs go to stderr.
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentBackup,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	cli.MustValidate(logger, cfg)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)
	defer res.Cleanup()

	store := records.New(res.Blobs, records.WithLogger(logger.WithComponent(log.ComponentRecords)))
	app := &app{store: store, product: cfg.ProductName, now: time.Now, stdout: os.Stdout}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logger.Error("Command failed", "command", os.Args[1], log.FieldError, err)
		res.Cleanup()
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type app struct {
	store   *records.Store
	product string
	now     func() time.Time
	stdout  io.Writer
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "export":
		return a.export(ctx, args)
	case "import":
		return a.importFile(ctx, args)
	case "clear":
		return a.clear(ctx, args)
	case "summary":
		return a.summary(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", backup.FileName(a.product, a.now()), "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	doc, err := backup.Export(a.store.GetAllData(ctx))
	if err != nil {
		return err
	}
	if *out == "-" {
		_, err = a.stdout.Write(append(doc, '\n'))
		return err
	}
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(a.stdout, "exported to %s\n", *out)
	return nil
}

func (a *app) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	data, err := backup.ParseImport(raw)
	if err != nil {
		return err
	}
	if err := a.store.ImportData(ctx, data); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "imported %s\n", args[0])
	return nil
}

func (a *app) clear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm removal of every record")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if !*yes {
		return errors.New("refusing to clear without -yes")
	}
	if err := a.store.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "all records removed")
	return nil
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	year := fs.String("year", "", "print the report for this year")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	events := a.store.Events.Get(ctx)
	debts := a.store.Debts.Get(ctx)
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	defer tw.Flush()

	if *year != "" {
		y, err := strconv.Atoi(*year)
		if err != nil || y < 1000 || y > 9999 {
			return fmt.Errorf("invalid year %q", *year)
		}
		r := core.BuildYearReport(events, debts, y)
		fmt.Fprintf(tw, "year\tevents\tdebts\tincome\treceived\tdebt\tdebt paid\tbalance\t\n")
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t\n", r.Year, len(r.Events), len(r.Debts),
			r.TotalIncome.Format(), r.TotalReceived.Format(), r.TotalDebt.Format(),
			r.DebtPaid.Format(), r.Balance.Format())
		return nil
	}

	stats := core.ComputeStats(events, debts)
	fmt.Fprintf(tw, "month\tevents\treceived\treceivable\tdebts\tpaid\topen\t\n")
	for _, m := range stats.MonthlyMatrix {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", m.Month,
			m.TotalEvents.Format(), m.Received.Format(), m.Receivable.Format(),
			m.TotalDebts.Format(), m.DebtsPaid.Format(), m.DebtsOpen.Format())
	}
	fmt.Fprintf(tw, "total\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		stats.GrossIncome.Format(), stats.ReceivedIncome.Format(), stats.ReceivableIncome.Format(),
		stats.TotalDebt.Format(), stats.PaidDebt.Format(), stats.OpenDebt.Format())
	return nil
}
