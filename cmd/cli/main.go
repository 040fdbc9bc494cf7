package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/finsync/infra/initializer"
	"github.com/amirasaad/finsync/pkg/app"
	"github.com/amirasaad/finsync/pkg/config"
	"github.com/amirasaad/finsync/pkg/service/ledger"
	"github.com/amirasaad/finsync/pkg/syncer"
	"github.com/fatih/color"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	fail  = color.New(color.FgRed)
)

const usage = `Usage: finsync <command> [arguments]
Commands:
  register <email> <name>
  login <email>
  logout
  status
  add <name> <amount> <date>
  pay <transaction_id>
  months
  duplicate-month`

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	cfg, err := config.Load(".env")
	if err != nil {
		fail.Fprintln(os.Stderr, "Failed to load configuration:", err) //nolint:errcheck
		os.Exit(1)
	}
	deps, closeDeps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fail.Fprintln(os.Stderr, "Failed to initialize:", err) //nolint:errcheck
		os.Exit(1)
	}
	defer closeDeps() //nolint:errcheck

	a := app.New(deps, cfg)
	ctx := context.Background()
	err = execute(ctx, a, os.Args[1:], os.Stdout)
	// flush pending remote writes before exiting
	a.Sync.Stop(ctx)
	if err != nil {
		fail.Fprintln(os.Stderr, err) //nolint:errcheck
		os.Exit(1)
	}
}

func execute(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "register":
		if len(args) < 2 {
			return errUsage
		}
		sess, err := a.AuthService.Register(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered %s (%s)\n", sess.Email, sess.Name)
		return nil
	case "login":
		if len(args) != 1 {
			return errUsage
		}
		sess, err := a.AuthService.Login(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Signed in as %s\n", sess.Email)
		return nil
	case "logout":
		a.AuthService.Logout(ctx)
		fmt.Fprintln(out, "Signed out")
		return nil
	}

	sess, ok := a.AuthService.Current()
	if !ok {
		return errors.New("not signed in; run login first")
	}
	if a.Sync.Status() == syncer.StatusAnonymous {
		if _, _, err := a.AuthService.Resume(ctx); err != nil {
			return err
		}
	}

	switch cmd {
	case "status":
		v, err := a.LedgerService.ActiveView()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s | %s | total %.2f | balance %.2f\n",
			sess.Email, bold(v.Month.Month+" "+v.Month.Year), v.Month.Total, v.ProfitBalance)
		for _, tx := range v.Transactions {
			mark := " "
			if tx.Paid {
				mark = green("x")
			}
			fmt.Fprintf(out, "[%s] %s %-24s %10.2f %s\n", mark, tx.ID, tx.Name, tx.Amount, tx.Date)
		}
		return nil
	case "add":
		if len(args) != 3 {
			return errUsage
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		tx, err := a.LedgerService.AddTransaction(ledger.TransactionInput{Name: args[0], Amount: amount, Date: args[2]})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %s to %s/%s\n", tx.ID, tx.Month, tx.Year)
		return nil
	case "pay":
		if len(args) != 1 {
			return errUsage
		}
		tx, err := a.LedgerService.TogglePaid(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s paid=%t\n", tx.Name, tx.Paid)
		return nil
	case "months":
		st := a.LedgerService.Snapshot()
		for _, m := range st.Months {
			active := " "
			if m.ID == st.ActiveMonthID {
				active = green("*")
			}
			fmt.Fprintf(out, "%s %s %s %s %.2f\n", active, m.ID, m.Month, m.Year, m.Total)
		}
		return nil
	case "duplicate-month":
		m, err := a.LedgerService.DuplicateMonth()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created %s %s\n", m.Month, m.Year)
		return nil
	default:
		return errUsage
	}
}
