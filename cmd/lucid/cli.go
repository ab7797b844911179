package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Joseph-hackathon/Lucid-solana/internal/api"
	"github.com/Joseph-hackathon/Lucid-solana/internal/capsule"
	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/solana"
)

// env holds what commands share. Service is built on first use so that
// decode runs without configuration.
type env struct {
	out     io.Writer
	logger  *zap.Logger
	open    func() (*solana.Service, error)
	service *solana.Service
}

func (e *env) svc() (*solana.Service, error) {
	if e.service != nil {
		return e.service, nil
	}
	s, err := e.open()
	if err != nil {
		return nil, err
	}
	e.service = s
	return s, nil
}

func (e *env) close() {
	if e.service == nil {
		return
	}
	if err := e.service.Close(); err != nil {
		e.logger.Warn("failed to close cache", zap.Error(err))
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "lucid",
		Usage:   "Intent capsule tracker",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(e),
			ledgerCmd(e),
			watchCmd(e),
			statsCmd(e),
			snapshotCmd(e),
			historyCmd(e),
			activityCmd(e),
			decodeCmd(e),
		},
		After: func(*cli.Context) error {
			e.close()
			return nil
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func ledgerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "wallet", Aliases: []string{"w"}, Required: true, Usage: "Wallet address"},
		&cli.StringFlag{Name: "capsule", Aliases: []string{"c"}, Usage: "Capsule account address"},
		&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Filter: creation|execution|unclassified"},
		&cli.StringFlag{Name: "signature", Usage: "Filter by transaction signature"},
		&cli.StringFlag{Name: "from", Usage: "Start date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "to", Usage: "End date (YYYY-MM-DD)"},
	}
}

func ledgerRequest(c *cli.Context) (*model.LedgerRequest, error) {
	req, err := model.NewLedgerRequest(c.String("wallet"), c.String("capsule"), c.String("kind"),
		c.String("signature"), c.String("from"), c.String("to"))
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return req, nil
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (defaults to PORT)"},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			port := c.String("port")
			if port == "" {
				port = config.GetPort()
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           api.SetupRouter(svc, e.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				e.logger.Info("http server listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return outputError(fmt.Errorf("failed to serve: %w", err))
				}
				return nil
			case <-c.Context.Done():
			}

			e.logger.Info("shutting down http server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return outputError(fmt.Errorf("failed to shut down: %w", err))
			}
			return nil
		},
	}
}

// ledgerCmd creates the ledger command.
func ledgerCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Run one reconciliation pass for a wallet",
		Flags: ledgerFlags(),
		Action: func(c *cli.Context) error {
			req, err := ledgerRequest(c)
			if err != nil {
				return outputError(err)
			}
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			resp, err := svc.GetLedger(c.Context, req)
			if err != nil {
				if resp != nil {
					_ = outputJSON(e.out, resp)
				}
				return outputError(err)
			}
			return outputJSON(e.out, resp)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(e *env) *cli.Command {
	flags := append(ledgerFlags(),
		&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "Re-check interval (defaults to RECHECK_INTERVAL)"},
	)
	return &cli.Command{
		Name:  "watch",
		Usage: "Re-run the reconciliation periodically, printing each pass",
		Flags: flags,
		Action: func(c *cli.Context) error {
			req, err := ledgerRequest(c)
			if err != nil {
				return outputError(err)
			}
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			interval := c.Duration("interval")
			if interval <= 0 {
				interval = config.Get().RecheckInterval
			}

			err = svc.WatchLedger(c.Context, req, interval, func(resp *model.LedgerResponse, err error) {
				if err != nil {
					e.logger.Warn("reconciliation pass failed", zap.Error(err))
				}
				if err := outputJSON(e.out, resp); err != nil {
					e.logger.Warn("failed to write pass", zap.Error(err))
				}
			})
			if err != nil && c.Context.Err() == nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print dormant wallet statistics",
		Action: func(c *cli.Context) error {
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(e.out, svc.GetDormantStats(c.Context))
		},
	}
}

// snapshotCmd creates the snapshot command.
func snapshotCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "snapshot",
		Usage:     "Fetch and decode one capsule account",
		ArgsUsage: "<address>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one capsule address is required"))
			}
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			resp, err := svc.GetSnapshot(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(e.out, resp)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print intents and executed capsules remembered locally for a wallet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wallet", Aliases: []string{"w"}, Required: true, Usage: "Wallet address"},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			resp, err := svc.LocalHistory(c.Context, c.String("wallet"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(e.out, resp)
		},
	}
}

// activityCmd creates the activity command.
func activityCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "activity",
		Usage: "Print the most recent transaction known for a wallet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wallet", Aliases: []string{"w"}, Required: true, Usage: "Wallet address"},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.svc()
			if err != nil {
				return outputError(err)
			}
			resp, err := svc.WalletActivity(c.Context, c.String("wallet"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(e.out, resp)
		},
	}
}

// decodeCmd creates the decode command. It needs no configuration.
func decodeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Decode raw capsule account bytes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hex", Usage: "Account data as hex"},
			&cli.StringFlag{Name: "base64", Usage: "Account data as base64"},
		},
		Action: func(c *cli.Context) error {
			data, err := decodeInput(c.String("hex"), c.String("base64"))
			if err != nil {
				return outputError(err)
			}
			snap, ok := capsule.Decode(data)
			if !ok {
				return outputError(errors.NewDecodeFailure("<input>", len(data)))
			}
			return outputJSON(e.out, solana.NewSnapshotResponse(snap, time.Now()))
		},
	}
}

func decodeInput(hexData, b64Data string) ([]byte, error) {
	switch {
	case hexData != "" && b64Data != "":
		return nil, errors.NewInvalidRequest("use either --hex or --base64, not both")
	case hexData != "":
		data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexData), "0x"))
		if err != nil {
			return nil, errors.NewInvalidRequest("invalid hex: " + err.Error())
		}
		return data, nil
	case b64Data != "":
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64Data))
		if err != nil {
			return nil, errors.NewInvalidRequest("invalid base64: " + err.Error())
		}
		return data, nil
	}
	return nil, errors.NewInvalidRequest("--hex or --base64 is required")
}

// outputJSON writes v as JSON, indented when out is a terminal.
func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	if isTerminal(out) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputError formats error for CLI.
func outputError(err error) error {
	if code := errors.CodeOf(err); code != "" {
		return cli.Exit(err.Error(), 1)
	}
	return cli.Exit("error: "+err.Error(), 1)
}
