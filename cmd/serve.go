package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mateconpizza/sbm/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr string
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface and the API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		srv, err := server.New(
			server.WithDB(r),
			server.WithAddr(cfg.Server.Addr),
			server.WithSessions(sessionStore()),
			server.WithCORSOrigins(cfg.Server.CORSOrigins),
			server.WithServiceOpts(serviceOpts()...),
		)
		if err != nil {
			return err
		}

		u, err := srv.Auth().EnsureDefaultUser(ctx, cfg.AdminPassword)
		if err != nil {
			return err
		}
		slog.Info("serving bookmarks", "user", u.Username, "db", r.Cfg.Fullpath())

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, server.ErrServerNotRunning) {
				return err
			}

			return nil
		})

		if serveOpen {
			openBrowser(baseURL(cfg.Server.Addr))
		}

		return g.Wait()
	},
}

// baseURL turns a listen address into a URL a browser can open.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	return "http://" + addr
}

func openBrowser(u string) {
	fmt.Fprintf(os.Stderr, "opening %s\n", u)

	if err := browser.OpenURL(u); err != nil {
		slog.Warn("opening browser", "url", u, "error", err)
	}
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	f.BoolVarP(&serveOpen, "open", "o", false, "open the web interface in the browser")

	Root.AddCommand(serveCmd)
}
