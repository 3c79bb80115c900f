package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"CollabBoard/internal/config"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/net"
)

const gracefulTimeout = 10 * time.Second

func newHostCmd() *cobra.Command {
	var (
		port        int
		session     string
		advertise   bool
		redisURL    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a session for participants on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("port") {
				conf.Server.Port = port
			}
			if flags.Changed("session") {
				conf.Server.Session = session
			}
			if flags.Changed("advertise") {
				conf.Server.Advertise = advertise
			}
			if flags.Changed("redis-url") {
				conf.Server.RedisURL = redisURL
			}
			if flags.Changed("metrics-addr") {
				conf.Server.MetricsAddr = metricsAddr
			}
			if err := conf.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHost(ctx, logging.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&session, "session", config.DefaultSession, "Session name")
	cmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the session over mDNS")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL shared with other hosts")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Address of a separate metrics listener, metrics are served by the host when empty")
	return cmd
}

func runHost(ctx context.Context, logger logging.Logger) error {
	logger = logging.WithSession(logger, conf.Server.Session)
	metrics := net.NewMetrics()
	opts := []net.HubOption{net.WithMetrics(metrics)}

	if conf.Server.RedisURL != "" {
		fanout, err := net.NewRedisFanout(ctx, conf.Server.RedisURL, conf.Server.Session, logger)
		if err != nil {
			return err
		}
		defer func() { _ = fanout.Close() }()
		opts = append(opts, net.WithFanout(fanout))
		logger.Infof("sharing session %q over redis", conf.Server.Session)
	}

	hub := net.NewHub(logger, opts...)
	hubDone := make(chan error, 1)
	go func() { hubDone <- hub.Run(ctx) }()

	mux := http.NewServeMux()
	mux.Handle(conf.Server.Path, hub)
	servers := []*http.Server{{
		Addr:              ":" + strconv.Itoa(conf.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if conf.Server.MetricsAddr == "" {
		mux.Handle("/metrics", metrics.Handler())
	} else {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              conf.Server.MetricsAddr,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	if conf.Server.Advertise {
		mdnsServer, err := net.Advertise(conf.Server.Port, conf.Server.Session)
		if err != nil {
			logger.Warnf("advertise session: %v", err)
		} else {
			defer func() { _ = mdnsServer.Shutdown() }()
		}
	}

	serveErr := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	link := net.ShareLink(net.OutgoingIP(logger), conf.Server.Port)
	logger.Infof("hosting session %q, share link %s", conf.Server.Session, link)
	fmt.Println(link)

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	for _, srv := range servers {
		if e := srv.Shutdown(shutdownCtx); e != nil {
			logger.Warnf("shutdown %s: %v", srv.Addr, e)
		}
	}
	if err != nil {
		return err
	}
	if e := <-hubDone; e != nil && !errors.Is(e, context.Canceled) {
		return e
	}
	return nil
}
