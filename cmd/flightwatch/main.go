package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/skybridge-va/flightwatch/internal/analytics"
	"github.com/skybridge-va/flightwatch/internal/api"
	"github.com/skybridge-va/flightwatch/internal/circuitbreaker"
	"github.com/skybridge-va/flightwatch/internal/config"
	"github.com/skybridge-va/flightwatch/internal/digest"
	"github.com/skybridge-va/flightwatch/internal/ledger"
	"github.com/skybridge-va/flightwatch/internal/metrics"
	"github.com/skybridge-va/flightwatch/internal/newsky"
	"github.com/skybridge-va/flightwatch/internal/notify"
	"github.com/skybridge-va/flightwatch/internal/poller"
	"github.com/skybridge-va/flightwatch/internal/presence"
	"github.com/skybridge-va/flightwatch/internal/transport/channel"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`flightwatch - Discord flight status bot for Newsky virtual airlines

Usage:
  flightwatch <command>

Commands:
  serve      Start the poller and notification dispatcher
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  NEWSKY_API_KEY            Newsky airline API key (required)
  NEWSKY_BASE_URL           Newsky API base URL (default: "https://newsky.app/api/airline-api")
  DISCORD_TOKEN             Discord bot token (required)
  DISCORD_CHANNEL_ID        Target text channel ID (required)
  REDIS_ADDR                Redis address for analytics counters (optional)
  HTTP_ADDR                 Status HTTP server address (default: ":8080")

  POLL_INTERVAL             Poll cycle interval (default: "25s")
  FETCH_TIMEOUT             Upstream request timeout (default: "10s")
  RECENT_COUNT              Recently closed flights per cycle (default: "5")

  LEDGER_PATH               Ledger file path (default: "flights.json")
  LEDGER_HIGH_WATER         Eviction trigger size (default: "100")
  LEDGER_LOW_WATER          Post-eviction size (default: "50")

  EVENTBUS_BUFFER_SIZE      Event channel buffer (default: "100")
  CIRCUIT_BREAKER_THRESHOLD Consecutive failures before opening (default: "5", 0 disables)
  CIRCUIT_BREAKER_COOLDOWN  Open state duration (default: "2m")

  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")
  DISPATCHER_DRAIN_TIMEOUT  Notification drain timeout (default: "30s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_ADDR              Metrics server address (default: ":9090")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")

  DIGEST_CRON               Daily summary schedule, 5-field cron (optional)
  DIGEST_TIMEZONE           Timezone for the digest schedule (default: "UTC")
  PRESENCE_ENABLED          Show active flight count in bot status (default: "true")
  PRESENCE_INTERVAL         Presence refresh interval (default: "1m")`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	// Connect to Discord
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create discord session: %v\n", err)
		return exitRuntimeError
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	if err := session.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to discord: %v\n", err)
		return exitRuntimeError
	}
	defer session.Close()

	// Fail fast on a bad channel rather than discovering it on the first send.
	if err := notify.ResolveChannel(session, cfg.DiscordChannelID); err != nil {
		fmt.Fprintf(os.Stderr, "channel check failed: %v\n", err)
		return exitRuntimeError
	}
	log.Printf("flightwatch: connected to discord (channel=%s)", cfg.DiscordChannelID)

	// Load the ledger; missing or corrupt files start empty.
	store := ledger.NewStore(cfg.LedgerPath)
	book := store.Load(cfg.LedgerHighWater, cfg.LedgerLowWater)
	log.Printf("flightwatch: ledger loaded (path=%s, flights=%d)", cfg.LedgerPath, book.Len())

	client := newsky.NewClient(cfg.NewskyAPIKey,
		newsky.WithBaseURL(cfg.NewskyBaseURL),
		newsky.WithTimeout(cfg.FetchTimeout),
	)

	// Initialize metrics sink (optional)
	var metricsSink *metrics.PrometheusSink
	var metricsServer *http.Server

	if cfg.MetricsEnabled {
		metricsSink = metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		log.Printf("flightwatch: metrics enabled (addr=%s, path=%s)", cfg.MetricsAddr, cfg.MetricsPath)

		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("flightwatch: metrics server listening on %s", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("flightwatch: metrics server error: %v", err)
			}
		}()
	} else {
		log.Println("flightwatch: METRICS_ENABLED not set; metrics disabled")
	}

	// Create event bus with optional metrics
	var busOpts []channel.Option
	if metricsSink != nil {
		busOpts = append(busOpts, channel.WithMetrics(metricsSink))
	}
	bus := channel.NewEventBus(cfg.EventBusBufferSize, busOpts...)

	sender := notify.NewDiscordSender(session, cfg.DiscordChannelID)

	// The memory sink always feeds the digest; Redis is layered on top
	// when configured.
	memorySink := analytics.NewMemorySink()
	var analyticsSink notify.AnalyticsSink = memorySink
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		analyticsSink = analytics.NewMultiSink(memorySink, analytics.NewRedisSink(redisClient))
		log.Printf("flightwatch: analytics enabled (redis=%s)", cfg.RedisAddr)
	} else {
		log.Println("flightwatch: REDIS_ADDR not set; redis analytics disabled")
	}

	disp := notify.New(sender).
		WithAnalytics(analyticsSink).
		WithDrainTimeout(cfg.DispatcherDrainTimeout)
	if metricsSink != nil {
		disp = disp.WithMetrics(metricsSink)
	}

	watch := poller.New(
		poller.Config{Interval: cfg.PollInterval, RecentCount: cfg.RecentCount},
		client,
		bus,
		book,
		store,
	)
	if metricsSink != nil {
		watch = watch.WithMetrics(metricsSink)
	}
	if cfg.CircuitBreakerThreshold > 0 {
		watch = watch.WithBreaker(circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown))
		log.Printf("flightwatch: circuit breaker enabled (threshold=%d, cooldown=%s)",
			cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown)
	}

	// Start status HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewHandler(watch),
	}
	go func() {
		log.Printf("flightwatch: http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("flightwatch: http server error: %v", err)
		}
	}()

	// Use separate contexts for poller, presence, and dispatcher to enable ordered shutdown.
	pollerCtx, cancelPoller := context.WithCancel(context.Background())
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())

	var pollerWg sync.WaitGroup
	var dispatcherWg sync.WaitGroup
	var presenceWg sync.WaitGroup
	var cancelPresence context.CancelFunc

	pollerWg.Add(1)
	go func() {
		defer pollerWg.Done()
		watch.Run(pollerCtx)
	}()

	dispatcherWg.Add(1)
	go func() {
		defer dispatcherWg.Done()
		disp.Run(dispatcherCtx, bus.Channel())
	}()

	// Start daily digest if scheduled
	var dailyDigest *digest.Digest
	if cfg.DigestCron != "" {
		dailyDigest, err = digest.New(cfg.DigestCron, cfg.DigestTimezone, memorySink, sender)
		if err != nil {
			fmt.Fprintf(os.Stderr, "digest setup failed: %v\n", err)
			cancelPoller()
			cancelDispatcher()
			return exitInvalidConfig
		}
		dailyDigest.Start()
		log.Printf("flightwatch: digest enabled (cron=%q, tz=%s)", cfg.DigestCron, cfg.DigestTimezone)
	} else {
		log.Println("flightwatch: DIGEST_CRON not set; digest disabled")
	}

	// Start presence updater if enabled
	if cfg.PresenceEnabled {
		var presenceCtx context.Context
		presenceCtx, cancelPresence = context.WithCancel(context.Background())
		upd := presence.New(session, watch.ActiveFlights, cfg.PresenceInterval)
		presenceWg.Add(1)
		go func() {
			defer presenceWg.Done()
			upd.Run(presenceCtx)
		}()
	} else {
		log.Println("flightwatch: PRESENCE_ENABLED=false; presence disabled")
	}

	log.Printf("flightwatch: started (interval=%s, http=%s)", cfg.PollInterval, cfg.HTTPAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("flightwatch: received signal %v, shutting down", received)

	// Phase 1: Stop poller (no new events emitted)
	log.Println("flightwatch: stopping poller...")
	cancelPoller()
	pollerWg.Wait()
	log.Println("flightwatch: poller stopped")

	// Phase 2: Stop digest and presence (no more ad-hoc sends or status writes)
	if dailyDigest != nil {
		dailyDigest.Stop()
	}
	if cancelPresence != nil {
		cancelPresence()
		presenceWg.Wait()
	}

	// Phase 3: Stop dispatcher (will drain buffered events before returning)
	log.Println("flightwatch: stopping dispatcher (draining events)...")
	cancelDispatcher()
	dispatcherWg.Wait()
	log.Println("flightwatch: dispatcher stopped")

	// Phase 4: Stop HTTP server with graceful shutdown
	log.Println("flightwatch: stopping http server...")
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		log.Printf("flightwatch: http server shutdown error: %v", err)
	}
	log.Println("flightwatch: http server stopped")

	// Phase 5: Stop metrics server if running (with same timeout)
	if metricsServer != nil {
		log.Println("flightwatch: stopping metrics server...")
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			log.Printf("flightwatch: metrics server shutdown error: %v", err)
		}
		log.Println("flightwatch: metrics server stopped")
	}

	log.Println("flightwatch: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("flightwatch version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
