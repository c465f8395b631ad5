// Package main provides the streaming client entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bytebeats/internal/app/guard"
	"github.com/osa030/bytebeats/internal/app/notification"
	"github.com/osa030/bytebeats/internal/app/playback"
	"github.com/osa030/bytebeats/internal/app/reconnect"
	"github.com/osa030/bytebeats/internal/app/session"
	"github.com/osa030/bytebeats/internal/app/session/state"
	"github.com/osa030/bytebeats/internal/infra/config"
	"github.com/osa030/bytebeats/internal/infra/logger"
	"github.com/osa030/bytebeats/internal/infra/media"
	"github.com/osa030/bytebeats/internal/infra/transport"
)

var (
	app        = kingpin.New("bytebeats", "bytebeats streaming client")
	configPath = app.Flag("config", "Path to config file (built-in defaults if omitted)").String()
	host       = app.Flag("host", "Override the server host").String()
	secure     = app.Flag("secure", "Use the encrypted socket").Bool()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: from config)").String()
	noAudio    = app.Flag("no-audio", "Disable audio output").Bool()

	// list-guards command
	listGuardsCmd = app.Command("list-guards", "List available command guards and exit")
)

func init() {
	app.Command("play", "Connect and start the interactive client (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listGuardsCmd.FullCommand() {
		printGuards()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Client error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *secure {
		cfg.Server.Scheme = config.SchemeSecure
	}
	if *noAudio {
		cfg.Playback.Backend = media.BackendNull
	}
	return cfg, cfg.Validate()
}

// run wires the client together and blocks until the session ends.
func run(cfg *config.Config) error {
	player, err := media.New(cfg.Playback.Backend)
	if err != nil {
		return errors.Wrap(err, "failed to open audio output")
	}

	ctrl := playback.NewController(player, playback.Config{
		SampleInterval: cfg.Playback.SampleInterval(),
	})

	scheme, _ := transport.ParseScheme(cfg.Server.Scheme)
	endpoint := transport.Endpoint{
		Host:   cfg.Server.Host,
		Scheme: scheme,
		Port:   cfg.Server.Port(),
		Path:   cfg.Server.Path,
	}

	mode := reconnect.ParseMode(cfg.Reconnect.Mode)

	mgr, err := session.NewManager(session.Options{
		Endpoint: endpoint,
		Reconnect: reconnect.Config{
			Mode:        mode,
			Delay:       cfg.Reconnect.Delay(),
			MaxAttempts: cfg.Reconnect.MaxAttempts,
		},
	}, ctrl)
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}

	connector := transport.NewConnector(mgr.Handler(), transport.Options{
		DialTimeout:        cfg.Server.DialTimeout(),
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
	})
	mgr.SetTransport(connector)

	statusStream := notification.NewChannelStream(16)
	subID := mgr.Notifications().Subscribe(statusStream)
	defer mgr.Notifications().Unsubscribe(subID)
	go printStatus(os.Stdout, statusStream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := mgr.Run(ctx); err != nil {
			zlog.Error().Msgf("Session loop stopped: %v", err)
		}
	}()

	zlog.Info().Msgf("Connecting: url=%s", endpoint.URL())
	if cfg.Auth.HasCredentials() {
		if err := mgr.Login(cfg.Auth.Username, cfg.Auth.Password); err != nil {
			zlog.Warn().Msgf("Startup credentials rejected: %v", err)
			_ = mgr.Connect()
		}
	} else {
		_ = mgr.Connect()
	}

	quitCh := make(chan struct{})
	go func() {
		readCommands(os.Stdin, os.Stdout, mgr)
		close(quitCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-quitCh:
	case <-mgr.Done():
	}

	if err := mgr.Close(); err != nil && !errors.Is(err, session.ErrSessionClosed) {
		zlog.Error().Msgf("Failed to close session: %v", err)
	}
	statusStream.Close()

	zlog.Info().Msg("Client stopped")
	return nil
}

// readCommands runs the interactive command loop until EOF or quit.
func readCommands(in io.Reader, out io.Writer, mgr *session.Manager) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "login":
			if len(fields) != 3 {
				fmt.Fprintln(out, "usage: login <username> <password>")
				continue
			}
			err = mgr.Login(fields[1], fields[2])
		case "play":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: play <track>")
				continue
			}
			err = mgr.Play(strings.Join(fields[1:], " "))
		case "pause":
			err = mgr.Pause()
		case "resume":
			err = mgr.Resume()
		case "toggle":
			err = mgr.TogglePause()
		case "mute":
			err = mgr.ToggleMute()
		case "next":
			err = mgr.Next()
		case "connect":
			err = mgr.Connect()
		case "disconnect":
			err = mgr.Disconnect()
		case "list":
			printCatalog(out, mgr.Status())
		case "status":
			fmt.Fprintln(out, formatStatus(mgr.Status()))
		case "quit", "exit":
			return
		case "help":
			fmt.Fprintln(out, "commands: login, play, pause, resume, toggle, mute, next, list, connect, disconnect, status, quit")
		default:
			fmt.Fprintf(out, "unknown command: %s\n", fields[0])
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if errors.Is(err, session.ErrSessionClosed) {
				return
			}
		}
	}
}

// statusKey holds the fields whose change is worth a new status line.
// Progress ticks alone are only shown on request.
type statusKey struct {
	phase     state.Phase
	current   string
	playback  playback.State
	muted     bool
	manual    bool
	duration  bool
	lastError string
}

func printStatus(out io.Writer, s *notification.ChannelStream) {
	var last statusKey
	for {
		select {
		case status := <-s.C():
			key := statusKey{
				phase:     status.Phase,
				current:   status.Current,
				playback:  status.Playback.State,
				muted:     status.Playback.Muted,
				manual:    status.Playback.NeedsManualPlay,
				duration:  status.Playback.DurationKnown,
				lastError: status.Session.LastError,
			}
			if key == last {
				continue
			}
			last = key
			fmt.Fprintln(out, formatStatus(status))
		case <-s.Done():
			return
		}
	}
}

// formatStatus renders a one-line status display.
func formatStatus(s state.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", s.Phase)
	if s.Session.Username != "" {
		fmt.Fprintf(&b, " user=%s", s.Session.Username)
	}
	if s.Current != "" {
		fmt.Fprintf(&b, " track=%s", s.Current)
	}
	fmt.Fprintf(&b, " %s %s", s.Playback.State, s.Playback.Clock())
	if s.Playback.Muted {
		b.WriteString(" (muted)")
	}
	if s.Playback.NeedsManualPlay {
		b.WriteString(" (press resume)")
	}
	if s.Session.LastError != "" {
		fmt.Fprintf(&b, " error=%q", s.Session.LastError)
	}
	return b.String()
}

func printCatalog(out io.Writer, s state.Status) {
	if len(s.Catalog) == 0 {
		fmt.Fprintln(out, "no tracks")
		return
	}
	for _, name := range s.Catalog {
		marker := " "
		if name == s.Current {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %s\n", marker, name)
	}
}

// printGuards prints available guards.
func printGuards() {
	fmt.Println("Available Guards:")
	for _, name := range guard.RegisteredNames() {
		g := guard.GetRegistered()[name]()
		codes := strings.Join(g.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", g.Name(), g.Description(), codes)
	}
}
