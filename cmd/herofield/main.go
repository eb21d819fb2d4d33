// Command herofield runs the interactive particle field hero in a terminal
// or renders it offline to PNG frames.
//
// Usage:
//
//	herofield [flags] term     interactive terminal hero (t: toggle theme, q/Esc: quit)
//	herofield [flags] render   write PNG frames from a scripted pointer sweep
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/herofield"
	"github.com/gogpu/herofield/host/headless"
	"github.com/gogpu/herofield/host/term"
	"github.com/gogpu/herofield/internal/config"
)

type options struct {
	configPath string
	envFile    string
	theme      string
	watch      bool
	width      float64
	height     float64
	dpr        float64
	frames     int
	out        string
	logPath    string
	verbose    bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "TOML settings file")
	flag.StringVar(&o.envFile, "env", "", "optional .env file with HEROFIELD_* overrides")
	flag.StringVar(&o.theme, "theme", "", "force theme: light or dark")
	flag.BoolVar(&o.watch, "watch", false, "reload -config on change (term only)")
	flag.Float64Var(&o.width, "width", 800, "render width in CSS px")
	flag.Float64Var(&o.height, "height", 600, "render height in CSS px")
	flag.Float64Var(&o.dpr, "dpr", 0, "device pixel ratio, 0 picks the host default")
	flag.IntVar(&o.frames, "frames", 120, "number of frames to render")
	flag.StringVar(&o.out, "out", "frames", "output directory for render")
	flag.StringVar(&o.logPath, "log", "", "log file (term logs nowhere by default)")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: herofield [flags] term|render\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	mode := flag.Arg(0)

	closeLog, err := setupLogging(o, mode)
	if err != nil {
		log.Fatalf("herofield: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.Loader{Path: o.configPath, EnvFile: o.envFile}
	cfg, err := loadConfig(loader, o.theme)
	if err != nil {
		log.Fatalf("herofield: %v", err)
	}

	switch mode {
	case "term":
		err = runTerm(ctx, o, loader, cfg)
	case "render":
		err = runRender(o, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		closeLog()
		log.Fatalf("herofield: %v", err)
	}
}

func setupLogging(o options, mode string) (func(), error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	var w io.Writer
	closeFn := func() {}
	switch {
	case o.logPath != "":
		f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case mode == "term":
		// The terminal owns stdout and stderr.
		return closeFn, nil
	default:
		w = os.Stderr
	}
	herofield.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}

func loadConfig(loader config.Loader, theme string) (config.Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, err
	}
	if theme != "" {
		cfg.Theme = theme
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// themeSwitch is the theme signal toggled by the 't' key and config reloads.
type themeSwitch struct{ dark bool }

func (t *themeSwitch) Dark() bool { return t.dark }

func runTerm(ctx context.Context, o options, loader config.Loader, cfg config.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	theme := &themeSwitch{dark: cfg.Dark()}
	var (
		host   *term.Host
		handle *herofield.Handle
		hc     herofield.Config
	)
	mount := func(c config.Config) {
		handle.Unmount()
		handle = nil
		next, err := c.Hero()
		if err != nil {
			herofield.Logger().Warn("herofield: bad config", "err", err)
			return
		}
		hc = next
		handle, err = herofield.Mount(host, herofield.WithConfig(hc), herofield.WithTheme(theme))
		if err != nil {
			herofield.Logger().Warn("herofield: animation unavailable, showing static background", "err", err)
			host.PaintStatic(hc.Palettes.Resolve(theme.Dark()).Background)
		}
	}
	refresh := func() {
		if handle != nil {
			handle.Invalidate()
			return
		}
		host.PaintStatic(hc.Palettes.Resolve(theme.Dark()).Background)
	}

	opts := []term.Option{term.WithKeyHandler(func(ev *tcell.EventKey) {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 't' {
			theme.dark = !theme.dark
			refresh()
		}
	})}
	if o.dpr > 0 {
		opts = append(opts, term.WithDPR(o.dpr))
	}
	host, err = term.New(screen, opts...)
	if err != nil {
		return err
	}
	defer host.Close()

	mount(cfg)
	defer func() { handle.Unmount() }()

	if o.watch && o.configPath != "" {
		err := loader.Watch(ctx, 0, func(c config.Config, err error) {
			if err != nil {
				return
			}
			if o.theme != "" {
				c.Theme = o.theme
			}
			host.Post(func() {
				theme.dark = c.Dark()
				mount(c)
			})
		})
		if err != nil {
			return err
		}
	}
	return host.Run(ctx)
}

func runRender(o options, cfg config.Config) error {
	hc, err := cfg.Hero()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", o.out, err)
	}
	dpr := o.dpr
	if dpr <= 0 {
		dpr = 1
	}

	host := headless.New(
		headless.WithSize(o.width, o.height),
		headless.WithDPR(dpr),
		headless.WithSink(headless.PNGSink(o.out)),
	)
	h, err := herofield.Mount(host,
		herofield.WithConfig(hc),
		herofield.WithSettle(hc.SettleSpeed, 0),
	)
	if err != nil {
		return err
	}
	defer h.Unmount()

	// Sweep an ellipse for the first three quarters, then let go.
	sweep := o.frames * 3 / 4
	for i := 0; i < o.frames; i++ {
		if i < sweep {
			a := 2 * math.Pi * float64(i) / float64(max(sweep, 1))
			host.MovePointer(o.width/2+o.width*0.3*math.Cos(a), o.height/2+o.height*0.3*math.Sin(a))
		} else if i == sweep {
			host.LeavePointer()
		}
		host.Advance()
	}

	herofield.Logger().Info("herofield: render done", "frames", host.Presented(), "dir", o.out)
	if host.Presented() != o.frames {
		return errors.New("some frames were not written, see the log")
	}
	return nil
}
