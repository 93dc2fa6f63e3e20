package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go-mines/internal/command"
	"go-mines/internal/config"
	"go-mines/internal/game"
	"go-mines/internal/logging"
	"go-mines/internal/state"
	"go-mines/internal/timer"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const tickInterval = 250 * time.Millisecond

type LocalState struct {
	Session *game.Session
	Input   textinput.Model
	Theme   config.Theme
	Log     logrus.FieldLogger

	// quit is set by the exit collaborator; Update turns it into tea.Quit.
	quit    *atomic.Bool
	ticking bool
	tickSeq int
}

// TickMsg carries the round it was scheduled for. The session drops ticks
// that outlive their round.
type TickMsg struct {
	Round uuid.UUID
	Seq   int
	At    time.Time
}

func tickCmd(round uuid.UUID, seq int) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Round: round, Seq: seq, At: t}
	})
}

func initialModel(cfg *config.Config, layoutPaths []string, log logrus.FieldLogger) (*LocalState, error) {
	var layouts []game.Layout
	if len(layoutPaths) > 0 {
		var err error
		layouts, err = game.LoadLayouts(layoutPaths)
		if err != nil {
			return nil, err
		}
		if len(layouts) == 0 {
			return nil, fmt.Errorf("no layouts found in provided paths")
		}
		log.WithField("count", len(layouts)).Info("layouts loaded")
	}

	quit := &atomic.Bool{}
	opts := state.GameOptions{
		Size:      cfg.Game.Size,
		Mines:     cfg.Game.Mines,
		TimeLimit: cfg.Game.TimeLimit,
		Seed:      cfg.Game.Seed,
	}
	sess, err := game.NewSession(opts, layouts, state.Deps{
		Log:  log,
		Exit: func() { quit.Store(true) },
	})
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "start, sb2, fd4, pause, quit"
	ti.CharLimit = 32
	ti.Focus()

	return &LocalState{
		Session: sess,
		Input:   ti,
		Theme:   cfg.Theme,
		Log:     log,
		quit:    quit,
	}, nil
}

func (s *LocalState) Init() tea.Cmd {
	return textinput.Blink
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case TickMsg:
		if !s.ticking || msg.Seq != s.tickSeq {
			return s, nil
		}
		s.ticking = false
		if s.Session.Tick(msg.Round) {
			s.Log.WithField("round", msg.Round).Debug("countdown expired")
		}
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			_ = s.Session.Submit("quit")
		case tea.KeyEnter:
			line := s.Input.Value()
			s.Input.Reset()
			if command.IsExitRequested(line) {
				s.Log.WithField("input", line).Debug("exit typed")
			}
			_ = s.Session.Submit(line)
		case tea.KeyCtrlN:
			if s.Session.Snapshot().Phase == state.Init {
				_ = s.Session.Submit("start")
			} else {
				_ = s.Session.Submit("restart")
			}
		case tea.KeyCtrlP:
			if s.Session.Snapshot().Phase == state.Paused {
				_ = s.Session.Submit("resume")
			} else {
				_ = s.Session.Submit("pause")
			}
		case tea.KeyEsc:
			_ = s.Session.Submit("cancel")
		default:
			var cmd tea.Cmd
			s.Input, cmd = s.Input.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		code, ok := mouseCodes[msg.Button]
		if !ok {
			break
		}
		snap := s.Session.Snapshot()
		if !snap.HasBoard() {
			break
		}
		if x, y, ok := s.cellAt(msg.X, msg.Y, snap.Size); ok {
			_ = s.Session.SubmitCode(code, x, y)
		}
	default:
		var cmd tea.Cmd
		s.Input, cmd = s.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	if s.quit.Load() {
		return s, tea.Quit
	}
	cmds = append(cmds, s.scheduleTick())
	return s, tea.Batch(cmds...)
}

// scheduleTick keeps exactly one tick in flight while the countdown of the
// current round runs.
func (s *LocalState) scheduleTick() tea.Cmd {
	snap := s.Session.Snapshot()
	if snap.Timer != timer.Started {
		s.ticking = false
		return nil
	}
	if s.ticking {
		return nil
	}
	s.ticking = true
	s.tickSeq++
	return tickCmd(snap.Round, s.tickSeq)
}

type timerFlag int

func (t *timerFlag) String() string {
	if *t == -1 {
		return "config"
	}
	return fmt.Sprint(int(*t))
}

func (t *timerFlag) Set(s string) error {
	if s == "true" {
		*t = -1 // Keep the configured limit
		return nil
	}
	if s == "false" {
		*t = 0 // Disabled
		return nil
	}

	// Try parsing as simple integer first
	if val, err := strconv.Atoi(s); err == nil {
		if val < 0 {
			return fmt.Errorf("invalid timer value: %s", s)
		}
		*t = timerFlag(val)
		return nil
	}

	// Try parsing MM:SS
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		min, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 == nil && err2 == nil && min >= 0 && sec >= 0 && sec < 60 {
			*t = timerFlag(min*60 + sec)
			return nil
		}
	}

	return fmt.Errorf("invalid timer format: %s (use 'MM:SS' or seconds)", s)
}

func (t *timerFlag) IsBoolFlag() bool { return true }

type strictIntFlag int

func (i *strictIntFlag) String() string {
	return fmt.Sprint(int(*i))
}

func (i *strictIntFlag) Set(s string) error {
	if s == "true" {
		return fmt.Errorf("value required (format: -flag=value)")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = strictIntFlag(v)
	return nil
}

func (i *strictIntFlag) IsBoolFlag() bool { return true }

type cliOptions struct {
	timer   timerFlag
	noTimer bool
	size    strictIntFlag
	mines   strictIntFlag
	seed    strictIntFlag
	verbose bool
	config  string
}

// apply overrides the loaded config with whatever was given on the
// command line and revalidates it.
func (o cliOptions) apply(cfg *config.Config) error {
	if o.timer >= 0 {
		cfg.Game.TimeLimit = int(o.timer)
	}
	if o.noTimer {
		cfg.Game.TimeLimit = 0
	}
	if o.size > 0 {
		cfg.Game.Size = int(o.size)
		if o.mines < 0 && cfg.Game.Mines >= cfg.Game.Size*cfg.Game.Size {
			// Keep the default density on smaller boards.
			cfg.Game.Mines = cfg.Game.Size * cfg.Game.Size / 4
		}
	}
	if o.mines >= 0 {
		cfg.Game.Mines = int(o.mines)
	}
	if o.seed != 0 {
		cfg.Game.Seed = int64(o.seed)
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg.Validate()
}

func main() {
	// defaults
	opts := cliOptions{timer: -1, size: -1, mines: -1}

	// Timer flags
	flag.Var(&opts.timer, "timer", "Set countdown timer (e.g. 90 or 1:30).")
	flag.Var(&opts.timer, "t", "Set countdown timer (shorthand)")

	flag.BoolVar(&opts.noTimer, "notimer", false, "Disable the timer")
	flag.BoolVar(&opts.noTimer, "nt", false, "Disable the timer (shorthand)")

	// Board flags
	flag.Var(&opts.size, "size", "Board size (2-8)")
	flag.Var(&opts.size, "s", "Board size (shorthand)")

	flag.Var(&opts.mines, "mines", "Number of mines")
	flag.Var(&opts.mines, "m", "Number of mines (shorthand)")

	flag.Var(&opts.seed, "seed", "Random seed for board generation")

	flag.BoolVar(&opts.verbose, "verbose", false, "Log at debug level")
	flag.BoolVar(&opts.verbose, "v", false, "Log at debug level (shorthand)")

	flag.StringVar(&opts.config, "config", "", "Read this config file instead of the XDG one")
	flag.StringVar(&opts.config, "c", "", "Config file (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [layout files or directories...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "    -t, --timer[=value]    Set countdown timer (e.g. 90 or 1:30). Default 3:00.\n")
		fmt.Fprintf(os.Stderr, "   -nt, --notimer          Disable the timer\n")
		fmt.Fprintf(os.Stderr, "    -s, --size=N           Board size, 2 to 8\n")
		fmt.Fprintf(os.Stderr, "    -m, --mines=N          Number of mines\n")
		fmt.Fprintf(os.Stderr, "        --seed=N           Random seed for board generation\n")
		fmt.Fprintf(os.Stderr, "    -c, --config=PATH      Config file\n")
		fmt.Fprintf(os.Stderr, "    -v, --verbose          Log at debug level\n")
		fmt.Fprintf(os.Stderr, "    -h, --help             Show this help message\n")
	}

	flag.Parse()

	var cfg *config.Config
	var err error
	if opts.config != "" {
		cfg, err = config.Load(opts.config)
	} else {
		cfg, err = config.InitConfig()
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Non-flag arguments take precedence over configured layouts.
	layoutPaths := flag.Args()
	if len(layoutPaths) == 0 {
		layoutPaths = cfg.Game.Layouts
	}

	model, err := initialModel(cfg, layoutPaths, log)
	if err != nil {
		fmt.Printf("Error initializing model: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error starting the program: %v\n", err)
	}

	fmt.Println(model.Summary())
}
