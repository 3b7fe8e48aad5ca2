package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/iolink/pkg/config"
	fx "github.com/robotalks/iolink/pkg/framework"
	"github.com/robotalks/iolink/pkg/l0/link"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool
	// FlushTimeout bounds waiting for queued commands in evaluation mode.
	FlushTimeout time.Duration

	Shell  *ishell.Shell
	Config *config.Config
	Loop   *LinkLoop

	// LinkFactory creates the Link for a port, Config.NewLink if nil.
	LinkFactory func(port string) (*link.Link, error)
}

// LinkLoop is a running loop driving an open Link.
type LinkLoop struct {
	Ctx    context.Context
	Cancel func()
	Link   *link.Link
	Loop   *fx.Loop
}

const (
	shellKey       = "$shell"
	closedPrompt   = "[none] > "
	defaultTimeout = 3 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive:  !evalOnly,
		OutputJSON:   outputJSON,
		FlushTimeout: defaultTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.setPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// LinkFrom gets the open Link, nil if none.
func LinkFrom(c *ishell.Context) *link.Link {
	if s := ShellFrom(c); s.Loop != nil {
		return s.Loop.Link
	}
	return nil
}

// MustBeOpen wraps command func requiring an open Link.
func MustBeOpen(fn func(c *ishell.Context, l *link.Link)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		l := LinkFrom(c)
		if l == nil {
			c.Err(fmt.Errorf("not open"))
			return
		}
		fn(c, l)
	}
}

// Done prints the result of a command which has no output.
func Done(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	if ShellFrom(c).OutputJSON {
		c.Println(`{"ok":true}`)
		return
	}
	c.Println("OK")
}

// Print prints a value, as JSON if requested.
func Print(c *ishell.Context, val interface{}) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(val)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(val)
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens a Link on port and starts ticking it. The current Link is
// closed first as serial ports can't be opened twice.
func (s *Shell) Open(port string) error {
	s.Close()
	l, err := s.newLink(port)
	if err != nil {
		return err
	}
	linkLoop := &LinkLoop{Link: l}
	linkLoop.Ctx, linkLoop.Cancel = context.WithCancel(context.Background())
	linkLoop.Loop = fx.NewLoop().WithInterval(s.Config.Tick).Add(l)
	s.Loop = linkLoop
	go linkLoop.Loop.Run(linkLoop.Ctx)
	s.setPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

func (s *Shell) newLink(port string) (*link.Link, error) {
	if s.LinkFactory != nil {
		return s.LinkFactory(port)
	}
	conf := *s.Config
	conf.Port = port
	return conf.NewLink()
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Close closes current Link.
func (s *Shell) Close() {
	if s.Loop != nil {
		s.Loop.Cancel()
		if err := s.Loop.Link.Close(); err != nil {
			glog.Warningf("close %s: %v", s.Loop.Link.Name(), err)
		}
		s.Loop = nil
		s.setPrompt(closedPrompt)
	}
}

// Flush waits until the device is connected and all queued bytes are
// written.
func (s *Shell) Flush(timeout time.Duration) error {
	if s.Loop == nil {
		return nil
	}
	l := s.Loop.Link
	deadline := time.Now().Add(timeout)
	for !l.Connected() || l.Pending() > 0 {
		if time.Now().After(deadline) {
			if !l.Connected() {
				return fmt.Errorf("%s: no handshake from device", l.Name())
			}
			return fmt.Errorf("%s: %d bytes not written", l.Name(), l.Pending())
		}
		time.Sleep(s.Config.Tick)
	}
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		if err := s.Open(s.Config.Port); err != nil {
			glog.Exitf("open %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		if err := s.Flush(s.FlushTimeout); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// OpenCmd opens a Link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			port := s.Config.Port
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if port == "" {
				c.Err(fmt.Errorf("PORT required"))
				return
			}
			if err := s.Open(port); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current Link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// StatusCmd shows the connection state and the output queue depth.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context, l *link.Link) {
			Print(c, struct {
				Port    string `json:"port"`
				State   string `json:"state"`
				Pending int    `json:"pending"`
			}{l.Name(), l.State().String(), l.Pending()})
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	if err := config.Load(); err != nil {
		glog.Exit(err)
	}
	New(config.Default()).WithAutoOpen(true).Run(flag.Args()...)
}
