package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/assistant"
	"github.com/salpyeo/dream/pkg/audio"
	"github.com/salpyeo/dream/pkg/cli"
	"github.com/salpyeo/dream/pkg/grounding"
	"github.com/salpyeo/dream/pkg/realtime"
)

// TalkConfig is the configuration of the talk command.
// It can be loaded from a YAML or JSON file using -f.
type TalkConfig struct {
	// Input is the raw PCM16 file to send, "-" for stdin.
	Input string `yaml:"input" json:"input"`

	// Output receives the assistant's reply as 24 kHz mono PCM16.
	Output string `yaml:"output" json:"output"`

	// Realtime paces the input at its playback speed.
	Realtime bool `yaml:"realtime" json:"realtime"`

	// Turns stops after this many finished turns. Default 1.
	Turns int `yaml:"turns" json:"turns"`

	// Wait bounds the wait for a reply after the input ends, in seconds.
	// Default 30.
	Wait int `yaml:"wait" json:"wait"`

	// Select names the grounding file to show after the session.
	Select string `yaml:"select" json:"select"`
}

var talkCfg TalkConfig

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Talk to the assistant",
	Long: `Stream recorded audio to the assistant and play back its reply.

Input is raw 16-bit PCM in the context's input format (24kHz mono unless
configured otherwise); it is resampled to 24kHz mono before sending. The
reply is written as 24kHz mono PCM to the -o file.

Finished turns are saved to the function app when the context configures one.

Examples:
  dream talk --input question.pcm -o reply.pcm
  arecord -f S16_LE -r 24000 -c 1 -t raw | dream talk --input - --realtime
  dream talk -f talk.yaml`,
	RunE: runTalk,
}

func init() {
	talkCmd.Flags().StringVar(&talkCfg.Input, "input", "", "Input PCM16 file, - for stdin")
	talkCmd.Flags().BoolVar(&talkCfg.Realtime, "realtime", false, "Send input at playback speed")
	talkCmd.Flags().IntVar(&talkCfg.Turns, "turns", 1, "Stop after this many turns")
	talkCmd.Flags().IntVar(&talkCfg.Wait, "wait", 30, "Seconds to wait for a reply after the input ends")
	talkCmd.Flags().StringVar(&talkCfg.Select, "select", "", "Grounding file id to show after the session")
}

func runTalk(cmd *cobra.Command, args []string) error {
	ctx, err := getContext()
	if err != nil {
		return err
	}
	cfg := talkCfg
	if inputFile != "" {
		if err := cli.LoadRequest(inputFile, &cfg); err != nil {
			return err
		}
	}
	if cfg.Output == "" {
		cfg.Output = outputFile
	}
	if cfg.Input == "" {
		return fmt.Errorf("input audio is required, use --input")
	}
	if cfg.Turns <= 0 {
		cfg.Turns = 1
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 30
	}

	url, err := ctx.Realtime.URL()
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}
	format := ctx.InputFormat
	if format.SampleRate == 0 {
		format = audio.SessionFormat
	}
	if cfg.Realtime {
		src = &pacedReader{r: src, rate: format.BytesInDuration(time.Second)}
	}

	sink := &countingWriter{w: io.Discard}
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		sink.w = f
	}

	console := cli.NewConsole(os.Stdout)
	obs := newConsoleObserver(console)
	opts := []assistant.Option{assistant.WithObserver(obs)}
	if ctx.HasFuncApp() {
		client, err := ctx.FuncAppClient()
		if err != nil {
			return err
		}
		opts = append(opts, assistant.WithHistory(client))
	}
	if t := ctx.Transcription; t != nil && t.Enabled {
		opts = append(opts, assistant.WithInputTranscription(true))
	}

	recorder := &audio.Recorder{Source: src, Format: format}
	player := &audio.Player{Sink: sink}
	defer player.Close()

	a := assistant.New(recorder, player, opts...)
	ctrl := realtime.NewController(a, append(ctx.RealtimeOptions(), realtime.WithLifecycle(a))...)
	a.Attach(ctrl)
	sock := realtime.NewSocket(url, ctrl)
	ctrl.Attach(sock)

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sockDone := make(chan error, 1)
	go func() { sockDone <- sock.Run(runCtx) }()

	console.Title("dream · " + ctx.Name)
	console.Status("connecting to %s", hostForDisplay(url))
	if err := waitConnected(runCtx, ctrl, 15*time.Second); err != nil {
		cancel()
		<-sockDone
		return err
	}
	console.Status("connected")

	if err := a.Toggle(runCtx); err != nil {
		cancel()
		<-sockDone
		return err
	}

	err = waitTalk(runCtx, recorder, obs, cfg)
	if a.Recording() {
		if stopErr := a.Toggle(context.Background()); stopErr != nil {
			slog.Warn("stop recording", "error", stopErr)
		}
	}
	cancel()
	<-sockDone
	a.Flush()
	a.Wait()
	player.Close()

	printGrounding(console, a, cfg.Select)
	console.Status("reply audio %s (%s)", cli.FormatBytes(sink.n),
		cli.FormatDuration(audio.SessionFormat.Duration(int(sink.n))))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// waitConnected polls the controller until the socket is open.
func waitConnected(ctx context.Context, ctrl *realtime.Controller, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for ctrl.State() != realtime.Connected {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("timeout connecting to the realtime socket")
		case <-tick.C:
		}
	}
	return nil
}

// waitTalk returns after cfg.Turns turns, or when no turn follows the end of
// the input within cfg.Wait seconds.
func waitTalk(ctx context.Context, recorder *audio.Recorder, obs *consoleObserver, cfg TalkConfig) error {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	turns := 0
	var idle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-obs.turns:
			turns++
			if turns >= cfg.Turns {
				return nil
			}
		case <-idle:
			return fmt.Errorf("no reply within %ds after the input ended", cfg.Wait)
		case <-tick.C:
			if idle == nil && !recorder.Recording() {
				slog.Debug("input drained, waiting for reply")
				idle = time.After(time.Duration(cfg.Wait) * time.Second)
			}
		}
	}
}

func printGrounding(console *cli.Console, a *assistant.Assistant, id string) {
	files := a.GroundingFiles()
	if len(files) == 0 {
		return
	}
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, f.ID+"  "+f.Name)
	}
	console.Box("Sources", lines, 72)
	if id == "" {
		return
	}
	if !a.Select(id) {
		console.Error(fmt.Errorf("grounding file %q not found", id))
		return
	}
	f, _ := a.Selected()
	console.Box(f.Name, []string{f.Content}, 0)
}

// consoleObserver prints assistant events. Calls come from the socket
// goroutine and from Toggle.
type consoleObserver struct {
	mu      sync.Mutex
	console *cli.Console
	turns   chan assistant.Turn
}

func newConsoleObserver(c *cli.Console) *consoleObserver {
	return &consoleObserver{console: c, turns: make(chan assistant.Turn, 16)}
}

func (o *consoleObserver) OnRecording(recording bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if recording {
		o.console.Status("recording")
	} else {
		o.console.Status("stopped")
	}
}

func (o *consoleObserver) OnUserTranscript(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.console.User(text)
}

func (o *consoleObserver) OnAssistantTranscriptDelta(delta string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.console.AssistantDelta(delta)
}

func (o *consoleObserver) OnTurn(turn assistant.Turn) {
	select {
	case o.turns <- turn:
	default:
	}
}

func (o *consoleObserver) OnGroundingFiles(files []grounding.File) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.console.Status("%d sources", len(files))
}

func (o *consoleObserver) OnError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.console.Error(err)
}

var _ assistant.Observer = (*consoleObserver)(nil)

// pacedReader limits reads to rate bytes per second.
type pacedReader struct {
	r     io.Reader
	rate  int
	start time.Time
	n     int
}

func (p *pacedReader) Read(b []byte) (int, error) {
	if p.start.IsZero() {
		p.start = time.Now()
	}
	due := p.start.Add(time.Duration(p.n) * time.Second / time.Duration(p.rate))
	if d := time.Until(due); d > 0 {
		time.Sleep(d)
	}
	n, err := p.r.Read(b)
	p.n += n
	return n, err
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
