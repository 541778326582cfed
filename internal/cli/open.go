package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/princebabou/wishCraft/internal/client"
	"github.com/princebabou/wishCraft/internal/models"
	"github.com/princebabou/wishCraft/internal/render"
	"github.com/princebabou/wishCraft/internal/reveal"
)

type openOptions struct {
	server    string
	audio     string
	fps       int
	threshold float64
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &openOptions{}

	cmd := &cobra.Command{
		Use:   "open <slug>",
		Short: "Open a card in the terminal and blow out its candles",
		Long: `Open fetches a card and draws it with lit candles. The message is
revealed once the microphone picks up a loud enough blow.

Audio is raw signed 16-bit little-endian mono PCM, read from stdin by
default or from the file given with --audio.`,
		Example: `  arecord -q -f S16_LE -c 1 -r 44100 | wishcraft open alice-30
  wishcraft open alice-30 --audio /tmp/mic.fifo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOpen(ctx, rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "API root, default $BASE_URL or http://localhost:$PORT")
	cmd.Flags().StringVar(&opts.audio, "audio", "-", "PCM source (- for stdin)")
	cmd.Flags().IntVar(&opts.fps, "fps", reveal.DefaultFPS, "microphone samples per second")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", reveal.BlowThreshold, "mean loudness (0-255) that counts as a blow")

	return cmd
}

func runOpen(ctx context.Context, rootOpts *RootOptions, opts *openOptions, slug string, cmd *cobra.Command) error {
	if opts.fps <= 0 {
		return fmt.Errorf("invalid --fps %d: must be positive", opts.fps)
	}

	server := opts.server
	if server == "" {
		server = rootOpts.serverURL()
	}
	c, err := client.New(server)
	if err != nil {
		return err
	}

	stdin := cmd.InOrStdin()
	audio, closeAudio, err := openAudio(opts.audio, stdin)
	if err != nil {
		return err
	}
	defer closeAudio()
	// Enter starts listening only when stdin is a terminal we are not
	// reading audio from.
	interactive := opts.audio != "-" && isTerminal(stdin)

	out := cmd.OutOrStdout()
	r := render.New(out)
	sched := reveal.NewTickerScheduler(opts.fps)
	defer sched.Stop()

	var ctrl *reveal.Controller
	ctrl = reveal.NewController(reveal.NewPCMDevice(audio), sched,
		reveal.WithThreshold(opts.threshold),
		reveal.WithLogger(log.Logger),
		reveal.WithStateHook(func(_, to reveal.State) {
			fmt.Fprintln(out)
			if err := r.Card(ctrl.Card(), to); err != nil {
				log.Warn().Err(err).Msg("failed to render card")
			}
		}),
	)
	defer ctrl.Close()

	if err := r.Card(nil, reveal.StateLoading); err != nil {
		return err
	}
	err = ctrl.Load(ctx, func(ctx context.Context) (*models.Card, error) {
		return c.GetCard(ctx, slug)
	})
	if err != nil {
		return fmt.Errorf("open %q: %w", slug, err)
	}

	if interactive {
		fmt.Fprint(out, "\nPress Enter to start blowing...")
		if err := waitForEnter(ctx, stdin); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}

	if err := ctrl.Listen(ctx); err != nil {
		return err
	}

	select {
	case <-ctrl.Revealed():
	case <-ctx.Done():
		log.Info().Str("slug", slug).Msg("stopped before the candles were blown out")
	}
	return nil
}

// openAudio returns the PCM source named by path and a func that closes it.
func openAudio(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open audio: %w", err)
		}
		return f, f.Close, nil
	}
	if isTerminal(stdin) {
		return nil, nil, errors.New("no audio on stdin: pipe raw PCM in, e.g. arecord -q -f S16_LE -c 1 -r 44100 | wishcraft open <slug>")
	}
	return stdin, func() error { return nil }, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func waitForEnter(ctx context.Context, in io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
