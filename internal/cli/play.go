package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gokatarajesh/timed-trivia/internal/leaderboard"
	"github.com/gokatarajesh/timed-trivia/internal/play"
	"github.com/gokatarajesh/timed-trivia/internal/question"
	"github.com/gokatarajesh/timed-trivia/internal/quiz"
	"github.com/gokatarajesh/timed-trivia/internal/quiz/scoring"
)

type playOptions struct {
	Name         string
	Scoring      scoring.Config
	TickInterval time.Duration
	Logger       zerolog.Logger
}

func newPlayCmd(rt *rootState) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(),
				question.DefaultBank(),
				leaderboard.NewService(leaderboard.DefaultCompetitors(), rt.logger),
				playOptions{
					Name: name,
					Scoring: scoring.Config{
						DefaultPoints: rt.cfg.Quiz.DefaultPoints,
						MaxTimeBonus:  rt.cfg.Quiz.MaxTimeBonus,
					},
					TickInterval: rt.cfg.Quiz.TickInterval,
					Logger:       rt.logger,
				})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (generated when empty)")
	return cmd
}

// runPlay drives one quiz controller from line input on in and renders to out.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, bank *question.Bank, lb *leaderboard.Service, opts playOptions) error {
	player := quiz.NewPlayer(uuid.NewString(), play.PlayerName(opts.Name))
	machine := quiz.NewMachine(bank, quiz.MachineOptions{
		Scoring: opts.Scoring,
		Player:  player,
		Logger:  opts.Logger,
	})
	ctrl := quiz.NewController(machine, quiz.ControllerOptions{
		TickInterval: opts.TickInterval,
		Logger:       opts.Logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })

	// Not part of the group: a blocked read on stdin cannot be interrupted.
	lines := make(chan string)
	go scanLines(gctx, in, lines)

	t := &terminal{out: out, ctrl: ctrl, bank: bank, leaderboard: lb}
	t.welcome(player)
	err := t.loop(gctx, events, lines)

	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

type terminal struct {
	out         io.Writer
	ctrl        *quiz.Controller
	bank        *question.Bank
	leaderboard *leaderboard.Service
}

func (t *terminal) loop(ctx context.Context, events <-chan quiz.Event, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			t.render(ev)
		case line, ok := <-lines:
			if !ok {
				t.drain(events)
				return nil
			}
			quit, err := t.handle(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				t.drain(events)
				fmt.Fprintln(t.out, "Bye!")
				return nil
			}
		}
	}
}

// drain renders events already published by completed commands.
func (t *terminal) drain(events <-chan quiz.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.render(ev)
		default:
			return
		}
	}
}

func (t *terminal) handle(ctx context.Context, line string) (bool, error) {
	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true, nil
	}

	snap, err := t.ctrl.Snapshot(ctx)
	if err != nil {
		return false, err
	}

	switch snap.Phase {
	case quiz.PhaseNotStarted:
		_, err = t.ctrl.Start(ctx)
	case quiz.PhaseCompleted:
		switch strings.ToLower(line) {
		case "n", "no":
			return true, nil
		case "", "y", "yes":
			_, err = t.ctrl.Start(ctx)
		default:
			fmt.Fprintln(t.out, "Play again? [y/n]")
		}
	default:
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > question.OptionCount {
			fmt.Fprintf(t.out, "Enter a number from 1 to %d.\n", question.OptionCount)
			return false, nil
		}
		_, err = t.ctrl.Answer(ctx, snap.State.CurrentQuestion, n-1)
	}
	return false, err
}

func (t *terminal) welcome(p quiz.Player) {
	fmt.Fprintf(t.out, "Welcome, %s! %d questions, answer fast for a bigger bonus.\n", p.Name, t.bank.Len())
	fmt.Fprintln(t.out, "Press Enter to start, type 1-4 to answer, q to quit.")
}

func (t *terminal) render(ev quiz.Event) {
	snap := ev.Snapshot
	switch ev.Type {
	case quiz.EventStarted:
		t.printQuestion(snap)
	case quiz.EventTick:
		switch sec := int(math.Ceil(snap.State.TimeRemaining)); sec {
		case 10, 5, 3, 2, 1:
			fmt.Fprintf(t.out, "  %ds left\n", sec)
		}
	case quiz.EventAnswered:
		o := ev.Outcome
		if o.IsCorrect {
			fmt.Fprintf(t.out, "Correct! +%d points, +%d time bonus\n", o.BaseScore, o.TimeBonus)
		} else {
			fmt.Fprintf(t.out, "Wrong. The answer was %s\n", t.answerText(*o))
		}
		t.printQuestion(snap)
	case quiz.EventExpired:
		fmt.Fprintf(t.out, "Time's up! The answer was %s\n", t.answerText(*ev.Outcome))
		t.printQuestion(snap)
	case quiz.EventCompleted:
		t.printResults(snap)
	case quiz.EventReset:
		fmt.Fprintln(t.out, "Quiz reset. Press Enter to start.")
	}
}

func (t *terminal) printQuestion(snap quiz.Snapshot) {
	q := snap.Question
	if q == nil || snap.Phase != quiz.PhaseAwaitingAnswer {
		return
	}
	fmt.Fprintf(t.out, "\nQuestion %d/%d (%ds, %d pts)\n%s\n", q.Index+1, snap.QuestionCount, q.TimeLimit, q.Points, q.Prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}
}

func (t *terminal) printResults(snap quiz.Snapshot) {
	p := snap.Player
	fmt.Fprintf(t.out, "\nQuiz complete! Score %d + time bonus %d = %d\n", p.Score, p.TimeBonus, p.TotalScore)

	standings := t.leaderboard.Rank(p)
	fmt.Fprintf(t.out, "%s You placed #%d.\n\n", standings.Message, standings.PlayerRank)
	for _, e := range standings.Entries {
		marker := " "
		if e.CurrentPlayer {
			marker = ">"
		}
		fmt.Fprintf(t.out, "%s %2d. %-18s %5d\n", marker, e.Rank, e.Name, e.TotalScore)
	}
	fmt.Fprintln(t.out, "\nPlay again? [y/n]")
}

func (t *terminal) answerText(o quiz.Outcome) string {
	q, ok := t.bank.At(o.QuestionIndex)
	if !ok || o.CorrectAnswer < 0 || o.CorrectAnswer >= len(q.Options) {
		return strconv.Itoa(o.CorrectAnswer + 1)
	}
	return fmt.Sprintf("%d) %s", o.CorrectAnswer+1, q.Options[o.CorrectAnswer])
}
