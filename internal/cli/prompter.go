package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Decision is the user's response to a recommendation.
type Decision struct {
	Chosen   model.Outcome
	Reason   string
	Override bool
}

// Prompter asks the user to accept or override a recommendation.
type Prompter struct {
	writer io.Writer
	lines  chan lineResult
	reader *bufio.Reader
}

type lineResult struct {
	err   error
	value string
}

// NewPrompter creates a prompter reading from reader and writing to writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// ConfirmOutcome shows the suggestion and lets the user accept it or pick
// another outcome with an optional reason.
func (p *Prompter) ConfirmOutcome(ctx context.Context, suggested model.Outcome) (Decision, error) {
	if _, err := fmt.Fprintln(p.writer, FormatPrompt("What will you do?")); err != nil {
		return Decision{}, fmt.Errorf("failed to write prompt: %w", err)
	}
	if _, err := fmt.Fprintf(p.writer, "  [A] Accept: %s\n", StyleOutcome(suggested)); err != nil {
		return Decision{}, fmt.Errorf("failed to write accept option: %w", err)
	}

	valid := []string{"a"}
	for i, o := range model.Outcomes {
		if o == suggested {
			continue
		}
		key := strconv.Itoa(i + 1)
		valid = append(valid, key)
		if _, err := fmt.Fprintf(p.writer, "  [%s] %s\n", key, o.Label()); err != nil {
			return Decision{}, fmt.Errorf("failed to write option: %w", err)
		}
	}

	choice, err := p.promptChoice(ctx, "Choice", valid)
	if err != nil {
		return Decision{}, err
	}
	if choice == "a" {
		return Decision{Chosen: suggested}, nil
	}

	idx, _ := strconv.Atoi(choice)
	chosen := model.Outcomes[idx-1]

	if _, err := fmt.Fprint(p.writer, FormatPrompt("Why? (optional)")); err != nil {
		return Decision{}, fmt.Errorf("failed to write reason prompt: %w", err)
	}
	reason, err := p.readLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return Decision{}, err
	}

	return Decision{Chosen: chosen, Reason: reason, Override: true}, nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// readLine reads one trimmed line. It returns ErrInputCancelled if ctx ends
// first; the pending read is picked up by the next call.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if p.lines == nil {
		p.lines = make(chan lineResult, 1)
		go p.read(p.lines)
	}

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-p.lines:
		p.lines = nil
		return strings.TrimSpace(res.value), res.err
	}
}

func (p *Prompter) read(out chan<- lineResult) {
	value, err := p.reader.ReadString('\n')
	if err != nil && value != "" && errors.Is(err, io.EOF) {
		err = nil
	}
	out <- lineResult{value: value, err: err}
}
