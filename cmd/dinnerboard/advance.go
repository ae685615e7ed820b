package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/menu"
	"github.com/korjavin/dinnerboard/pkg/messages"
	"github.com/spf13/cobra"
)

// linePrompter asks prompts on a terminal: it lists the options and reads
// the chosen number. An empty line closes the prompt.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) Ask(ctx context.Context, pr course.Prompt) (course.Answer, error) {
	if err := ctx.Err(); err != nil {
		return course.Answer{}, err
	}

	fmt.Fprintln(p.out, messages.Prompt(pr))
	for i, o := range pr.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o.Label)
	}
	fmt.Fprint(p.out, "> ")

	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && err != io.EOF {
			return course.Answer{}, err
		}
		return course.Dismiss, nil
	}

	n, convErr := strconv.Atoi(line)
	if convErr != nil {
		return course.Answer{}, fmt.Errorf("%w: %q", course.ErrInvalidAnswer, line)
	}
	return pr.Choose(n - 1)
}

// advanceCell advances the dish at position (1-based) of the room and puts
// any question to p
func advanceCell(ctx context.Context, a *app, group, roomName string, position int, p course.Prompter) (course.Transition, error) {
	for _, room := range a.roster.Roster().RoomsInGroup(group) {
		if room.Name != roomName {
			continue
		}
		dishes := menu.Resolve(room.Plan, a.roster.ExtraDishes(), room.Name)
		if position < 1 || position > len(dishes) {
			return course.Transition{}, fmt.Errorf("room %s has no dish %d (1-%d)", roomName, position, len(dishes))
		}
		cell := board.Cell{Group: group, Room: room.Name, Col: position - 1}
		return a.course.AdvanceWith(ctx, cell, dishes[position-1], p)
	}
	return course.Transition{}, fmt.Errorf("room %s is not seated at %s", roomName, group)
}

func newAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <group> <room> <dish-number>",
		Short: "Advance one dish of a room to its next status",
		Long: "Advance one dish of a room to its next status and answer the follow-up question on the terminal. " +
			"Dishes are numbered from 1 in serving order.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid dish number %q", args[2])
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p := newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			tr, err := advanceCell(cmd.Context(), a, args[0], args[1], position, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), messages.Transition(tr))
			return nil
		},
	}
}
