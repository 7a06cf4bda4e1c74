// Command review is a terminal client for working through line items
// pending review. It seeds a local working set from the API, lets the
// user select items, and submits each batch as a named event.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"budgetrip/internal/apiclient"
	"budgetrip/internal/cli"
	applog "budgetrip/internal/log"
	"budgetrip/internal/review"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("review")
	cfg := cli.LoadAndValidateConfig(logger)

	client := apiclient.New(cfg.APIBaseURL, logger.WithComponent(applog.ComponentClient))
	store := review.NewStore(client, logger.WithComponent(applog.ComponentReview))
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store.Seed(ctx)
	cancel()

	session := &session{
		store:  store,
		client: client,
		out:    os.Stdout,
	}
	session.run(os.Stdin)
}

type reviewSubmitter interface {
	SubmitReview(ctx context.Context, name, category string, lineItemIDs []string) (string, error)
}

type session struct {
	store  *review.Store
	client reviewSubmitter
	out    *os.File
}

func (s *session) run(in *os.File) {
	fmt.Fprintln(s.out, "budgetrip review session. Commands: list, toggle <n>, submit <name> / <category>, drop, quit")
	s.printList()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "list", "ls":
			s.printList()
		case "toggle", "t":
			s.toggle(rest)
		case "submit", "s":
			s.submit(rest)
		case "drop", "d":
			s.drop()
		case "quit", "q", "exit":
			return
		default:
			fmt.Fprintf(s.out, "unknown command %q\n", cmd)
		}
	}
}

func (s *session) printList() {
	state := s.store.State()
	if len(state) == 0 {
		fmt.Fprintln(s.out, "nothing to review")
		return
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSEL\tDATE\tAMOUNT\tMETHOD\tDESCRIPTION")
	for i, li := range state {
		sel := " "
		if li.IsSelected {
			sel = "x"
		}
		date := time.Unix(li.Date, 0).Format("2006-01-02")
		fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\t%s\t%s\n",
			i+1, sel, date, li.Amount, li.PaymentMethod, li.Description)
	}
	_ = w.Flush()
}

// toggle flips selection by list position or by line item ID.
func (s *session) toggle(arg string) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		fmt.Fprintln(s.out, "usage: toggle <n>")
		return
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		state := s.store.State()
		if n < 1 || n > len(state) {
			fmt.Fprintf(s.out, "no line item #%d\n", n)
			return
		}
		id = state[n-1].ID
	}

	s.store.Dispatch(review.ToggleLineItemSelect{ID: id})
	s.printList()
}

// submit sends the selected items as one event, then removes them from
// the working set. Removal is local: the API marks them reviewed on its
// side as part of the submission.
func (s *session) submit(arg string) {
	name, category, ok := strings.Cut(arg, "/")
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if !ok || name == "" || category == "" {
		fmt.Fprintln(s.out, "usage: submit <name> / <category>")
		return
	}

	ids := s.store.Selected()
	if len(ids) == 0 {
		fmt.Fprintln(s.out, "no line items selected")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventID, err := s.client.SubmitReview(ctx, name, category, ids)
	if err != nil {
		fmt.Fprintf(s.out, "submit failed: %v\n", err)
		return
	}

	s.store.Dispatch(review.RemoveLineItems{IDs: ids})
	fmt.Fprintf(s.out, "created event %s with %d line items\n", eventID, len(ids))
	s.printList()
}

// drop removes the selected items from the working set without touching
// the remote records. They reappear on the next session.
func (s *session) drop() {
	ids := s.store.Selected()
	if len(ids) == 0 {
		fmt.Fprintln(s.out, "no line items selected")
		return
	}
	s.store.Dispatch(review.RemoveLineItems{IDs: ids})
	fmt.Fprintf(s.out, "dropped %d line items from this session\n", len(ids))
	s.printList()
}
