// Package status tracks what a run did, for the completion message and debug
// logging.
package status

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Summary collects counters for one run. It is safe for concurrent use;
// mail outcomes may be reported from outside the dispatch goroutine.
type Summary struct {
	mu sync.Mutex

	start   time.Time
	end     time.Time
	command string
	host    string

	lines   int
	matches map[int]int

	mailSending int
	mailSent    int
	mailFailed  int

	commands CommandCounts
}

// CommandCounts is what happened to exec and pexec commands
type CommandCounts struct {
	Started int
	Failed  int
	Dropped int
}

// Counts is a snapshot of a Summary's counters
type Counts struct {
	Lines      int
	Matches    map[int]int
	MailSent   int
	MailFailed int
	Commands   CommandCounts
}

// NewSummary starts a summary for a run that began at start
func NewSummary(start time.Time, command, host string) *Summary {
	return &Summary{
		start:   start,
		command: command,
		host:    host,
		matches: make(map[int]int),
	}
}

// Start returns when the run began
func (s *Summary) Start() time.Time {
	return s.start
}

// RecordLine counts one input line
func (s *Summary) RecordLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines++
}

// RecordMatch counts one match of the pattern with the given index
func (s *Summary) RecordMatch(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[index]++
}

// RecordCommands stores the command counters of the run
func (s *Summary) RecordCommands(c CommandCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = c
}

// Finish records the end of the run
func (s *Summary) Finish(end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end = end
}

// Counts returns a copy of the counters
func (s *Summary) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make(map[int]int, len(s.matches))
	for k, v := range s.matches {
		matches[k] = v
	}
	return Counts{
		Lines:      s.lines,
		Matches:    matches,
		MailSent:   s.mailSent,
		MailFailed: s.mailFailed,
		Commands:   s.commands,
	}
}

// Subject is the subject line of the completion message
func (s *Summary) Subject() string {
	return "linewatch run complete: " + s.command
}

// Text renders the completion message body
func (s *Summary) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n", s.command)
	fmt.Fprintf(&b, "Host: %s\n", s.host)
	fmt.Fprintf(&b, "Started: %s\n", s.start.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Finished: %s\n", s.end.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Lines read: %d\n", s.lines)

	indexes := make([]int, 0, len(s.matches))
	for index := range s.matches {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		fmt.Fprintf(&b, "Pattern %d matches: %d\n", index, s.matches[index])
	}

	if s.mailSent > 0 || s.mailFailed > 0 {
		fmt.Fprintf(&b, "Mail sent: %d, failed: %d\n", s.mailSent, s.mailFailed)
	}
	if c := s.commands; c != (CommandCounts{}) {
		fmt.Fprintf(&b, "Commands started: %d, failed: %d, dropped: %d\n", c.Started, c.Failed, c.Dropped)
	}
	return b.String()
}
