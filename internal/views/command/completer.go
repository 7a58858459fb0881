package command

import (
	"sort"
	"strings"
)

// Candidate is a completion option with a description.
type Candidate struct {
	Value string // the text to insert
	Desc  string // short description
}

// Completer provides live completion for the command line.
type Completer struct {
	clientIDs []string
}

// NewCompleter creates a completer.
func NewCompleter() *Completer {
	return &Completer{}
}

// SetClientIDs updates the ids offered after delete and download.
func (c *Completer) SetClientIDs(ids []string) {
	c.clientIDs = ids
}

type cmdEntry struct {
	desc     string
	subs     []subEntry
	clientID bool // takes a client id argument
}

type subEntry struct {
	name string
	desc string
}

var commands = map[string]cmdEntry{
	"goto": {desc: "Switch screen", subs: []subEntry{
		{"clients", "Client list"},
		{"settings", "Server defaults"},
		{"about", "Version, keys and notices"},
	}},
	"refresh":  {desc: "Reload the client list"},
	"new":      {desc: "Create a client"},
	"delete":   {desc: "Delete a client", clientID: true},
	"download": {desc: "Download a client configuration", clientID: true},
	"ca": {desc: "Certificate authority", subs: []subEntry{
		{"status", "Check whether the CA exists"},
		{"generate", "Generate the CA and server certificate"},
	}},
	"logout": {desc: "End the session"},
	"help":   {desc: "Toggle the key help"},
	"quit":   {desc: "Leave the panel"},
}

// Known reports whether name is a command.
func Known(name string) bool {
	_, ok := commands[name]
	return ok
}

// Complete returns candidates for the current input.
func (c *Completer) Complete(input string) []Candidate {
	parts := strings.Fields(input)
	trailing := strings.HasSuffix(input, " ")

	// No input yet or partial first word.
	if len(parts) == 0 || (len(parts) == 1 && !trailing) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return topLevelCandidates(prefix)
	}

	entry, ok := commands[parts[0]]
	if !ok {
		return nil
	}

	prefix := ""
	switch {
	case len(parts) == 1 && trailing:
	case len(parts) == 2 && !trailing:
		prefix = parts[1]
	default:
		return nil
	}

	if entry.clientID {
		return dynamicCandidates(c.clientIDs, prefix, "client")
	}
	return subCandidates(entry.subs, prefix)
}

func topLevelCandidates(prefix string) []Candidate {
	keys := make([]string, 0, len(commands))
	for k := range commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []Candidate
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			result = append(result, Candidate{Value: k, Desc: commands[k].desc})
		}
	}
	return result
}

func subCandidates(subs []subEntry, prefix string) []Candidate {
	var result []Candidate
	for _, s := range subs {
		if strings.HasPrefix(s.name, prefix) {
			result = append(result, Candidate{Value: s.name, Desc: s.desc})
		}
	}
	return result
}

func dynamicCandidates(items []string, prefix, kind string) []Candidate {
	var result []Candidate
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			result = append(result, Candidate{Value: item, Desc: kind})
		}
	}
	return result
}
