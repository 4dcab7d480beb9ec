package process

import "strings"

// DefaultTerm is the TERM value advertised to children.
const DefaultTerm = "xterm-256color"

// BuildEnv merges overrides ("KEY=VALUE") onto base. A later entry replaces
// an earlier one with the same key in place; new keys are appended in order.
// Entries without '=' are dropped.
func BuildEnv(base []string, overrides ...string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base)+len(overrides))
	add := func(kv string) {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return
		}
		if i, seen := index[key]; seen {
			env[i] = kv
			return
		}
		index[key] = len(env)
		env = append(env, kv)
	}
	for _, kv := range base {
		add(kv)
	}
	for _, kv := range overrides {
		add(kv)
	}
	return env
}

// TerminalEnv returns the variables every PTY child gets.
func TerminalEnv(term string) []string {
	if term == "" {
		term = DefaultTerm
	}
	return []string{
		"TERM=" + term,
		"COLORTERM=truecolor",
	}
}
