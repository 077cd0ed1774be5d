package menu

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// MainMenu is the entry node every graph must contain.
const MainMenu = "main_menu"

// SubscribeMenu is the subscribe-prompt node shown when the gate denies
// the AI feature. Required whenever the graph offers an ask_ai button.
const SubscribeMenu = "subscribe"

// Button actions understood by the handler layer.
const (
	ActionAskAI    = "ask_ai"
	ActionCheckSub = "check_sub"
)

// ErrNotFound is returned by Resolve for an unknown menu name.
var ErrNotFound = errors.New("menu not found")

// Button is a single inline button. Exactly one of Target, URL or
// Action must be set.
type Button struct {
	Label  string `yaml:"label"`
	Target string `yaml:"menu,omitempty"`
	URL    string `yaml:"url,omitempty"`
	Action string `yaml:"action,omitempty"`
}

// Node is one screen of the navigation graph: display text plus an
// ordered button layout. Nodes are immutable between reloads and shared
// by all sessions.
type Node struct {
	Name string     `yaml:"name"`
	Text string     `yaml:"text"`
	Rows [][]Button `yaml:"rows"`
}

type graphFile struct {
	Menus []Node `yaml:"menus"`
}

// Registry loads and serves the declarative menu graph. Reload replaces
// the whole graph in one swap, and only after the new one passes
// validation.
type Registry struct {
	path   string
	params map[string]string

	mu    sync.RWMutex
	graph map[string]*Node

	reloadMu sync.Mutex
}

// Load reads and validates the menu graph from path. Placeholders like
// {channel} in labels and URLs are substituted from params; a missing
// key is a load error.
func Load(path string, params map[string]string) (*Registry, error) {
	r := &Registry{path: path, params: params}

	graph, err := r.read()
	if err != nil {
		return nil, err
	}
	r.graph = graph

	return r, nil
}

// Resolve returns the node for name or ErrNotFound.
func (r *Registry) Resolve(name string) (*Node, error) {
	r.mu.RLock()
	node, ok := r.graph[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return node, nil
}

// Reload re-reads the source and swaps the graph atomically. On any
// validation error the previous graph stays in effect and the error is
// returned to the caller.
func (r *Registry) Reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	graph, err := r.read()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.graph = graph
	r.mu.Unlock()

	return nil
}

func (r *Registry) read() (map[string]*Node, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu config: %w", err)
	}
	return parse(data, r.params)
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

func parse(data []byte, params map[string]string) (map[string]*Node, error) {
	var file graphFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	// Unknown fields are a config error, not a lazy per-button failure.
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse menu config: %w", err)
	}

	if len(file.Menus) == 0 {
		return nil, fmt.Errorf("menu config contains no menus")
	}

	graph := make(map[string]*Node, len(file.Menus))
	for i := range file.Menus {
		node := file.Menus[i]
		if node.Name == "" {
			return nil, fmt.Errorf("menu at index %d has no name", i)
		}
		if _, exists := graph[node.Name]; exists {
			return nil, fmt.Errorf("duplicate menu name %q", node.Name)
		}
		if node.Text == "" {
			return nil, fmt.Errorf("menu %q has no text", node.Name)
		}

		var err error
		if node.Text, err = expand(node.Text, params); err != nil {
			return nil, fmt.Errorf("menu %q: %w", node.Name, err)
		}

		for ri, row := range node.Rows {
			for bi := range row {
				if err := expandButton(&node.Rows[ri][bi], params); err != nil {
					return nil, fmt.Errorf("menu %q row %d: %w", node.Name, ri, err)
				}
			}
		}

		graph[node.Name] = &node
	}

	if _, ok := graph[MainMenu]; !ok {
		return nil, fmt.Errorf("menu config must define %q", MainMenu)
	}

	// Every navigation target must resolve now, not on first press.
	hasAskAI := false
	for name, node := range graph {
		for _, row := range node.Rows {
			for _, btn := range row {
				if btn.Action == ActionAskAI {
					hasAskAI = true
				}
				if btn.Target == "" {
					continue
				}
				if _, ok := graph[btn.Target]; !ok {
					return nil, fmt.Errorf("menu %q: button %q targets unknown menu %q",
						name, btn.Label, btn.Target)
				}
			}
		}
	}

	// The ask_ai denial path resolves the subscribe node, so a graph
	// offering the button must define it.
	if hasAskAI {
		if _, ok := graph[SubscribeMenu]; !ok {
			return nil, fmt.Errorf("menu config offers action %q but does not define %q",
				ActionAskAI, SubscribeMenu)
		}
	}

	return graph, nil
}

func expandButton(btn *Button, params map[string]string) error {
	if btn.Label == "" {
		return fmt.Errorf("button has no label")
	}

	set := 0
	if btn.Target != "" {
		set++
	}
	if btn.URL != "" {
		set++
	}
	if btn.Action != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("button %q must set exactly one of menu, url, action", btn.Label)
	}

	if btn.Action != "" && btn.Action != ActionAskAI && btn.Action != ActionCheckSub {
		return fmt.Errorf("button %q has unknown action %q", btn.Label, btn.Action)
	}

	var err error
	if btn.Label, err = expand(btn.Label, params); err != nil {
		return err
	}
	if btn.URL, err = expand(btn.URL, params); err != nil {
		return err
	}
	return nil
}

// expand substitutes {key} placeholders from params. Unresolvable keys
// are reported as errors so bad configs fail at load time.
func expand(s string, params map[string]string) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]
		val, ok := params[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return val
	})
	if missing != "" {
		return "", fmt.Errorf("unknown placeholder {%s} in %q", missing, s)
	}
	return out, nil
}
