package dto

// Scenario is the on-disk shape of a simulation: a component tree and a
// sequence of requests that mutate it.
// It uses "mapstructure" tags so the same struct decodes YAML and JSON documents.
type Scenario struct {
	Name        string    `json:"name" mapstructure:"name"`
	Description string    `json:"description,omitempty" mapstructure:"description"`
	Tree        NodeSpec  `json:"tree" mapstructure:"tree"`
	Requests    []Request `json:"requests" mapstructure:"requests"`
}

// NodeSpec describes one component and its subtree.
type NodeSpec struct {
	ID       string         `json:"id" mapstructure:"id"`
	Kind     string         `json:"kind,omitempty" mapstructure:"kind"`
	State    map[string]any `json:"state,omitempty" mapstructure:"state"`
	Children []NodeSpec     `json:"children,omitempty" mapstructure:"children"`
}

// Request is one postback: its mutations run between the two hooks.
type Request struct {
	Name      string     `json:"name,omitempty" mapstructure:"name"`
	Mutations []Mutation `json:"mutations,omitempty" mapstructure:"mutations"`
	// Expect optionally lists the boundary IDs that must end up dirty.
	Expect *[]string `json:"expect,omitempty" mapstructure:"expect"`
}

// Mutation changes the state of one node.
type Mutation struct {
	Node   string         `json:"node" mapstructure:"node"`
	Set    map[string]any `json:"set,omitempty" mapstructure:"set"`
	Delete []string       `json:"delete,omitempty" mapstructure:"delete"`
}
