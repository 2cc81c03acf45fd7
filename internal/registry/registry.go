package registry

import (
	"fmt"
	"sort"
)

// Category says who a command is for; the dispatcher and the help output
// both key off it.
type Category string

const (
	CategoryUser  Category = "user"
	CategoryAdmin Category = "admin"
	CategoryOwner Category = "owner"
)

// Command describes one registered bot command.
type Command struct {
	Name     string
	Module   string
	Category Category
	Help     string
}

// Registry is the process-wide command table. It is built once at startup
// from every feature's declarations and never mutated afterwards; the
// dispatcher and help system read it by plain lookup.
type Registry struct {
	byName   map[string]Command
	byModule map[string][]Command
}

// Build constructs the registry. Duplicate command names are a programming
// error caught at startup.
func Build(commands []Command) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]Command, len(commands)),
		byModule: make(map[string][]Command),
	}
	for _, cmd := range commands {
		if _, exists := r.byName[cmd.Name]; exists {
			return nil, fmt.Errorf("command %q registered twice", cmd.Name)
		}
		r.byName[cmd.Name] = cmd
		r.byModule[cmd.Module] = append(r.byModule[cmd.Module], cmd)
	}
	for _, cmds := range r.byModule {
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	}
	return r, nil
}

// Lookup returns the command entry for name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Modules returns all module names in sorted order.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.byModule))
	for name := range r.byModule {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleCommands returns the commands a module registered, sorted by name.
func (r *Registry) ModuleCommands(module string) []Command {
	return r.byModule[module]
}

// Disableable reports whether a command may be turned off per chat.
// Owner commands and the disable/enable controls themselves cannot be.
func (r *Registry) Disableable(name string) bool {
	cmd, ok := r.byName[name]
	if !ok {
		return false
	}
	if cmd.Category == CategoryOwner {
		return false
	}
	return cmd.Module != "Disabling"
}
