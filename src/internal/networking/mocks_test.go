package networking

import (
	"fmt"
	"io"
	"strings"
)

type executedCommand struct {
	name  string
	args  []string
	stdin string
}

// fakeExecutor records commands instead of running them.
type fakeExecutor struct {
	commands []executedCommand
	failOn   string
	output   string
}

func (f *fakeExecutor) Run(stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := executedCommand{name: name, args: args}
	if stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		cmd.stdin = string(b)
	}
	f.commands = append(f.commands, cmd)

	if f.failOn != "" && len(args) > 0 && args[0] == f.failOn {
		return []byte(f.output), fmt.Errorf("exit status 1")
	}
	return nil, nil
}

func (c executedCommand) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}

// fakeIPTables keeps rules in memory.
type fakeIPTables struct {
	rules     map[string]bool
	appended  []string
	deleted   []string
	existsErr error
}

func newFakeIPTables() *fakeIPTables {
	return &fakeIPTables{rules: make(map[string]bool)}
}

func ruleKey(table, chain string, rulespec ...string) string {
	return table + "/" + chain + "/" + strings.Join(rulespec, " ")
}

func (f *fakeIPTables) Exists(table, chain string, rulespec ...string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.rules[ruleKey(table, chain, rulespec...)], nil
}

func (f *fakeIPTables) Append(table, chain string, rulespec ...string) error {
	key := ruleKey(table, chain, rulespec...)
	f.rules[key] = true
	f.appended = append(f.appended, key)
	return nil
}

func (f *fakeIPTables) Delete(table, chain string, rulespec ...string) error {
	key := ruleKey(table, chain, rulespec...)
	delete(f.rules, key)
	f.deleted = append(f.deleted, key)
	return nil
}
