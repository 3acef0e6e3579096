package remote

import "strings"

// Command is a single program invocation with its arguments. It is rendered
// into a shell line only at the transport boundary, with every argument
// quoted, so callers never format shell strings themselves.
type Command struct {
	Program string
	Args    []string
	Dir     string
	Sudo    bool
	Stdin   string
}

// Cmd starts a command builder for program.
func Cmd(program string, args ...string) Command {
	return Command{Program: program, Args: args}
}

// In runs the command from dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// AsRoot runs the command through non-interactive sudo.
func (c Command) AsRoot() Command {
	c.Sudo = true
	return c
}

// WithInput feeds input to the command's stdin.
func (c Command) WithInput(input string) Command {
	c.Stdin = input
	return c
}

// Argv returns the program and arguments, sudo prefix included.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+3)
	if c.Sudo {
		argv = append(argv, "sudo", "-n")
	}
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// String renders the command as a POSIX shell line.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+3)
	for _, arg := range c.Argv() {
		parts = append(parts, shellEscape(arg))
	}
	line := strings.Join(parts, " ")
	if c.Dir != "" {
		line = "cd " + shellEscape(c.Dir) + " && " + line
	}
	return line
}

func shellEscape(in string) string {
	if in != "" && strings.IndexFunc(in, unsafeShellRune) < 0 {
		return in
	}
	return "'" + strings.ReplaceAll(in, "'", "'\\''") + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:,@%+", r)
}
