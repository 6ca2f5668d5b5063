package eval

import (
	"context"
	"io"
	"os/exec"
)

// Command shells out to the external evaluation entry point with the
// flags the MACE-style CLI expects.
type Command struct {
	Binary string
	Extra  []string
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Command) Evaluate(ctx context.Context, job Job) error {
	args := []string{
		"--configs", job.Configs,
		"--model", job.Model,
		"--output", job.Output,
	}
	args = append(args, c.Extra...)
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}
