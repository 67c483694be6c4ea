package msa

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Muscle runs the MUSCLE executable as a subprocess.
type Muscle struct {
	Path    string
	V5      bool          // use the MUSCLE 5 command line
	Timeout time.Duration // zero for no limit
}

// Args returns the MUSCLE arguments aligning in to out.
func (m Muscle) Args(in, out string) []string {
	if m.V5 {
		return []string{"-align", in, "-output", out}
	}
	return []string{"-in", in, "-out", out, "-quiet"}
}

func (m Muscle) Align(ctx context.Context, in, out string) error {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, m.Path, m.Args(in, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debugf("running %s", cmd.String())

	err := cmd.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Errorf("%s timed out after %s", m.Path, m.Timeout)
	default:
		return errors.Wrapf(err, "%s: %s", cmd.String(), strings.TrimSpace(stderr.String()))
	}
}
