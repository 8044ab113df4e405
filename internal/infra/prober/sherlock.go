// File: internal/infra/prober/sherlock.go
package prober

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"profile-scout/internal/config"
	"profile-scout/internal/domain"
	"profile-scout/internal/domain/model"
	"profile-scout/internal/domain/ports/adapter"
	"profile-scout/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ adapter.Prober = (*SherlockProber)(nil)

// SherlockProber invokes a sherlock-compatible CLI as an isolated subprocess
// per job. The tool owns its per-site timeout and detection heuristics; this
// side only derives flags from the job options, enforces the batch-level
// wall-clock ceiling and captures the record stream.
type SherlockProber struct {
	binary     string
	extraArgs  []string
	multiplier int
	log        *zerolog.Logger
}

func NewSherlockProber(cfg config.ProbeConfig, logger *zerolog.Logger) *SherlockProber {
	return &SherlockProber{
		binary:     cfg.Binary,
		extraArgs:  append([]string(nil), cfg.ExtraArgs...),
		multiplier: cfg.SafetyMultiplier,
		log:        logger,
	}
}

// Ceiling is the authoritative batch limit: the tool's own --timeout is
// advisory per site, so a hung process is killed after this long.
func (p *SherlockProber) Ceiling(opts model.SearchOptions) time.Duration {
	return time.Duration(opts.TimeoutSeconds*p.multiplier) * time.Second
}

func (p *SherlockProber) args(usernames []string, opts model.SearchOptions) []string {
	args := append([]string(nil), p.extraArgs...)
	args = append(args, "--timeout", strconv.Itoa(opts.TimeoutSeconds))
	if opts.IncludeNSFW {
		args = append(args, "--nsfw")
	}
	if opts.LocalDataOnly {
		args = append(args, "--local")
	}
	if opts.ShowAllSites {
		args = append(args, "--print-all")
	}
	return append(args, usernames...)
}

func (p *SherlockProber) Run(ctx context.Context, usernames []string, opts model.SearchOptions, progress adapter.ProgressFunc) ([]adapter.ProbeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Ceiling(opts))
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary, p.args(usernames, opts)...)
	// Give a killed process a moment to flush, then reap it unconditionally.
	cmd.WaitDelay = 5 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", domain.ErrProbeFailed, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", domain.ErrProbeFailed, p.binary, err)
	}

	var records []adapter.ProbeRecord
	var parseErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec adapter.ProbeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErr = fmt.Errorf("malformed record %q: %v", truncate(line, 200), err)
			break
		}
		records = append(records, rec)
		if progress != nil {
			progress(rec)
		}
	}
	if parseErr == nil {
		if err := scanner.Err(); err != nil {
			parseErr = fmt.Errorf("read output: %v", err)
		}
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		metrics.ObserveProbe(elapsed.Seconds(), len(records), false)
		p.log.Warn().Dur("elapsed", elapsed).Int("records", len(records)).
			Msg("probe killed at wall-clock ceiling")
		return records, domain.ErrProbeTimeout
	}

	if parseErr != nil {
		metrics.ObserveProbe(elapsed.Seconds(), len(records), false)
		p.log.Error().Err(parseErr).Str("stderr", truncate(stderr.Bytes(), 500)).
			Msg("probe output unparseable")
		return records, fmt.Errorf("%w: %v", domain.ErrProbeFailed, parseErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		code := -1
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		metrics.ObserveProbe(elapsed.Seconds(), len(records), false)
		p.log.Error().Int("exit_code", code).Str("stderr", truncate(stderr.Bytes(), 500)).
			Msg("probe exited abnormally")
		return records, fmt.Errorf("%w: exit code %d: %s", domain.ErrProbeFailed, code, truncate(stderr.Bytes(), 200))
	}

	if len(records) == 0 {
		// A clean exit with nothing on stdout is still a broken run; callers
		// must never mistake it for "no profiles anywhere".
		metrics.ObserveProbe(elapsed.Seconds(), 0, false)
		return nil, fmt.Errorf("%w: no records emitted", domain.ErrProbeFailed)
	}

	metrics.ObserveProbe(elapsed.Seconds(), len(records), true)
	p.log.Debug().Dur("elapsed", elapsed).Int("records", len(records)).Msg("probe finished")
	return records, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
